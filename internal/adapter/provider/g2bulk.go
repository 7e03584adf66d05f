package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/polkiloo/topupshop/internal/config"
	"github.com/polkiloo/topupshop/internal/domain/model"
)

// G2Bulk is the g2bulk games API adapter.
type G2Bulk struct {
	client      *httpClient
	callbackURL string
}

type g2bulkOrder struct {
	OrderID flexibleID `json:"order_id"`
	Status  string     `json:"status"`
	Message string     `json:"message"`
}

type g2bulkResponse struct {
	Success bool         `json:"success"`
	Order   *g2bulkOrder `json:"order"`
	g2bulkOrder
}

func (r g2bulkResponse) order() g2bulkOrder {
	if r.Order != nil {
		merged := *r.Order
		if merged.Message == "" {
			merged.Message = r.Message
		}
		return merged
	}
	return r.g2bulkOrder
}

// NewG2Bulk builds the adapter from provider configuration.
func NewG2Bulk(cfg config.ProviderConfig, logger *slog.Logger) (*G2Bulk, error) {
	client, err := newHTTPClient(cfg, "X-API-Key", logger)
	if err != nil {
		return nil, err
	}
	return &G2Bulk{client: client, callbackURL: cfg.CallbackURL}, nil
}

func (g *G2Bulk) Name() string { return config.ProviderG2Bulk }

func (g *G2Bulk) SubmitOrder(ctx context.Context, req model.SubmitRequest) (*model.ProviderOrder, error) {
	payload := map[string]any{
		"catalogue_name": req.SKU.ItemRef,
		"player_id":      firstNonEmpty(req.Input["player_id"], req.Input["user_id"]),
		"server_id":      firstNonEmpty(req.Input["server_id"], req.Input["zone_id"]),
		"remark":         req.Reference,
	}
	if g.callbackURL != "" {
		payload["callback_url"] = g.callbackURL
	}

	raw, err := submitWithRetry(ctx, g.client.logger, func(ctx context.Context) (json.RawMessage, error) {
		return g.client.do(ctx, http.MethodPost, payload, "games", req.SKU.ProductCode, "order")
	})
	if err != nil {
		return nil, err
	}

	result, err := decodeG2Bulk(raw)
	if err != nil {
		return nil, err
	}
	if result.ExternalID == "" {
		return nil, missingID(raw)
	}
	return result, nil
}

func (g *G2Bulk) OrderStatus(ctx context.Context, externalID string, sku model.SKU) (*model.ProviderOrder, error) {
	payload := map[string]any{"order_id": externalID, "game": sku.ProductCode}
	raw, err := g.client.do(ctx, http.MethodPost, payload, "games", "order", "status")
	if err != nil {
		return nil, err
	}
	result, err := decodeG2Bulk(raw)
	if err != nil {
		return nil, err
	}
	if result.ExternalID == "" {
		result.ExternalID = externalID
	}
	return result, nil
}

func decodeG2Bulk(raw json.RawMessage) (*model.ProviderOrder, error) {
	var resp g2bulkResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode g2bulk response: %w", err)
	}
	order := resp.order()
	return &model.ProviderOrder{
		ExternalID: string(order.OrderID),
		Status:     order.Status,
		Message:    order.Message,
		Payload:    raw,
	}, nil
}
