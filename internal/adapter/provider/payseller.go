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

// PaySeller is the 24payseller agent API adapter.
type PaySeller struct {
	client *httpClient
}

type paysellerOrder struct {
	TransactionID flexibleID `json:"transactionId"`
	State         string     `json:"state"`
	Status        string     `json:"status"`
	Message       string     `json:"message"`
}

// paysellerResponse accepts the order either nested or at the top level.
type paysellerResponse struct {
	Order *paysellerOrder `json:"order"`
	paysellerOrder
}

func (r paysellerResponse) order() paysellerOrder {
	if r.Order != nil {
		return *r.Order
	}
	return r.paysellerOrder
}

// NewPaySeller builds the adapter from provider configuration.
func NewPaySeller(cfg config.ProviderConfig, logger *slog.Logger) (*PaySeller, error) {
	client, err := newHTTPClient(cfg, "X-Api-Key", logger)
	if err != nil {
		return nil, err
	}
	return &PaySeller{client: client}, nil
}

func (p *PaySeller) Name() string { return config.ProviderPaySeller }

func (p *PaySeller) SubmitOrder(ctx context.Context, req model.SubmitRequest) (*model.ProviderOrder, error) {
	payload := map[string]any{
		"product_key": req.SKU.ProductCode,
		"item_sku":    req.SKU.ItemRef,
		"input":       req.Input,
	}
	raw, err := submitWithRetry(ctx, p.client.logger, func(ctx context.Context) (json.RawMessage, error) {
		return p.client.do(ctx, http.MethodPost, payload, "agent", "orders", "create")
	})
	if err != nil {
		return nil, err
	}

	result, err := decodePaySeller(raw)
	if err != nil {
		return nil, err
	}
	if result.ExternalID == "" {
		return nil, missingID(raw)
	}
	return result, nil
}

func (p *PaySeller) OrderStatus(ctx context.Context, externalID string, _ model.SKU) (*model.ProviderOrder, error) {
	raw, err := p.client.do(ctx, http.MethodGet, nil, "agent", "orders", externalID)
	if err != nil {
		return nil, err
	}
	result, err := decodePaySeller(raw)
	if err != nil {
		return nil, err
	}
	if result.ExternalID == "" {
		result.ExternalID = externalID
	}
	return result, nil
}

func decodePaySeller(raw json.RawMessage) (*model.ProviderOrder, error) {
	var resp paysellerResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode payseller response: %w", err)
	}
	order := resp.order()
	return &model.ProviderOrder{
		ExternalID: string(order.TransactionID),
		Status:     firstNonEmpty(order.State, order.Status),
		Message:    order.Message,
		Payload:    raw,
	}, nil
}
