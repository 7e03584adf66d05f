package provider

import (
	"context"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// Gateway talks to the fulfillment provider that delivers in-game currency.
//
// Network and timeout failures wrap domainErrors.ErrProviderUnavailable. Any
// HTTP error response is returned as *domainErrors.ProviderRejectedError so
// the caller can pass the provider's status through.
type Gateway interface {
	Name() string
	SubmitOrder(ctx context.Context, req model.SubmitRequest) (*model.ProviderOrder, error)
	OrderStatus(ctx context.Context, externalID string, sku model.SKU) (*model.ProviderOrder, error)
}
