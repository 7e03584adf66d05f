package repository

import (
	"context"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// CatalogRepository resolves catalogue items to prices.
type CatalogRepository interface {
	GetItem(ctx context.Context, productCode, itemRef string) (*model.CatalogItem, error)
}
