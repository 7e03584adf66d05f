package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/domain/model"
)

type catalogRepository struct {
	storage *Storage
}

func (r *catalogRepository) GetItem(ctx context.Context, productCode, itemRef string) (*model.CatalogItem, error) {
	const query = `SELECT i.product_code, i.item_ref, i.name, i.price, i.active AND p.active
                   FROM catalogue_items i JOIN products p ON p.code = i.product_code
                   WHERE i.product_code=$1 AND i.item_ref=$2`
	var item model.CatalogItem
	err := r.storage.pool.QueryRow(ctx, query, productCode, itemRef).Scan(&item.ProductCode, &item.ItemRef, &item.Name, &item.Price, &item.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}
