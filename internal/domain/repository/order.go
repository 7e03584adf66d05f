package repository

import (
	"context"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// ApplyTransition stores the new status only if the order still has the From
// status. When the transition targets refunded, the amount is credited to the
// owner within the same write. The bool result is false when the stored status
// no longer matched.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListNonTerminal(ctx context.Context, limit int) ([]model.Order, error)
	ApplyTransition(ctx context.Context, t model.Transition) (*model.Order, bool, error)
}
