package repository

import (
	"context"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// TopupRepository stores wallet top-up requests.
// Resolve moves a pending request to approved or rejected, crediting the
// amount on approval, and fails with errors.ErrAlreadyProcessed otherwise.
type TopupRepository interface {
	Create(ctx context.Context, topup *model.Topup) error
	GetByID(ctx context.Context, id int64) (*model.Topup, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Topup, error)
	ListByStatus(ctx context.Context, status model.TopupStatus) ([]model.Topup, error)
	Resolve(ctx context.Context, id int64, to model.TopupStatus, note string) (*model.Topup, error)
}
