package repository

import (
	"context"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	SetBanned(ctx context.Context, id int64, banned bool, reason string) error
}
