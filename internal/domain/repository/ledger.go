package repository

import (
	"context"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// LedgerRepository owns every balance mutation.
//
// Debit checks sufficiency and subtracts under a row lock on the user; it returns
// *errors.InsufficientFundsError when the balance is short. Credit fails with
// errors.ErrAlreadyProcessed when an entry with the same reference and kind exists.
type LedgerRepository interface {
	Summary(ctx context.Context, userID int64) (*model.BalanceSummary, error)
	Debit(ctx context.Context, userID, amount int64, reference string) (*model.LedgerEntry, error)
	Credit(ctx context.Context, userID, amount int64, reference string, kind model.EntryKind) (*model.LedgerEntry, error)
	Entries(ctx context.Context, userID int64, limit int) ([]model.LedgerEntry, error)
}
