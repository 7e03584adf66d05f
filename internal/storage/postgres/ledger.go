package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/domain/model"
)

type ledgerRepository struct {
	storage *Storage
}

const defaultEntriesLimit = 50

func (r *ledgerRepository) Summary(ctx context.Context, userID int64) (*model.BalanceSummary, error) {
	const query = `SELECT u.balance,
                          COALESCE(-SUM(e.amount) FILTER (WHERE e.kind IN ('order_debit', 'compensation', 'refund')), 0)
                   FROM users u LEFT JOIN ledger_entries e ON e.user_id = u.id
                   WHERE u.id=$1
                   GROUP BY u.balance`
	var summary model.BalanceSummary
	err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&summary.Current, &summary.Spent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}

func (r *ledgerRepository) Debit(ctx context.Context, userID, amount int64, reference string) (*model.LedgerEntry, error) {
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	var entry *model.LedgerEntry
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const lockQuery = `SELECT balance FROM users WHERE id=$1 FOR UPDATE`
		var current int64
		if err := tx.QueryRow(ctx, lockQuery, userID).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		if current < amount {
			return domainErrors.NewInsufficientFunds(amount, current)
		}

		var err error
		entry, err = r.storage.moveBalanceTx(ctx, tx, userID, -amount, reference, model.EntryKindOrderDebit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *ledgerRepository) Credit(ctx context.Context, userID, amount int64, reference string, kind model.EntryKind) (*model.LedgerEntry, error) {
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	var entry *model.LedgerEntry
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		entry, err = r.storage.moveBalanceTx(ctx, tx, userID, amount, reference, kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *ledgerRepository) Entries(ctx context.Context, userID int64, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 {
		limit = defaultEntriesLimit
	}
	const query = `SELECT id, user_id, reference, kind, amount, balance_after, created_at
                   FROM ledger_entries WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Reference, &e.Kind, &e.Amount, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// moveBalanceTx applies a signed delta and records it. The (reference, kind)
// unique index turns a repeated movement into ErrAlreadyProcessed.
func (s *Storage) moveBalanceTx(ctx context.Context, tx pgx.Tx, userID, delta int64, reference string, kind model.EntryKind) (*model.LedgerEntry, error) {
	const updateBalance = `UPDATE users SET balance = balance + $2 WHERE id=$1 RETURNING balance`
	entry := &model.LedgerEntry{UserID: userID, Reference: reference, Kind: kind, Amount: delta}
	if err := tx.QueryRow(ctx, updateBalance, userID, delta).Scan(&entry.BalanceAfter); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("update balance: %w", err)
	}

	const insertEntry = `INSERT INTO ledger_entries (user_id, reference, kind, amount, balance_after)
                         VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err := tx.QueryRow(ctx, insertEntry, userID, reference, kind, delta, entry.BalanceAfter).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}
	return entry, nil
}
