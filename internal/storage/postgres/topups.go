package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/domain/model"
)

type topupRepository struct {
	storage *Storage
}

const topupColumns = `id, user_id, method, amount, transaction_ref, status, admin_note, created_at, updated_at`

func scanTopup(row pgx.Row) (*model.Topup, error) {
	var t model.Topup
	err := row.Scan(&t.ID, &t.UserID, &t.Method, &t.Amount, &t.TransactionRef, &t.Status, &t.AdminNote, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *topupRepository) Create(ctx context.Context, topup *model.Topup) error {
	const query = `INSERT INTO topups (user_id, method, amount, transaction_ref, status)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING id, created_at, updated_at`
	return r.storage.pool.QueryRow(ctx, query, topup.UserID, topup.Method, topup.Amount, topup.TransactionRef, topup.Status).
		Scan(&topup.ID, &topup.CreatedAt, &topup.UpdatedAt)
}

func (r *topupRepository) GetByID(ctx context.Context, id int64) (*model.Topup, error) {
	const query = `SELECT ` + topupColumns + ` FROM topups WHERE id=$1`
	t, err := scanTopup(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *topupRepository) ListByUser(ctx context.Context, userID int64) ([]model.Topup, error) {
	const query = `SELECT ` + topupColumns + ` FROM topups WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *topupRepository) ListByStatus(ctx context.Context, status model.TopupStatus) ([]model.Topup, error) {
	const query = `SELECT ` + topupColumns + ` FROM topups WHERE status=$1 ORDER BY created_at`
	return r.list(ctx, query, status)
}

func (r *topupRepository) list(ctx context.Context, query string, arg any) ([]model.Topup, error) {
	rows, err := r.storage.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Topup
	for rows.Next() {
		t, err := scanTopup(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *topupRepository) Resolve(ctx context.Context, id int64, to model.TopupStatus, note string) (*model.Topup, error) {
	if to != model.TopupStatusApproved && to != model.TopupStatusRejected {
		return nil, domainErrors.ErrInvalidInput
	}

	const update = `UPDATE topups SET status=$2, admin_note=$3, updated_at=NOW()
                    WHERE id=$1 AND status='pending'
                    RETURNING ` + topupColumns

	var topup *model.Topup
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		topup, err = scanTopup(tx.QueryRow(ctx, update, id, to, note))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.resolveMiss(ctx, tx, id)
			}
			return err
		}
		if to == model.TopupStatusApproved {
			_, err = r.storage.moveBalanceTx(ctx, tx, topup.UserID, topup.Amount, topup.Reference(), model.EntryKindTopup)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return topup, nil
}

// resolveMiss tells a missing top-up apart from one that was already resolved.
func (r *topupRepository) resolveMiss(ctx context.Context, tx pgx.Tx, id int64) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM topups WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domainErrors.ErrAlreadyProcessed
	}
	return domainErrors.ErrNotFound
}
