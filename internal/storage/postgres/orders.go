package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, user_id, product_code, item_ref, input, amount, external_id, status, remark, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o     model.Order
		input []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &o.ProductCode, &o.ItemRef, &input, &o.Amount, &o.ExternalID, &o.Status, &o.Remark, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &o.Input); err != nil {
			return nil, fmt.Errorf("decode order input: %w", err)
		}
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	input, err := json.Marshal(order.Input)
	if err != nil {
		return fmt.Errorf("encode order input: %w", err)
	}
	if order.Input == nil {
		input = []byte("{}")
	}

	const query = `INSERT INTO orders (id, user_id, product_code, item_ref, input, amount, external_id, status, remark)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING created_at, updated_at`
	err = r.storage.pool.QueryRow(ctx, query,
		order.ID, order.UserID, order.ProductCode, order.ItemRef, input,
		order.Amount, order.ExternalID, order.Status, order.Remark,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *orderRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE external_id=$1`
	return r.getOne(ctx, query, externalID)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *orderRepository) ListNonTerminal(ctx context.Context, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE status IN ('pending', 'processing', 'confirming')
                   ORDER BY updated_at
                   LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyTransition performs the status compare-and-set. A refund credit is
// written in the same transaction, so a failed credit leaves the status as is.
func (r *orderRepository) ApplyTransition(ctx context.Context, t model.Transition) (*model.Order, bool, error) {
	const update = `UPDATE orders
                    SET status=$3,
                        remark=CASE WHEN $4::text = '' THEN remark
                                    WHEN remark = '' THEN $4::text
                                    ELSE remark || E'\n' || $4::text END,
                        updated_at=NOW()
                    WHERE id=$1 AND status=$2
                    RETURNING ` + orderColumns

	var (
		order   *model.Order
		applied bool
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, update, t.OrderID, t.From, t.To, t.Remark))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		applied = true

		if t.Refund() {
			if _, err := r.storage.moveBalanceTx(ctx, tx, order.UserID, order.Amount, order.ID, model.EntryKindRefund); err != nil {
				return fmt.Errorf("refund order %s: %w", order.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return order, applied, nil
}
