package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/domain/model"
	"github.com/polkiloo/topupshop/internal/domain/repository"
)

// LedgerUseCase exposes wallet state, top-up requests and account moderation.
type LedgerUseCase struct {
	users  repository.UserRepository
	ledger repository.LedgerRepository
	topups repository.TopupRepository
	logger *slog.Logger
}

// NewLedgerUseCase constructs LedgerUseCase.
func NewLedgerUseCase(users repository.UserRepository, ledger repository.LedgerRepository, topups repository.TopupRepository, logger *slog.Logger) *LedgerUseCase {
	return &LedgerUseCase{users: users, ledger: ledger, topups: topups, logger: logger}
}

// Summary returns current balance and total spend.
func (u *LedgerUseCase) Summary(ctx context.Context, userID int64) (*model.BalanceSummary, error) {
	return u.ledger.Summary(ctx, userID)
}

// Entries returns the latest balance movements, newest first.
func (u *LedgerUseCase) Entries(ctx context.Context, userID int64, limit int) ([]model.LedgerEntry, error) {
	return u.ledger.Entries(ctx, userID, limit)
}

// RequestTopup files a top-up that stays pending until an admin reviews the payment.
func (u *LedgerUseCase) RequestTopup(ctx context.Context, userID int64, method string, amount int64, transactionRef string) (*model.Topup, error) {
	method = strings.TrimSpace(method)
	transactionRef = strings.TrimSpace(transactionRef)
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	if method == "" || transactionRef == "" {
		return nil, domainErrors.ErrInvalidInput
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Banned {
		return nil, domainErrors.ErrUserBanned
	}

	topup := &model.Topup{
		UserID:         userID,
		Method:         method,
		Amount:         amount,
		TransactionRef: transactionRef,
		Status:         model.TopupStatusPending,
	}
	if err := u.topups.Create(ctx, topup); err != nil {
		return nil, fmt.Errorf("create topup: %w", err)
	}
	u.logger.Info("topup requested",
		slog.Int64("topup_id", topup.ID),
		slog.Int64("user_id", userID),
		slog.Int64("amount", amount),
	)
	return topup, nil
}

// Topups lists the user's own requests.
func (u *LedgerUseCase) Topups(ctx context.Context, userID int64) ([]model.Topup, error) {
	return u.topups.ListByUser(ctx, userID)
}

// TopupsByStatus lists requests for review. An empty status means pending.
func (u *LedgerUseCase) TopupsByStatus(ctx context.Context, status model.TopupStatus) ([]model.Topup, error) {
	switch status {
	case "":
		status = model.TopupStatusPending
	case model.TopupStatusPending, model.TopupStatusApproved, model.TopupStatusRejected:
	default:
		return nil, domainErrors.ErrInvalidInput
	}
	return u.topups.ListByStatus(ctx, status)
}

// ApproveTopup credits the requested amount once.
func (u *LedgerUseCase) ApproveTopup(ctx context.Context, id int64, note string) (*model.Topup, error) {
	return u.resolve(ctx, id, model.TopupStatusApproved, note)
}

// RejectTopup closes a request without touching the balance.
func (u *LedgerUseCase) RejectTopup(ctx context.Context, id int64, note string) (*model.Topup, error) {
	return u.resolve(ctx, id, model.TopupStatusRejected, note)
}

func (u *LedgerUseCase) resolve(ctx context.Context, id int64, to model.TopupStatus, note string) (*model.Topup, error) {
	topup, err := u.topups.Resolve(ctx, id, to, strings.TrimSpace(note))
	if err != nil {
		return nil, err
	}
	u.logger.Info("topup resolved",
		slog.Int64("topup_id", topup.ID),
		slog.Int64("user_id", topup.UserID),
		slog.String("status", string(topup.Status)),
	)
	return topup, nil
}

// SetBanned blocks or unblocks a user from placing orders.
func (u *LedgerUseCase) SetBanned(ctx context.Context, userID int64, banned bool, reason string) error {
	reason = strings.TrimSpace(reason)
	if !banned {
		reason = ""
	}
	if err := u.users.SetBanned(ctx, userID, banned, reason); err != nil {
		return err
	}
	u.logger.Warn("user ban changed", slog.Int64("user_id", userID), slog.Bool("banned", banned), slog.String("reason", reason))
	return nil
}
