package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/domain/model"
	"github.com/polkiloo/topupshop/internal/domain/repository"
	"github.com/polkiloo/topupshop/internal/pkg/clock"
)

// maxReconcileAttempts bounds the re-read loop after a lost compare-and-set.
const maxReconcileAttempts = 3

// ProviderGateway is the part of the fulfillment provider the orchestrator needs.
type ProviderGateway interface {
	SubmitOrder(ctx context.Context, req model.SubmitRequest) (*model.ProviderOrder, error)
	OrderStatus(ctx context.Context, externalID string, sku model.SKU) (*model.ProviderOrder, error)
}

// OrderNotifier receives every applied status transition.
type OrderNotifier interface {
	Publish(event model.OrderEvent)
}

// OrderUseCase places orders and keeps their status in line with the provider.
type OrderUseCase struct {
	users    repository.UserRepository
	catalog  repository.CatalogRepository
	ledger   repository.LedgerRepository
	orders   repository.OrderRepository
	gateway  ProviderGateway
	notifier OrderNotifier
	clock    clock.Clock
	logger   *slog.Logger
	newID    func() string
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	users repository.UserRepository,
	catalog repository.CatalogRepository,
	ledger repository.LedgerRepository,
	orders repository.OrderRepository,
	gateway ProviderGateway,
	notifier OrderNotifier,
	clk clock.Clock,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		users:    users,
		catalog:  catalog,
		ledger:   ledger,
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		clock:    clk,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// PlaceOrder debits the catalogue price, submits the order to the provider and
// stores it. A failed submission is compensated before the error is returned.
func (u *OrderUseCase) PlaceOrder(ctx context.Context, userID int64, productCode, itemRef string, input map[string]string) (*model.Placement, error) {
	productCode = strings.TrimSpace(productCode)
	itemRef = strings.TrimSpace(itemRef)
	if productCode == "" || itemRef == "" {
		return nil, domainErrors.ErrInvalidInput
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Banned {
		return nil, domainErrors.ErrUserBanned
	}

	item, err := u.catalog.GetItem(ctx, productCode, itemRef)
	if err != nil {
		return nil, err
	}
	if !item.Purchasable() {
		return nil, domainErrors.ErrNotFound
	}

	orderID := u.newID()
	if _, err := u.ledger.Debit(ctx, user.ID, item.Price, orderID); err != nil {
		return nil, fmt.Errorf("debit order %s: %w", orderID, err)
	}

	// The balance is already taken; from here on the caller going away must not
	// strand the money between submission and compensation.
	ctx = context.WithoutCancel(ctx)
	log := u.logger.With(slog.String("order_id", orderID), slog.Int64("user_id", user.ID))

	sku := model.SKU{ProductCode: item.ProductCode, ItemRef: item.ItemRef}
	accepted, err := u.gateway.SubmitOrder(ctx, model.SubmitRequest{SKU: sku, Input: input, Reference: orderID})
	if err != nil {
		return nil, u.compensate(ctx, log, user.ID, orderID, item.Price, err)
	}

	status, ok := model.ParseProviderStatus(accepted.Status)
	if !ok {
		if accepted.Status != "" {
			log.Warn("unrecognised provider status on submit", slog.String("provider_status", accepted.Status))
		}
		status = model.OrderStatusPending
	}
	seed := status
	if status == model.OrderStatusFailed || status == model.OrderStatusRefunded {
		seed = model.OrderStatusPending
	}

	order := &model.Order{
		ID:          orderID,
		UserID:      user.ID,
		ProductCode: item.ProductCode,
		ItemRef:     item.ItemRef,
		Input:       input,
		Amount:      item.Price,
		ExternalID:  accepted.ExternalID,
		Status:      seed,
	}
	if err := u.orders.Create(ctx, order); err != nil {
		log.Error("order accepted by provider but not stored; manual reconciliation required",
			slog.String("external_id", accepted.ExternalID),
			slog.Int64("amount", item.Price),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("store order %s: %w", orderID, err)
	}
	log.Info("order placed", slog.String("external_id", order.ExternalID), slog.String("status", string(order.Status)))

	if seed != status {
		reconciled, _, err := u.Reconcile(ctx, order.ID, status, accepted.Message)
		if err != nil {
			log.Error("reconcile order after submit failed", slog.String("error", err.Error()))
		} else if reconciled != nil {
			order = reconciled
		}
	}

	order.User = user
	return &model.Placement{Order: order, ProviderPayload: accepted.Payload}, nil
}

func (u *OrderUseCase) compensate(ctx context.Context, log *slog.Logger, userID int64, orderID string, amount int64, cause error) error {
	_, err := u.ledger.Credit(ctx, userID, amount, orderID, model.EntryKindCompensation)
	if err != nil && !errors.Is(err, domainErrors.ErrAlreadyProcessed) {
		compErr := &domainErrors.CompensationError{UserID: userID, Reference: orderID, Amount: amount, Cause: cause, Err: err}
		log.Error("compensating credit failed; manual reconciliation required",
			slog.Int64("amount", amount),
			slog.String("submit_error", cause.Error()),
			slog.String("error", err.Error()),
		)
		return compErr
	}
	log.Warn("provider submission failed, debit compensated", slog.Int64("amount", amount), slog.String("error", cause.Error()))
	return cause
}

// Reconcile moves the order to status to when the state machine allows it.
// Disallowed, repeated or stale transitions are no-ops and return applied=false.
func (u *OrderUseCase) Reconcile(ctx context.Context, orderID string, to model.OrderStatus, remark string) (*model.Order, bool, error) {
	if !to.Valid() {
		return nil, false, domainErrors.ErrInvalidInput
	}

	var current *model.Order
	for attempt := 0; attempt < maxReconcileAttempts; attempt++ {
		var err error
		current, err = u.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, false, err
		}
		if current.Status == to || !current.Status.CanTransition(to) {
			return current, false, nil
		}

		transition := model.Transition{OrderID: orderID, From: current.Status, To: to, Remark: strings.TrimSpace(remark)}
		updated, applied, err := u.orders.ApplyTransition(ctx, transition)
		if err != nil {
			return nil, false, fmt.Errorf("apply %s -> %s on order %s: %w", transition.From, transition.To, orderID, err)
		}
		if applied {
			u.logger.Info("order status changed",
				slog.String("order_id", orderID),
				slog.String("from", string(transition.From)),
				slog.String("to", string(transition.To)),
			)
			u.publish(updated, transition)
			return updated, true, nil
		}
	}

	u.logger.Warn("order status kept changing, giving up", slog.String("order_id", orderID), slog.String("to", string(to)))
	return current, false, nil
}

func (u *OrderUseCase) publish(order *model.Order, t model.Transition) {
	if u.notifier == nil {
		return
	}
	u.notifier.Publish(model.OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		ExternalID: order.ExternalID,
		From:       t.From,
		To:         t.To,
		Remark:     t.Remark,
		At:         u.clock.Now(),
	})
}

// ReconcileProviderStatus maps a raw provider status and reconciles. Unknown
// statuses leave the order untouched.
func (u *OrderUseCase) ReconcileProviderStatus(ctx context.Context, order model.Order, raw, message string) (*model.Order, bool, error) {
	status, ok := model.ParseProviderStatus(raw)
	if !ok {
		u.logger.Warn("unrecognised provider status",
			slog.String("order_id", order.ID),
			slog.String("provider_status", raw),
		)
		return &order, false, nil
	}
	return u.Reconcile(ctx, order.ID, status, message)
}

// HandleCallback applies a provider webhook addressed by external id.
func (u *OrderUseCase) HandleCallback(ctx context.Context, externalID, raw, message string) (*model.Order, bool, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, false, domainErrors.ErrInvalidInput
	}
	order, err := u.orders.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, false, err
	}
	return u.ReconcileProviderStatus(ctx, *order, raw, message)
}

// RefreshOrder pulls the provider status of one order and reconciles it.
func (u *OrderUseCase) RefreshOrder(ctx context.Context, order model.Order) (bool, error) {
	if order.ExternalID == "" {
		return false, nil
	}
	remote, err := u.gateway.OrderStatus(ctx, order.ExternalID, order.SKU())
	if err != nil {
		return false, fmt.Errorf("query provider for order %s: %w", order.ID, err)
	}
	_, applied, err := u.ReconcileProviderStatus(ctx, order, remote.Status, remote.Message)
	return applied, err
}

// CheckStatus refreshes one order on demand and returns the provider's answer with it.
func (u *OrderUseCase) CheckStatus(ctx context.Context, requesterID int64, orderID string) (*model.Order, *model.ProviderOrder, error) {
	order, err := u.Get(ctx, requesterID, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.ExternalID == "" {
		return nil, nil, domainErrors.ErrInvalidInput
	}
	remote, err := u.gateway.OrderStatus(ctx, order.ExternalID, order.SKU())
	if err != nil {
		return nil, nil, err
	}
	updated, _, err := u.ReconcileProviderStatus(ctx, *order, remote.Status, remote.Message)
	if err != nil {
		return nil, nil, err
	}
	return updated, remote, nil
}

// Get returns an order visible to the requester: its owner or an admin.
func (u *OrderUseCase) Get(ctx context.Context, requesterID int64, orderID string) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == requesterID {
		return order, nil
	}
	requester, err := u.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// ListByUser returns orders sorted by creation time, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// NonTerminalOrders returns orders still waiting for a final provider status.
func (u *OrderUseCase) NonTerminalOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.ListNonTerminal(ctx, limit)
}

// SetStatus is the admin override. It goes through Reconcile, so it can only move forward.
func (u *OrderUseCase) SetStatus(ctx context.Context, orderID string, to model.OrderStatus, note string) (*model.Order, bool, error) {
	return u.Reconcile(ctx, orderID, to, note)
}
