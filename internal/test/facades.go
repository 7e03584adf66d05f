package test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// ReconcileFacadeStub feeds the reconciler and records refreshed orders.
type ReconcileFacadeStub struct {
	Orders    []model.Order
	OrdersFn  func(context.Context, int) ([]model.Order, error)
	RefreshFn func(context.Context, model.Order) (bool, error)

	mu        sync.Mutex
	refreshed []string
}

// SetOrders replaces the configured non-terminal orders.
func (s *ReconcileFacadeStub) SetOrders(orders []model.Order) {
	s.mu.Lock()
	s.Orders = orders
	s.mu.Unlock()
}

// NonTerminalOrders returns configured orders unless OrdersFn overrides it.
func (s *ReconcileFacadeStub) NonTerminalOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := append([]model.Order(nil), s.Orders...)
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// RefreshOrder records the call and delegates to RefreshFn.
func (s *ReconcileFacadeStub) RefreshOrder(ctx context.Context, order model.Order) (bool, error) {
	s.mu.Lock()
	s.refreshed = append(s.refreshed, order.ID)
	s.mu.Unlock()
	if s.RefreshFn != nil {
		return s.RefreshFn(ctx, order)
	}
	return false, nil
}

// Refreshed returns ids of refreshed orders in call order.
func (s *ReconcileFacadeStub) Refreshed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.refreshed...)
}

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseFn        func(string) (int64, error)
	IsAdminFn      func(context.Context, int64) (bool, error)
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, name, email, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, name, email, password)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, email, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, email, password)
	}
	return "token", nil
}

// ParseToken returns stored identifier for authenticated user.
func (s AuthFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// IsAdmin denies admin access unless IsAdminFn says otherwise.
func (s AuthFacadeStub) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if s.IsAdminFn != nil {
		return s.IsAdminFn(ctx, userID)
	}
	return false, nil
}

// StubOrder is the order returned by default from facade stubs.
func StubOrder(userID int64) model.Order {
	return model.Order{
		ID:          "order-1",
		UserID:      userID,
		ProductCode: "pubgm",
		ItemRef:     "60uc",
		Input:       map[string]string{"player_id": "5123"},
		Amount:      400,
		ExternalID:  "ext-1",
		Status:      model.OrderStatusPending,
		CreatedAt:   time.Unix(0, 0).UTC(),
		UpdatedAt:   time.Unix(0, 0).UTC(),
	}
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn    func(context.Context, int64, string, string, map[string]string) (*model.Placement, error)
	OrdersFn   func(context.Context, int64) ([]model.Order, error)
	OrderFn    func(context.Context, int64, string) (*model.Order, error)
	CheckFn    func(context.Context, int64, string) (*model.Order, *model.ProviderOrder, error)
	CallbackFn func(context.Context, string, string, string) (*model.Order, bool, error)
}

// PlaceOrder delegates to provided function or returns a pending placement.
func (s OrderFacadeStub) PlaceOrder(ctx context.Context, userID int64, productCode, itemRef string, input map[string]string) (*model.Placement, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, userID, productCode, itemRef, input)
	}
	order := StubOrder(userID)
	order.ProductCode, order.ItemRef, order.Input = productCode, itemRef, input
	return &model.Placement{Order: &order, ProviderPayload: json.RawMessage(`{"ok":true}`)}, nil
}

// Orders returns predefined orders for given user.
func (s OrderFacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{StubOrder(userID)}, nil
}

// Order returns one predefined order.
func (s OrderFacadeStub) Order(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, userID, orderID)
	}
	order := StubOrder(userID)
	order.ID = orderID
	return &order, nil
}

// CheckOrderStatus returns the stub order together with a provider view.
func (s OrderFacadeStub) CheckOrderStatus(ctx context.Context, userID int64, orderID string) (*model.Order, *model.ProviderOrder, error) {
	if s.CheckFn != nil {
		return s.CheckFn(ctx, userID, orderID)
	}
	order := StubOrder(userID)
	order.ID = orderID
	return &order, &model.ProviderOrder{ExternalID: order.ExternalID, Status: "pending", Payload: json.RawMessage(`{"state":"pending"}`)}, nil
}

// HandleCallback reports an applied callback for the stub order.
func (s OrderFacadeStub) HandleCallback(ctx context.Context, externalID, status, message string) (*model.Order, bool, error) {
	if s.CallbackFn != nil {
		return s.CallbackFn(ctx, externalID, status, message)
	}
	order := StubOrder(1)
	order.ExternalID = externalID
	return &order, true, nil
}

// BalanceFacadeStub simulates balance and top-up operations.
type BalanceFacadeStub struct {
	BalanceFn      func(context.Context, int64) (*model.BalanceSummary, error)
	EntriesFn      func(context.Context, int64, int) ([]model.LedgerEntry, error)
	RequestTopupFn func(context.Context, int64, string, int64, string) (*model.Topup, error)
	TopupsFn       func(context.Context, int64) ([]model.Topup, error)
}

// Balance returns stored summary or default data.
func (s BalanceFacadeStub) Balance(ctx context.Context, userID int64) (*model.BalanceSummary, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx, userID)
	}
	return &model.BalanceSummary{Current: 600, Spent: 400}, nil
}

// LedgerEntries returns a single debit unless overridden.
func (s BalanceFacadeStub) LedgerEntries(ctx context.Context, userID int64, limit int) ([]model.LedgerEntry, error) {
	if s.EntriesFn != nil {
		return s.EntriesFn(ctx, userID, limit)
	}
	return []model.LedgerEntry{{ID: 1, UserID: userID, Reference: "order-1", Kind: model.EntryKindOrderDebit, Amount: -400, BalanceAfter: 600}}, nil
}

// RequestTopup echoes a pending top-up.
func (s BalanceFacadeStub) RequestTopup(ctx context.Context, userID int64, method string, amount int64, transactionRef string) (*model.Topup, error) {
	if s.RequestTopupFn != nil {
		return s.RequestTopupFn(ctx, userID, method, amount, transactionRef)
	}
	return &model.Topup{ID: 1, UserID: userID, Method: method, Amount: amount, TransactionRef: transactionRef, Status: model.TopupStatusPending}, nil
}

// Topups returns configured history.
func (s BalanceFacadeStub) Topups(ctx context.Context, userID int64) ([]model.Topup, error) {
	if s.TopupsFn != nil {
		return s.TopupsFn(ctx, userID)
	}
	return nil, nil
}

// AdminFacadeStub simulates moderation operations.
type AdminFacadeStub struct {
	TopupsByStatusFn func(context.Context, model.TopupStatus) ([]model.Topup, error)
	ApproveFn        func(context.Context, int64, string) (*model.Topup, error)
	RejectFn         func(context.Context, int64, string) (*model.Topup, error)
	SetStatusFn      func(context.Context, string, model.OrderStatus, string) (*model.Order, bool, error)
	BanFn            func(context.Context, int64, bool, string) error
}

// TopupsByStatus returns configured requests.
func (s AdminFacadeStub) TopupsByStatus(ctx context.Context, status model.TopupStatus) ([]model.Topup, error) {
	if s.TopupsByStatusFn != nil {
		return s.TopupsByStatusFn(ctx, status)
	}
	return []model.Topup{{ID: 1, UserID: 1, Amount: 5000, Status: model.TopupStatusPending}}, nil
}

// ApproveTopup marks the request approved.
func (s AdminFacadeStub) ApproveTopup(ctx context.Context, id int64, note string) (*model.Topup, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, id, note)
	}
	return &model.Topup{ID: id, Status: model.TopupStatusApproved, AdminNote: note}, nil
}

// RejectTopup marks the request rejected.
func (s AdminFacadeStub) RejectTopup(ctx context.Context, id int64, note string) (*model.Topup, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, id, note)
	}
	return &model.Topup{ID: id, Status: model.TopupStatusRejected, AdminNote: note}, nil
}

// SetOrderStatus applies the override to the stub order.
func (s AdminFacadeStub) SetOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, note string) (*model.Order, bool, error) {
	if s.SetStatusFn != nil {
		return s.SetStatusFn(ctx, orderID, status, note)
	}
	order := StubOrder(1)
	order.ID, order.Status, order.Remark = orderID, status, note
	return &order, true, nil
}

// SetUserBanned accepts every ban update.
func (s AdminFacadeStub) SetUserBanned(ctx context.Context, userID int64, banned bool, reason string) error {
	if s.BanFn != nil {
		return s.BanFn(ctx, userID, banned, reason)
	}
	return nil
}

// EventsFacadeStub hands out subscriptions from SubscribeFn.
type EventsFacadeStub struct {
	SubscribeFn func(int64) (<-chan model.OrderEvent, func())
}

// SubscribeOrders returns a closed channel unless overridden.
func (s EventsFacadeStub) SubscribeOrders(userID int64) (<-chan model.OrderEvent, func()) {
	if s.SubscribeFn != nil {
		return s.SubscribeFn(userID)
	}
	ch := make(chan model.OrderEvent)
	close(ch)
	return ch, func() {}
}

// ShopFacadeStub aggregates facade dependencies for HTTP layer tests.
type ShopFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	BalanceFacadeStub
	AdminFacadeStub
	EventsFacadeStub
}

// HealthCheckerStub returns Err from every health check.
type HealthCheckerStub struct {
	Err error
}

func (s HealthCheckerStub) HealthCheck(context.Context) error {
	return s.Err
}
