package app

import (
	"context"

	"github.com/polkiloo/topupshop/internal/domain/model"
	"github.com/polkiloo/topupshop/internal/notify"
	"github.com/polkiloo/topupshop/internal/usecase"
)

// ShopFacade joins the use cases behind the HTTP layer.
type ShopFacade struct {
	auth   *usecase.AuthUseCase
	orders *usecase.OrderUseCase
	ledger *usecase.LedgerUseCase
	events *notify.Hub
}

func NewShopFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, ledger *usecase.LedgerUseCase, events *notify.Hub) *ShopFacade {
	return &ShopFacade{auth: auth, orders: orders, ledger: ledger, events: events}
}

func (f *ShopFacade) Register(ctx context.Context, name, email, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, name, email, password)
	return token, err
}

func (f *ShopFacade) Authenticate(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, email, password)
	return token, err
}

func (f *ShopFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *ShopFacade) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return f.auth.IsAdmin(ctx, userID)
}

func (f *ShopFacade) PlaceOrder(ctx context.Context, userID int64, productCode, itemRef string, input map[string]string) (*model.Placement, error) {
	return f.orders.PlaceOrder(ctx, userID, productCode, itemRef, input)
}

func (f *ShopFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *ShopFacade) Order(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	return f.orders.Get(ctx, userID, orderID)
}

func (f *ShopFacade) CheckOrderStatus(ctx context.Context, userID int64, orderID string) (*model.Order, *model.ProviderOrder, error) {
	return f.orders.CheckStatus(ctx, userID, orderID)
}

func (f *ShopFacade) HandleCallback(ctx context.Context, externalID, status, message string) (*model.Order, bool, error) {
	return f.orders.HandleCallback(ctx, externalID, status, message)
}

// NonTerminalOrders and RefreshOrder let the facade feed the reconciler.
func (f *ShopFacade) NonTerminalOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.NonTerminalOrders(ctx, limit)
}

func (f *ShopFacade) RefreshOrder(ctx context.Context, order model.Order) (bool, error) {
	return f.orders.RefreshOrder(ctx, order)
}

func (f *ShopFacade) Balance(ctx context.Context, userID int64) (*model.BalanceSummary, error) {
	return f.ledger.Summary(ctx, userID)
}

func (f *ShopFacade) LedgerEntries(ctx context.Context, userID int64, limit int) ([]model.LedgerEntry, error) {
	return f.ledger.Entries(ctx, userID, limit)
}

func (f *ShopFacade) RequestTopup(ctx context.Context, userID int64, method string, amount int64, transactionRef string) (*model.Topup, error) {
	return f.ledger.RequestTopup(ctx, userID, method, amount, transactionRef)
}

func (f *ShopFacade) Topups(ctx context.Context, userID int64) ([]model.Topup, error) {
	return f.ledger.Topups(ctx, userID)
}

func (f *ShopFacade) TopupsByStatus(ctx context.Context, status model.TopupStatus) ([]model.Topup, error) {
	return f.ledger.TopupsByStatus(ctx, status)
}

func (f *ShopFacade) ApproveTopup(ctx context.Context, id int64, note string) (*model.Topup, error) {
	return f.ledger.ApproveTopup(ctx, id, note)
}

func (f *ShopFacade) RejectTopup(ctx context.Context, id int64, note string) (*model.Topup, error) {
	return f.ledger.RejectTopup(ctx, id, note)
}

func (f *ShopFacade) SetOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, note string) (*model.Order, bool, error) {
	return f.orders.SetStatus(ctx, orderID, status, note)
}

func (f *ShopFacade) SetUserBanned(ctx context.Context, userID int64, banned bool, reason string) error {
	return f.ledger.SetBanned(ctx, userID, banned, reason)
}

func (f *ShopFacade) SubscribeOrders(userID int64) (<-chan model.OrderEvent, func()) {
	return f.events.Subscribe(userID)
}
