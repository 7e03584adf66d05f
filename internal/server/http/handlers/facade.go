package handlers

import (
	"context"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (int64, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, userID int64, productCode, itemRef string, input map[string]string) (*model.Placement, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	Order(ctx context.Context, userID int64, orderID string) (*model.Order, error)
	CheckOrderStatus(ctx context.Context, userID int64, orderID string) (*model.Order, *model.ProviderOrder, error)
}

// CallbackFacade applies provider webhooks.
type CallbackFacade interface {
	HandleCallback(ctx context.Context, externalID, status, message string) (*model.Order, bool, error)
}

// BalanceFacade provides balance related operations.
type BalanceFacade interface {
	Balance(ctx context.Context, userID int64) (*model.BalanceSummary, error)
	LedgerEntries(ctx context.Context, userID int64, limit int) ([]model.LedgerEntry, error)
	RequestTopup(ctx context.Context, userID int64, method string, amount int64, transactionRef string) (*model.Topup, error)
	Topups(ctx context.Context, userID int64) ([]model.Topup, error)
}

// AdminFacade groups moderation operations.
type AdminFacade interface {
	TopupsByStatus(ctx context.Context, status model.TopupStatus) ([]model.Topup, error)
	ApproveTopup(ctx context.Context, id int64, note string) (*model.Topup, error)
	RejectTopup(ctx context.Context, id int64, note string) (*model.Topup, error)
	SetOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, note string) (*model.Order, bool, error)
	SetUserBanned(ctx context.Context, userID int64, banned bool, reason string) error
}

// EventsFacade hands out order event subscriptions.
type EventsFacade interface {
	SubscribeOrders(userID int64) (<-chan model.OrderEvent, func())
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ShopFacade aggregates the full set of operations used across handlers.
type ShopFacade interface {
	AuthFacade
	OrderFacade
	CallbackFacade
	BalanceFacade
	AdminFacade
	EventsFacade
}
