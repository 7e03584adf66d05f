package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/domain/model"
	"github.com/polkiloo/topupshop/internal/notify"
	"github.com/polkiloo/topupshop/internal/pkg/clock"
	testhelpers "github.com/polkiloo/topupshop/internal/test"
	"github.com/polkiloo/topupshop/internal/usecase"
)

type facadeFixture struct {
	facade  *ShopFacade
	store   *testhelpers.MemoryStore
	gateway *testhelpers.GatewayStub
	hub     *notify.Hub
}

func newFacade() facadeFixture {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := testhelpers.NewMemoryStore()
	store.AddItem(model.CatalogItem{ProductCode: "pubgm", ItemRef: "60uc", Name: "60 UC", Price: 400, Active: true})

	strategy := testhelpers.StrategyStub{ParseFn: func(string) (int64, error) { return 99, nil }}
	authUC := usecase.NewAuthUseCase(store.Users(), testhelpers.HasherStub{}, strategy)

	gateway := &testhelpers.GatewayStub{}
	hub := notify.NewHub(logger)
	clk := clock.NewManual(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	orderUC := usecase.NewOrderUseCase(store.Users(), store.Catalog(), store.Ledger(), store.Orders(), gateway, hub, clk, logger)
	ledgerUC := usecase.NewLedgerUseCase(store.Users(), store.Ledger(), store.Topups(), logger)

	return facadeFixture{
		facade:  NewShopFacade(authUC, orderUC, ledgerUC, hub),
		store:   store,
		gateway: gateway,
		hub:     hub,
	}
}

func TestShopFacadeAuth(t *testing.T) {
	fix := newFacade()
	ctx := context.Background()

	token, err := fix.facade.Register(ctx, "Alice", "Alice@Example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if token != "token" {
		t.Fatalf("unexpected token %q", token)
	}

	stored, err := fix.store.Users().GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.Name != "Alice" {
		t.Fatalf("unexpected stored name %q", stored.Name)
	}

	token, err = fix.facade.Authenticate(ctx, "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	if token != "token" {
		t.Fatalf("unexpected token %q", token)
	}

	if _, err := fix.facade.Authenticate(ctx, "alice@example.com", "wrong-pass"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	id, err := fix.facade.ParseToken("anything")
	if err != nil {
		t.Fatalf("parse token returned error: %v", err)
	}
	if id != 99 {
		t.Fatalf("unexpected user id %d", id)
	}

	admin, err := fix.facade.IsAdmin(ctx, stored.ID)
	if err != nil {
		t.Fatalf("is admin returned error: %v", err)
	}
	if admin {
		t.Fatal("fresh account must not be admin")
	}
	fix.store.SetRole(stored.ID, model.RoleAdmin)
	if admin, _ = fix.facade.IsAdmin(ctx, stored.ID); !admin {
		t.Fatal("expected admin after role change")
	}
}

func TestShopFacadeOrders(t *testing.T) {
	fix := newFacade()
	ctx := context.Background()
	user := fix.store.AddUser("bob", 1000)

	events, cancel := fix.facade.SubscribeOrders(user.ID)
	defer cancel()

	placement, err := fix.facade.PlaceOrder(ctx, user.ID, "pubgm", "60uc", map[string]string{"player_id": "5123"})
	if err != nil {
		t.Fatalf("place order returned error: %v", err)
	}
	order := placement.Order
	if order.Status != model.OrderStatusPending {
		t.Fatalf("unexpected status %s", order.Status)
	}
	if got := fix.store.Balance(user.ID); got != 600 {
		t.Fatalf("expected balance 600, got %d", got)
	}

	list, err := fix.facade.Orders(ctx, user.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected orders %v, err %v", list, err)
	}

	got, err := fix.facade.Order(ctx, user.ID, order.ID)
	if err != nil {
		t.Fatalf("order returned error: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("unexpected order %s", got.ID)
	}

	stranger := fix.store.AddUser("eve", 0)
	if _, err := fix.facade.Order(ctx, stranger.ID, order.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	fix.gateway.StatusFn = func(context.Context, string, model.SKU) (*model.ProviderOrder, error) {
		return &model.ProviderOrder{ExternalID: order.ExternalID, Status: "processing"}, nil
	}
	checked, remote, err := fix.facade.CheckOrderStatus(ctx, user.ID, order.ID)
	if err != nil {
		t.Fatalf("check status returned error: %v", err)
	}
	if checked.Status != model.OrderStatusProcessing || remote.Status != "processing" {
		t.Fatalf("unexpected check result %s / %s", checked.Status, remote.Status)
	}

	applied, err := fix.facade.RefreshOrder(ctx, *checked)
	if err != nil || applied {
		t.Fatalf("refresh with unchanged status must be a no-op, applied=%v err=%v", applied, err)
	}

	updated, applied, err := fix.facade.HandleCallback(ctx, order.ExternalID, "refunded", "out of stock")
	if err != nil || !applied {
		t.Fatalf("callback not applied: applied=%v err=%v", applied, err)
	}
	if updated.Status != model.OrderStatusRefunded {
		t.Fatalf("unexpected status %s", updated.Status)
	}
	if got := fix.store.Balance(user.ID); got != 1000 {
		t.Fatalf("expected refund to restore balance, got %d", got)
	}

	pending, err := fix.facade.NonTerminalOrders(ctx, 10)
	if err != nil || len(pending) != 0 {
		t.Fatalf("expected no open orders, got %v err %v", pending, err)
	}

	var statuses []model.OrderStatus
	for len(statuses) < 2 {
		select {
		case ev := <-events:
			statuses = append(statuses, ev.To)
		case <-time.After(time.Second):
			t.Fatalf("expected two events, got %v", statuses)
		}
	}
	if statuses[0] != model.OrderStatusProcessing || statuses[1] != model.OrderStatusRefunded {
		t.Fatalf("unexpected event order %v", statuses)
	}
}

func TestShopFacadeAdminOrderStatus(t *testing.T) {
	fix := newFacade()
	ctx := context.Background()
	user := fix.store.AddUser("bob", 1000)

	placement, err := fix.facade.PlaceOrder(ctx, user.ID, "pubgm", "60uc", map[string]string{"player_id": "5123"})
	if err != nil {
		t.Fatalf("place order returned error: %v", err)
	}

	order, applied, err := fix.facade.SetOrderStatus(ctx, placement.Order.ID, model.OrderStatusCompleted, "delivered by hand")
	if err != nil || !applied {
		t.Fatalf("override not applied: applied=%v err=%v", applied, err)
	}
	if order.Status != model.OrderStatusCompleted {
		t.Fatalf("unexpected status %s", order.Status)
	}

	_, applied, err = fix.facade.SetOrderStatus(ctx, placement.Order.ID, model.OrderStatusPending, "")
	if err != nil || applied {
		t.Fatalf("backward override must be a no-op, applied=%v err=%v", applied, err)
	}
}

func TestShopFacadeBalanceAndTopups(t *testing.T) {
	fix := newFacade()
	ctx := context.Background()
	user := fix.store.AddUser("bob", 0)

	topup, err := fix.facade.RequestTopup(ctx, user.ID, "kbzpay", 5000, "TX-1")
	if err != nil {
		t.Fatalf("request topup returned error: %v", err)
	}

	mine, err := fix.facade.Topups(ctx, user.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("unexpected topups %v err %v", mine, err)
	}

	pending, err := fix.facade.TopupsByStatus(ctx, model.TopupStatusPending)
	if err != nil || len(pending) != 1 {
		t.Fatalf("unexpected pending topups %v err %v", pending, err)
	}

	if _, err := fix.facade.ApproveTopup(ctx, topup.ID, "ok"); err != nil {
		t.Fatalf("approve returned error: %v", err)
	}
	if _, err := fix.facade.RejectTopup(ctx, topup.ID, "late"); !errors.Is(err, domainErrors.ErrAlreadyProcessed) {
		t.Fatalf("expected already processed, got %v", err)
	}

	summary, err := fix.facade.Balance(ctx, user.ID)
	if err != nil {
		t.Fatalf("balance returned error: %v", err)
	}
	if summary.Current != 5000 || summary.Spent != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	entries, err := fix.facade.LedgerEntries(ctx, user.ID, 10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("unexpected entries %v err %v", entries, err)
	}
	if entries[0].Kind != model.EntryKindTopup {
		t.Fatalf("unexpected entry kind %s", entries[0].Kind)
	}
}

func TestShopFacadeBan(t *testing.T) {
	fix := newFacade()
	ctx := context.Background()
	user := fix.store.AddUser("bob", 1000)

	if err := fix.facade.SetUserBanned(ctx, user.ID, true, "chargeback"); err != nil {
		t.Fatalf("ban returned error: %v", err)
	}
	if _, err := fix.facade.PlaceOrder(ctx, user.ID, "pubgm", "60uc", nil); !errors.Is(err, domainErrors.ErrUserBanned) {
		t.Fatalf("expected banned error, got %v", err)
	}
	if len(fix.gateway.Submitted) != 0 {
		t.Fatal("banned user must not reach the provider")
	}
	if got := fix.store.Balance(user.ID); got != 1000 {
		t.Fatalf("balance changed for banned user: %d", got)
	}
}
