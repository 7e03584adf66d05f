package test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// GatewayStub records provider calls and answers through overridable functions.
type GatewayStub struct {
	SubmitFn func(context.Context, model.SubmitRequest) (*model.ProviderOrder, error)
	StatusFn func(context.Context, string, model.SKU) (*model.ProviderOrder, error)
	NameVal  string

	mu          sync.Mutex
	Submitted   []model.SubmitRequest
	StatusCalls []string
}

func (g *GatewayStub) Name() string {
	if g.NameVal != "" {
		return g.NameVal
	}
	return "stub"
}

// SubmitOrder accepts the order as pending unless SubmitFn overrides it.
func (g *GatewayStub) SubmitOrder(ctx context.Context, req model.SubmitRequest) (*model.ProviderOrder, error) {
	g.mu.Lock()
	g.Submitted = append(g.Submitted, req)
	g.mu.Unlock()
	if g.SubmitFn != nil {
		return g.SubmitFn(ctx, req)
	}
	return &model.ProviderOrder{
		ExternalID: "ext-" + req.Reference,
		Status:     "pending",
		Payload:    json.RawMessage(`{"accepted":true}`),
	}, nil
}

// OrderStatus reports pending unless StatusFn overrides it.
func (g *GatewayStub) OrderStatus(ctx context.Context, externalID string, sku model.SKU) (*model.ProviderOrder, error) {
	g.mu.Lock()
	g.StatusCalls = append(g.StatusCalls, externalID)
	g.mu.Unlock()
	if g.StatusFn != nil {
		return g.StatusFn(ctx, externalID, sku)
	}
	return &model.ProviderOrder{ExternalID: externalID, Status: "pending"}, nil
}

// SubmitCount returns how many submissions were made.
func (g *GatewayStub) SubmitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Submitted)
}

// NotifierStub collects published order events.
type NotifierStub struct {
	mu     sync.Mutex
	events []model.OrderEvent
}

func (n *NotifierStub) Publish(event model.OrderEvent) {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
}

// Events returns a copy of everything published so far.
func (n *NotifierStub) Events() []model.OrderEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.OrderEvent(nil), n.events...)
}
