package model

import (
	"encoding/json"
	"strings"
	"time"
)

// OrderStatus describes fulfillment lifecycle of a top-up order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusConfirming OrderStatus = "confirming"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {
		OrderStatusProcessing, OrderStatusConfirming, OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded,
	},
	OrderStatusProcessing: {
		OrderStatusConfirming, OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded,
	},
	OrderStatusConfirming: {
		OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded,
	},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusConfirming,
		OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is accepted from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed || s == OrderStatusRefunded
}

// CanTransition reports whether the state machine has an edge from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Order is a purchase submitted to the fulfillment provider.
type Order struct {
	ID          string
	UserID      int64
	User        *User
	ProductCode string
	ItemRef     string
	Input       map[string]string
	Amount      int64
	ExternalID  string
	Status      OrderStatus
	Remark      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SKU returns the catalogue reference the order was placed for.
func (o Order) SKU() SKU {
	return SKU{ProductCode: o.ProductCode, ItemRef: o.ItemRef}
}

// Placement is the result of a successful order placement.
type Placement struct {
	Order           *Order
	ProviderPayload json.RawMessage
}

// Transition is a compare-and-set request for an order status change.
type Transition struct {
	OrderID string
	From    OrderStatus
	To      OrderStatus
	Remark  string
}

// Refund reports whether applying the transition must credit the order amount back.
func (t Transition) Refund() bool {
	return t.To == OrderStatusRefunded
}

// OrderEvent is published after a transition has been stored.
type OrderEvent struct {
	OrderID    string      `json:"order_id"`
	UserID     int64       `json:"user_id"`
	ExternalID string      `json:"external_id"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	Remark     string      `json:"remark,omitempty"`
	At         time.Time   `json:"at"`
}

// AppendRemark joins note to existing remark text, never dropping what was there.
func AppendRemark(existing, note string) string {
	note = strings.TrimSpace(note)
	switch {
	case note == "":
		return existing
	case existing == "":
		return note
	default:
		return existing + "\n" + note
	}
}
