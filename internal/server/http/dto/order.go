package dto

import (
	"encoding/json"
	"time"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// PlaceOrderRequest describes a purchase of one catalogue item.
type PlaceOrderRequest struct {
	ProductCode string            `json:"product_code"`
	ItemRef     string            `json:"item_ref"`
	Input       map[string]string `json:"input"`
}

// UserResponse is the public part of an account embedded in other responses.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserResponse returns nil for a nil user.
func NewUserResponse(u *model.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// OrderResponse describes an order as shown to its owner.
type OrderResponse struct {
	ID          string            `json:"id"`
	UserID      int64             `json:"user_id"`
	User        *UserResponse     `json:"user,omitempty"`
	ProductCode string            `json:"product_code"`
	ItemRef     string            `json:"item_ref"`
	Input       map[string]string `json:"input,omitempty"`
	Amount      int64             `json:"amount"`
	ExternalID  string            `json:"external_id,omitempty"`
	Status      string            `json:"status"`
	Remark      string            `json:"remark,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewOrderResponse converts a domain order.
func NewOrderResponse(o model.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		User:        NewUserResponse(o.User),
		ProductCode: o.ProductCode,
		ItemRef:     o.ItemRef,
		Input:       o.Input,
		Amount:      o.Amount,
		ExternalID:  o.ExternalID,
		Status:      string(o.Status),
		Remark:      o.Remark,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// NewOrderList converts a slice of orders.
func NewOrderList(orders []model.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, NewOrderResponse(o))
	}
	return resp
}

// PlacementResponse is returned after an order was accepted.
type PlacementResponse struct {
	OrderResponse
	ProviderResponse json.RawMessage `json:"provider_response,omitempty"`
}

// CheckStatusResponse carries the refreshed order with the provider's raw answer.
type CheckStatusResponse struct {
	Order            OrderResponse   `json:"order"`
	ProviderStatus   string          `json:"provider_status"`
	ProviderResponse json.RawMessage `json:"provider_response,omitempty"`
}

// CallbackRequest accepts the field variants used by supported providers.
type CallbackRequest struct {
	TransactionID json.RawMessage `json:"transactionId"`
	OrderID       json.RawMessage `json:"order_id"`
	ExternalID    json.RawMessage `json:"external_id"`
	State         string          `json:"state"`
	Status        string          `json:"status"`
	Message       string          `json:"message"`
}

// Identifier returns the first present provider order id, string or number.
func (r CallbackRequest) Identifier() string {
	for _, raw := range []json.RawMessage{r.TransactionID, r.OrderID, r.ExternalID} {
		if id := rawID(raw); id != "" {
			return id
		}
	}
	return ""
}

// ProviderStatus returns state or, when absent, status.
func (r CallbackRequest) ProviderStatus() string {
	if r.State != "" {
		return r.State
	}
	return r.Status
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// CallbackResponse acknowledges a processed webhook.
type CallbackResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Applied bool   `json:"applied"`
}
