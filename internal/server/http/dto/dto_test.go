package dto

import (
	"encoding/json"
	"testing"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

func TestCallbackRequestIdentifier(t *testing.T) {
	cases := []struct {
		body string
		id   string
	}{
		{`{"transactionId":"T-1","order_id":"O-1"}`, "T-1"},
		{`{"order_id":12345}`, "12345"},
		{`{"external_id":"E-9"}`, "E-9"},
		{`{"transactionId":null,"order_id":"O-2"}`, "O-2"},
		{`{"status":"completed"}`, ""},
	}
	for _, tc := range cases {
		var req CallbackRequest
		if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.body, err)
		}
		if got := req.Identifier(); got != tc.id {
			t.Errorf("%s: expected id %q, got %q", tc.body, tc.id, got)
		}
	}
}

func TestCallbackRequestProviderStatus(t *testing.T) {
	if got := (CallbackRequest{State: "SUCCESS", Status: "pending"}).ProviderStatus(); got != "SUCCESS" {
		t.Fatalf("state must win, got %q", got)
	}
	if got := (CallbackRequest{Status: "pending"}).ProviderStatus(); got != "pending" {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestNewOrderResponseUser(t *testing.T) {
	order := model.Order{ID: "o1", UserID: 3}
	if resp := NewOrderResponse(order); resp.User != nil {
		t.Fatalf("expected no user for unpopulated order, got %+v", resp.User)
	}

	order.User = &model.User{ID: 3, Name: "Bob", Email: "bob@example.com"}
	resp := NewOrderResponse(order)
	if resp.User == nil || *resp.User != (UserResponse{ID: 3, Name: "Bob", Email: "bob@example.com"}) {
		t.Fatalf("unexpected user %+v", resp.User)
	}
}
