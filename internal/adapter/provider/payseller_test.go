package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/domain/model"
)

func TestPaySellerSubmitOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/agent/orders/create" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["product_key"] != "pubgm" || body["item_sku"] != "60uc" {
			t.Errorf("unexpected body %v", body)
		}
		if _, ok := body["amount"]; ok {
			t.Errorf("price must not be sent to the provider")
		}
		input, _ := body["input"].(map[string]any)
		if input["player_id"] != "5123" {
			t.Errorf("input not forwarded: %v", body["input"])
		}
		_, _ = w.Write([]byte(`{"order":{"transactionId":"PS-1","state":"pending"}}`))
	}))
	defer srv.Close()

	gw, err := NewPaySeller(providerConfig(srv.URL), testLogger())
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	if gw.Name() != "payseller" {
		t.Fatalf("unexpected name %q", gw.Name())
	}

	order, err := gw.SubmitOrder(context.Background(), model.SubmitRequest{
		SKU:       model.SKU{ProductCode: "pubgm", ItemRef: "60uc"},
		Input:     map[string]string{"player_id": "5123"},
		Reference: "order-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ExternalID != "PS-1" || order.Status != "pending" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !json.Valid(order.Payload) {
		t.Fatalf("expected raw payload to be kept, got %s", order.Payload)
	}
}

func TestPaySellerSubmitWithoutIDIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"order":{"state":"pending"}}`))
	}))
	defer srv.Close()

	gw, err := NewPaySeller(providerConfig(srv.URL), testLogger())
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	_, err = gw.SubmitOrder(context.Background(), model.SubmitRequest{SKU: model.SKU{ProductCode: "pubgm", ItemRef: "60uc"}})
	var rejected *domainErrors.ProviderRejectedError
	if !errors.As(err, &rejected) || rejected.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected bad gateway rejection, got %v", err)
	}
}

func TestPaySellerOrderStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus string
		wantID     string
	}{
		{name: "nested state", body: `{"order":{"transactionId":"PS-1","state":"completed","message":"delivered"}}`, wantStatus: "completed", wantID: "PS-1"},
		{name: "top level status", body: `{"status":"processing"}`, wantStatus: "processing", wantID: "PS-1"},
		{name: "state wins over status", body: `{"order":{"state":"failed","status":"pending"}}`, wantStatus: "failed", wantID: "PS-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/agent/orders/PS-1" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			gw, err := NewPaySeller(providerConfig(srv.URL), testLogger())
			if err != nil {
				t.Fatalf("failed to create adapter: %v", err)
			}
			order, err := gw.OrderStatus(context.Background(), "PS-1", model.SKU{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if order.Status != tt.wantStatus || order.ExternalID != tt.wantID {
				t.Fatalf("unexpected order: %+v", order)
			}
		})
	}
}

func TestPaySellerOrderStatusDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()

	gw, err := NewPaySeller(providerConfig(srv.URL), testLogger())
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	if _, err := gw.OrderStatus(context.Background(), "PS-1", model.SKU{}); err == nil {
		t.Fatal("expected decode error")
	}
}
