package model

import "encoding/json"

// SubmitRequest is what the fulfillment provider receives. It never carries our price.
type SubmitRequest struct {
	SKU       SKU
	Input     map[string]string
	Reference string
}

// ProviderOrder is the provider's view on an order.
type ProviderOrder struct {
	ExternalID string
	Status     string
	Message    string
	Payload    json.RawMessage
}
