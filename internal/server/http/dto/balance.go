package dto

import (
	"time"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// BalanceResponse represents the wallet summary in settlement currency units.
type BalanceResponse struct {
	Current int64 `json:"current"`
	Spent   int64 `json:"spent"`
}

// LedgerEntryResponse is one balance movement.
type LedgerEntryResponse struct {
	ID           int64     `json:"id"`
	Reference    string    `json:"reference"`
	Kind         string    `json:"kind"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewLedgerEntries converts ledger entries for the wire.
func NewLedgerEntries(entries []model.LedgerEntry) []LedgerEntryResponse {
	resp := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, LedgerEntryResponse{
			ID:           e.ID,
			Reference:    e.Reference,
			Kind:         string(e.Kind),
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			CreatedAt:    e.CreatedAt,
		})
	}
	return resp
}

// InsufficientFundsResponse explains a rejected purchase.
type InsufficientFundsResponse struct {
	Message  string `json:"message"`
	Required int64  `json:"required"`
	Current  int64  `json:"current"`
	Shortage int64  `json:"shortage"`
}
