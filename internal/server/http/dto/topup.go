package dto

import (
	"time"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

// TopupRequest files a manual wallet top-up.
type TopupRequest struct {
	Method         string `json:"method"`
	Amount         int64  `json:"amount"`
	TransactionRef string `json:"transaction_ref"`
}

// TopupResponse describes a top-up request.
type TopupResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Method         string    `json:"method"`
	Amount         int64     `json:"amount"`
	TransactionRef string    `json:"transaction_ref"`
	Status         string    `json:"status"`
	AdminNote      string    `json:"admin_note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewTopupResponse converts a domain top-up.
func NewTopupResponse(t model.Topup) TopupResponse {
	return TopupResponse{
		ID:             t.ID,
		UserID:         t.UserID,
		Method:         t.Method,
		Amount:         t.Amount,
		TransactionRef: t.TransactionRef,
		Status:         string(t.Status),
		AdminNote:      t.AdminNote,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// NewTopupList converts a slice of top-ups.
func NewTopupList(topups []model.Topup) []TopupResponse {
	resp := make([]TopupResponse, 0, len(topups))
	for _, t := range topups {
		resp = append(resp, NewTopupResponse(t))
	}
	return resp
}
