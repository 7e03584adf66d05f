package model

import (
	"strconv"
	"time"
)

// TopupStatus describes the review state of a wallet top-up request.
type TopupStatus string

const (
	TopupStatusPending  TopupStatus = "pending"
	TopupStatusApproved TopupStatus = "approved"
	TopupStatusRejected TopupStatus = "rejected"
)

// Topup is a user's request to add funds, credited only after admin approval.
type Topup struct {
	ID             int64
	UserID         int64
	Method         string
	Amount         int64
	TransactionRef string
	Status         TopupStatus
	AdminNote      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Reference is the ledger reference used for the approval credit.
func (t Topup) Reference() string {
	return "topup:" + strconv.FormatInt(t.ID, 10)
}
