package model

import "time"

// EntryKind classifies ledger movements.
type EntryKind string

const (
	EntryKindOrderDebit   EntryKind = "order_debit"
	EntryKindCompensation EntryKind = "compensation"
	EntryKindRefund       EntryKind = "refund"
	EntryKindTopup        EntryKind = "topup"
)

// LedgerEntry records a single balance movement. Amount is negative for debits.
type LedgerEntry struct {
	ID           int64
	UserID       int64
	Reference    string
	Kind         EntryKind
	Amount       int64
	BalanceAfter int64
	CreatedAt    time.Time
}

// BalanceSummary aggregates wallet state. Spent is order debits net of compensations and refunds.
type BalanceSummary struct {
	Current int64
	Spent   int64
}
