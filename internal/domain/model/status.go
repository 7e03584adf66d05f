package model

import "strings"

var providerStatusAliases = map[string]OrderStatus{
	"pending":     OrderStatusPending,
	"created":     OrderStatusPending,
	"queued":      OrderStatusPending,
	"waiting":     OrderStatusPending,
	"new":         OrderStatusPending,
	"processing":  OrderStatusProcessing,
	"in_progress": OrderStatusProcessing,
	"in progress": OrderStatusProcessing,
	"running":     OrderStatusProcessing,
	"confirming":  OrderStatusConfirming,
	"verifying":   OrderStatusConfirming,
	"completed":   OrderStatusCompleted,
	"complete":    OrderStatusCompleted,
	"success":     OrderStatusCompleted,
	"successful":  OrderStatusCompleted,
	"succeeded":   OrderStatusCompleted,
	"done":        OrderStatusCompleted,
	"delivered":   OrderStatusCompleted,
	"failed":      OrderStatusFailed,
	"fail":        OrderStatusFailed,
	"error":       OrderStatusFailed,
	"cancelled":   OrderStatusFailed,
	"canceled":    OrderStatusFailed,
	"rejected":    OrderStatusFailed,
	"expired":     OrderStatusFailed,
	"refunded":    OrderStatusRefunded,
	"refund":      OrderStatusRefunded,
	"reversed":    OrderStatusRefunded,
}

// Checked in order: "refund" must win over "fail" for values like "failed_refunded".
var providerStatusFragments = []struct {
	fragment string
	status   OrderStatus
}{
	{"refund", OrderStatusRefunded},
	{"fail", OrderStatusFailed},
	{"cancel", OrderStatusFailed},
	{"complete", OrderStatusCompleted},
	{"success", OrderStatusCompleted},
	{"confirm", OrderStatusConfirming},
	{"process", OrderStatusProcessing},
	{"pending", OrderStatusPending},
}

// ParseProviderStatus maps free-form provider status text onto the order lifecycle.
// The second result is false when the text is not recognized, meaning "no change".
func ParseProviderStatus(raw string) (OrderStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", false
	}
	if status, ok := providerStatusAliases[normalized]; ok {
		return status, true
	}
	for _, f := range providerStatusFragments {
		if containsAffirmed(normalized, f.fragment) {
			return f.status, true
		}
	}
	return "", false
}

var negationPrefixes = []string{"un", "in", "not", "non", "not_", "not-", "not ", "non-", "non_"}

// containsAffirmed reports whether fragment occurs in s at least once without a
// negating prefix, so "incomplete" or "not_refunded" do not count.
func containsAffirmed(s, fragment string) bool {
	for offset := 0; ; {
		i := strings.Index(s[offset:], fragment)
		if i < 0 {
			return false
		}
		at := offset + i
		if !negated(s[:at]) {
			return true
		}
		offset = at + len(fragment)
	}
}

func negated(before string) bool {
	for _, p := range negationPrefixes {
		if !strings.HasSuffix(before, p) {
			continue
		}
		// A prefix only negates at the start of a word.
		head := before[:len(before)-len(p)]
		if head == "" || !isLetter(head[len(head)-1]) {
			return true
		}
	}
	return false
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}
