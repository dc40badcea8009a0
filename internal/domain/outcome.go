package domain

import "strings"

// RailOutcome is the normalized result of an inbound rail event: the rail's
// own reference plus the lifecycle status it maps to. Rails speak different
// vocabularies ("Success", "stk_callback_completed", ...); normalizing here
// collapses all of them into the one state machine the reconciler runs.
type RailOutcome struct {
	Reference string
	Status    TransactionStatus
}

// Completed reports whether the outcome makes the transaction
// credit-eligible.
func (o RailOutcome) Completed() bool {
	return o.Status == TxStatusCompleted
}

// NormalizeStatus maps a rail event name and its nested status field to the
// internal lifecycle. Any case-insensitive mention of "success" or
// "completed" in either field counts as completed; otherwise the reported
// status passes through lowercased, defaulting to pending when absent.
func NormalizeStatus(event, status string) TransactionStatus {
	e := strings.ToLower(event)
	s := strings.ToLower(status)
	if strings.Contains(s, "success") || strings.Contains(s, "completed") ||
		strings.Contains(e, "success") || strings.Contains(e, "completed") {
		return TxStatusCompleted
	}
	if s == "" {
		return TxStatusPending
	}
	return TransactionStatus(s)
}
