// Package usage meters narrator token consumption against a monthly
// budget. The ledger is a single month-keyed counter; the gate turns the
// counter into admit, warn or block decisions around each model call.
package usage

import (
	"fmt"
	"time"
)

// Ledger is the persistent token counter for one calendar month.
type Ledger struct {
	Month       string `json:"month"`
	TotalTokens int    `json:"total_tokens"`
}

// MonthKey returns the ledger key for t: year and 1-based month number,
// unpadded, e.g. "2025-1" for January 2025.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%d-%d", t.Year(), int(t.Month()))
}

// NewLedger returns a zeroed ledger for the month containing t.
func NewLedger(t time.Time) Ledger {
	return Ledger{Month: MonthKey(t)}
}

// IsCurrent reports whether the ledger belongs to the month containing t.
func (l Ledger) IsCurrent(t time.Time) bool {
	return l.Month == MonthKey(t)
}
