package usage

import (
	"fmt"
	"math"
)

// Decision classifies a turn against the monthly token budget.
type Decision int

const (
	// Admit lets the turn through silently.
	Admit Decision = iota
	// AdmitWithWarning lets the turn through carrying a budget notice.
	AdmitWithWarning
	// Block rejects the turn before any model call is made.
	Block
)

// String returns the decision name for logs.
func (d Decision) String() string {
	switch d {
	case Admit:
		return "admit"
	case AdmitWithWarning:
		return "admit_with_warning"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// Verdict is a gate decision plus the player-facing notice, empty when
// the decision is a plain Admit.
type Verdict struct {
	Decision Decision
	Notice   string
}

// Gate defaults.
const (
	DefaultMonthlyTokenLimit = 500000
	DefaultWarnThreshold     = 0.9
)

// Gate evaluates a ledger against the monthly token budget. Gates are
// pure values; both checks are read-only and never touch storage.
type Gate struct {
	Limit         int
	WarnThreshold float64
}

// NewGate builds a gate, substituting defaults for zero or negative
// configuration values.
func NewGate(limit int, warnThreshold float64) Gate {
	if limit <= 0 {
		limit = DefaultMonthlyTokenLimit
	}
	if warnThreshold <= 0 || warnThreshold > 1 {
		warnThreshold = DefaultWarnThreshold
	}
	return Gate{Limit: limit, WarnThreshold: warnThreshold}
}

// Before is the pre-call check. It blocks only when the ledger belongs to
// currentMonth and its total has already reached the limit: a fresh
// ledger or one left over from an earlier month never blocks.
func (g Gate) Before(ledger Ledger, currentMonth string) Verdict {
	if ledger.Month == currentMonth && ledger.TotalTokens >= g.Limit {
		return Verdict{
			Decision: Block,
			Notice: fmt.Sprintf(
				"Monthly token budget reached: %d of %d tokens used. Narration is paused until the month rolls over.",
				ledger.TotalTokens, g.Limit),
		}
	}
	return Verdict{Decision: Admit}
}

// After is the post-call check on the freshly updated total. The turn is
// always admitted; crossing the warn threshold or the limit itself only
// attaches a notice.
func (g Gate) After(newTotal int) Verdict {
	if newTotal >= g.Limit {
		return Verdict{
			Decision: AdmitWithWarning,
			Notice: fmt.Sprintf(
				"Monthly token budget is now reached: %d of %d tokens used. Further turns will be paused.",
				newTotal, g.Limit),
		}
	}

	if float64(newTotal) >= float64(g.Limit)*g.WarnThreshold {
		pct := int(math.Round(float64(newTotal) / float64(g.Limit) * 100))
		return Verdict{
			Decision: AdmitWithWarning,
			Notice: fmt.Sprintf(
				"Approaching the monthly token budget: %d of %d tokens used (%d%%).",
				newTotal, g.Limit, pct),
		}
	}

	return Verdict{Decision: Admit}
}
