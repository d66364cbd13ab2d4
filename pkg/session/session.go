// Package session coordinates one player turn end to end: budget gate,
// narration, state merge, persistence, usage metering and journaling.
package session

import (
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/kernel"
)

// UsageReport is the caller-facing view of the monthly ledger.
type UsageReport struct {
	Month       string `json:"month"`
	TotalTokens int    `json:"total_tokens"`
	Limit       int    `json:"limit"`
	Remaining   int    `json:"remaining"`
}

// TurnResult is everything the table sees after a completed turn. Notice
// is a dedicated field so clients can render budget warnings apart from
// the story text; it is empty on silent turns.
type TurnResult struct {
	TurnID    kernel.TurnID  `json:"turn_id"`
	Narration string         `json:"narration"`
	Notice    string         `json:"notice,omitempty"`
	Delta     any            `json:"delta"`
	Summary   map[string]any `json:"summary"`
	Usage     UsageReport    `json:"usage"`
}

// TurnRecord is the journal entry of one committed turn.
type TurnRecord struct {
	TurnID     kernel.TurnID     `json:"turn_id"`
	CampaignID kernel.CampaignID `json:"campaign_id"`
	Input      string            `json:"input"`
	Narration  string            `json:"narration"`
	Delta      any               `json:"delta"`
	TokensUsed int               `json:"tokens_used"`
	MonthTotal int               `json:"month_total"`
	CreatedAt  time.Time         `json:"created_at"`
}
