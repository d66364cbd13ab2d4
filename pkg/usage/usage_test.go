package usage_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/usage"
)

// --- MonthKey tests ---

func TestMonthKey_UnpaddedOneBased(t *testing.T) {
	jan := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	if got := usage.MonthKey(jan); got != "2025-1" {
		t.Fatalf("expected 2025-1, got %s", got)
	}

	nov := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	if got := usage.MonthKey(nov); got != "2025-11" {
		t.Fatalf("expected 2025-11, got %s", got)
	}
}

func TestNewLedger_StartsAtZero(t *testing.T) {
	now := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	ledger := usage.NewLedger(now)
	if ledger.Month != "2025-2" || ledger.TotalTokens != 0 {
		t.Fatalf("expected zeroed 2025-2 ledger, got %+v", ledger)
	}
}

// --- Gate.Before tests ---

func TestGateBefore_FreshLedgerNeverBlocks(t *testing.T) {
	gate := usage.NewGate(100, 0.9)

	verdict := gate.Before(usage.Ledger{}, "2025-1")
	if verdict.Decision != usage.Admit {
		t.Fatalf("fresh ledger must admit, got %s", verdict.Decision)
	}
}

func TestGateBefore_BlocksWhenExhausted(t *testing.T) {
	gate := usage.NewGate(100, 0.9)

	verdict := gate.Before(usage.Ledger{Month: "2025-1", TotalTokens: 100}, "2025-1")
	if verdict.Decision != usage.Block {
		t.Fatalf("expected block at the limit, got %s", verdict.Decision)
	}
	if verdict.Notice == "" {
		t.Fatal("block verdict must carry a notice")
	}

	verdict = gate.Before(usage.Ledger{Month: "2025-1", TotalTokens: 250}, "2025-1")
	if verdict.Decision != usage.Block {
		t.Fatalf("expected block over the limit, got %s", verdict.Decision)
	}
}

func TestGateBefore_AdmitsUnderTheLimit(t *testing.T) {
	gate := usage.NewGate(100, 0.9)

	verdict := gate.Before(usage.Ledger{Month: "2025-1", TotalTokens: 99}, "2025-1")
	if verdict.Decision != usage.Admit || verdict.Notice != "" {
		t.Fatalf("expected silent admit, got %+v", verdict)
	}
}

func TestGateBefore_StaleMonthDoesNotBlock(t *testing.T) {
	gate := usage.NewGate(100, 0.9)

	// Exhausted in December, checked in January: the rollover makes the
	// spend irrelevant.
	verdict := gate.Before(usage.Ledger{Month: "2024-12", TotalTokens: 500}, "2025-1")
	if verdict.Decision != usage.Admit {
		t.Fatalf("stale ledger must not block, got %s", verdict.Decision)
	}
}

// --- Gate.After tests ---

func TestGateAfter_WarnsApproachingLimit(t *testing.T) {
	gate := usage.NewGate(100, 0.9)

	// 85 -> 95 crosses the 90% threshold.
	verdict := gate.After(95)
	if verdict.Decision != usage.AdmitWithWarning {
		t.Fatalf("expected warning at 95/100, got %s", verdict.Decision)
	}
	if !strings.Contains(verdict.Notice, "Approaching") {
		t.Fatalf("expected approaching notice, got %q", verdict.Notice)
	}
	if !strings.Contains(verdict.Notice, "95%") {
		t.Fatalf("expected rounded percentage in notice, got %q", verdict.Notice)
	}
}

func TestGateAfter_SilentWellUnderLimit(t *testing.T) {
	gate := usage.NewGate(100, 0.9)

	// 10 -> 50 stays far from the threshold.
	verdict := gate.After(50)
	if verdict.Decision != usage.Admit || verdict.Notice != "" {
		t.Fatalf("expected silent admit at 50/100, got %+v", verdict)
	}
}

func TestGateAfter_ExactThresholdWarns(t *testing.T) {
	gate := usage.NewGate(100, 0.9)

	verdict := gate.After(90)
	if verdict.Decision != usage.AdmitWithWarning {
		t.Fatalf("expected warning exactly at threshold, got %s", verdict.Decision)
	}

	verdict = gate.After(89)
	if verdict.Decision != usage.Admit {
		t.Fatalf("expected admit just under threshold, got %s", verdict.Decision)
	}
}

func TestGateAfter_LimitReachedNotice(t *testing.T) {
	gate := usage.NewGate(100, 0.9)

	verdict := gate.After(104)
	if verdict.Decision != usage.AdmitWithWarning {
		t.Fatalf("the turn that crosses the limit is still admitted, got %s", verdict.Decision)
	}
	if !strings.Contains(verdict.Notice, "now reached") {
		t.Fatalf("expected limit-reached notice, got %q", verdict.Notice)
	}
}

func TestGateAfter_PercentageRounding(t *testing.T) {
	gate := usage.NewGate(1000, 0.9)

	verdict := gate.After(905) // 90.5% rounds to 91%
	if !strings.Contains(verdict.Notice, "91%") {
		t.Fatalf("expected 91%% in notice, got %q", verdict.Notice)
	}
}

// --- NewGate defaults ---

func TestNewGate_Defaults(t *testing.T) {
	gate := usage.NewGate(0, 0)
	if gate.Limit != usage.DefaultMonthlyTokenLimit {
		t.Fatalf("expected default limit, got %d", gate.Limit)
	}
	if gate.WarnThreshold != usage.DefaultWarnThreshold {
		t.Fatalf("expected default threshold, got %v", gate.WarnThreshold)
	}

	gate = usage.NewGate(100, 1.5)
	if gate.WarnThreshold != usage.DefaultWarnThreshold {
		t.Fatalf("out-of-range threshold must fall back, got %v", gate.WarnThreshold)
	}
}
