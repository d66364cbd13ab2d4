package usagesrv_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/usage"
	"github.com/Abraxas-365/fateweaver/pkg/usage/usagesrv"
)

// mockLedgerStore is an in-memory LedgerStore with scriptable failures.
type mockLedgerStore struct {
	ledger    *usage.Ledger
	loadErr   error
	saveErr   error
	saveCalls int
}

func (m *mockLedgerStore) Load(ctx context.Context) (*usage.Ledger, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.ledger == nil {
		return nil, nil
	}
	cp := *m.ledger
	return &cp, nil
}

func (m *mockLedgerStore) Save(ctx context.Context, ledger usage.Ledger) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := ledger
	m.ledger = &cp
	return nil
}

func fixedClock(year int, month time.Month) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
	}
}

// --- Record tests ---

func TestRecord_AccumulatesWithinMonth(t *testing.T) {
	store := &mockLedgerStore{ledger: &usage.Ledger{Month: "2025-1", TotalTokens: 100}}
	svc := usagesrv.NewUsageService(store, usage.NewGate(500000, 0.9),
		usagesrv.WithClock(fixedClock(2025, time.January)))

	ledger, verdict, err := svc.Record(context.Background(), 50)
	if err != nil {
		t.Fatal(err)
	}
	if ledger.Month != "2025-1" || ledger.TotalTokens != 150 {
		t.Fatalf("expected 150 tokens in 2025-1, got %+v", ledger)
	}
	if verdict.Decision != usage.Admit {
		t.Fatalf("expected silent admit, got %s", verdict.Decision)
	}
	if store.saveCalls != 1 {
		t.Fatalf("expected exactly one ledger write, got %d", store.saveCalls)
	}
}

func TestRecord_MonthRollover(t *testing.T) {
	// January ledger holds 5000 tokens; the call happens in February.
	store := &mockLedgerStore{ledger: &usage.Ledger{Month: "2025-1", TotalTokens: 5000}}
	svc := usagesrv.NewUsageService(store, usage.NewGate(500000, 0.9),
		usagesrv.WithClock(fixedClock(2025, time.February)))

	ledger, _, err := svc.Record(context.Background(), 1200)
	if err != nil {
		t.Fatal(err)
	}
	if ledger.Month != "2025-2" {
		t.Fatalf("expected ledger rolled to 2025-2, got %s", ledger.Month)
	}
	if ledger.TotalTokens != 1200 {
		t.Fatalf("expected total reset before adding, got %d", ledger.TotalTokens)
	}
	if store.ledger.Month != "2025-2" || store.ledger.TotalTokens != 1200 {
		t.Fatalf("expected rolled ledger persisted, got %+v", store.ledger)
	}
}

func TestRecord_FirstEverCall(t *testing.T) {
	store := &mockLedgerStore{}
	svc := usagesrv.NewUsageService(store, usage.NewGate(500000, 0.9),
		usagesrv.WithClock(fixedClock(2025, time.March)))

	ledger, _, err := svc.Record(context.Background(), 800)
	if err != nil {
		t.Fatal(err)
	}
	if ledger.Month != "2025-3" || ledger.TotalTokens != 800 {
		t.Fatalf("expected fresh 2025-3 ledger with 800 tokens, got %+v", ledger)
	}
}

func TestRecord_RecoversFromUnreadableLedger(t *testing.T) {
	store := &mockLedgerStore{loadErr: errors.New("ledger file is garbage")}
	svc := usagesrv.NewUsageService(store, usage.NewGate(500000, 0.9),
		usagesrv.WithClock(fixedClock(2025, time.April)))

	ledger, _, err := svc.Record(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if ledger.Month != "2025-4" || ledger.TotalTokens != 10 {
		t.Fatalf("expected fresh ledger after recovery, got %+v", ledger)
	}
	if store.saveCalls != 1 {
		t.Fatal("recovered ledger must be persisted")
	}
}

func TestRecord_SaveFailurePropagates(t *testing.T) {
	store := &mockLedgerStore{saveErr: errors.New("disk full")}
	svc := usagesrv.NewUsageService(store, usage.NewGate(500000, 0.9),
		usagesrv.WithClock(fixedClock(2025, time.May)))

	if _, _, err := svc.Record(context.Background(), 10); err == nil {
		t.Fatal("expected save failure to propagate")
	}
}

func TestRecord_NegativeTokensCountAsZero(t *testing.T) {
	store := &mockLedgerStore{ledger: &usage.Ledger{Month: "2025-6", TotalTokens: 40}}
	svc := usagesrv.NewUsageService(store, usage.NewGate(500000, 0.9),
		usagesrv.WithClock(fixedClock(2025, time.June)))

	ledger, _, err := svc.Record(context.Background(), -5)
	if err != nil {
		t.Fatal(err)
	}
	if ledger.TotalTokens != 40 {
		t.Fatalf("negative spend must not shrink the ledger, got %d", ledger.TotalTokens)
	}
}

// --- Check tests ---

func TestCheck_BlocksOnlyForCurrentMonth(t *testing.T) {
	store := &mockLedgerStore{ledger: &usage.Ledger{Month: "2025-1", TotalTokens: 100}}
	svc := usagesrv.NewUsageService(store, usage.NewGate(100, 0.9),
		usagesrv.WithClock(fixedClock(2025, time.January)))

	verdict, _ := svc.Check(context.Background())
	if verdict.Decision != usage.Block {
		t.Fatalf("expected block in the exhausted month, got %s", verdict.Decision)
	}

	// Same stored ledger, checked one month later.
	svc = usagesrv.NewUsageService(store, usage.NewGate(100, 0.9),
		usagesrv.WithClock(fixedClock(2025, time.February)))

	verdict, _ = svc.Check(context.Background())
	if verdict.Decision != usage.Admit {
		t.Fatalf("expected admit after rollover, got %s", verdict.Decision)
	}
}

func TestCheck_IsReadOnly(t *testing.T) {
	store := &mockLedgerStore{ledger: &usage.Ledger{Month: "2025-1", TotalTokens: 100}}
	svc := usagesrv.NewUsageService(store, usage.NewGate(100, 0.9),
		usagesrv.WithClock(fixedClock(2025, time.January)))

	svc.Check(context.Background())
	svc.Check(context.Background())

	if store.saveCalls != 0 {
		t.Fatalf("pre-call check must never write, got %d writes", store.saveCalls)
	}
}

// --- CurrentLedger tests ---

func TestCurrentLedger_RollsStaleViewWithoutPersisting(t *testing.T) {
	store := &mockLedgerStore{ledger: &usage.Ledger{Month: "2025-1", TotalTokens: 5000}}
	svc := usagesrv.NewUsageService(store, usage.NewGate(500000, 0.9),
		usagesrv.WithClock(fixedClock(2025, time.February)))

	ledger := svc.CurrentLedger(context.Background())
	if ledger.Month != "2025-2" || ledger.TotalTokens != 0 {
		t.Fatalf("expected zeroed current-month view, got %+v", ledger)
	}
	if store.saveCalls != 0 {
		t.Fatal("read-only view must not persist")
	}
	if store.ledger.TotalTokens != 5000 {
		t.Fatal("stored ledger must be untouched")
	}
}
