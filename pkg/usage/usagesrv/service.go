package usagesrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/logx"
	"github.com/Abraxas-365/fateweaver/pkg/usage"
)

// UsageService owns the monthly token ledger: it answers the pre-call
// budget check and records the spend of each completed narrator call.
type UsageService struct {
	store usage.LedgerStore
	gate  usage.Gate
	now   func() time.Time
}

type Option func(*UsageService)

// WithClock overrides the service clock, for tests and replays.
func WithClock(now func() time.Time) Option {
	return func(s *UsageService) {
		s.now = now
	}
}

func NewUsageService(store usage.LedgerStore, gate usage.Gate, opts ...Option) *UsageService {
	s := &UsageService{
		store: store,
		gate:  gate,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Gate returns the configured gate limits.
func (s *UsageService) Gate() usage.Gate {
	return s.gate
}

// Check runs the pre-call budget gate against the stored ledger. It is
// read-only; nothing is written regardless of the verdict.
func (s *UsageService) Check(ctx context.Context) (usage.Verdict, usage.Ledger) {
	ledger := s.load(ctx)
	return s.gate.Before(ledger, usage.MonthKey(s.now())), ledger
}

// Record adds the token count of one completed narrator call to the
// ledger and persists it, rolling the counter over first when the stored
// month is no longer current. It returns the updated ledger and the
// post-call verdict on the new total.
func (s *UsageService) Record(ctx context.Context, tokens int) (usage.Ledger, usage.Verdict, error) {
	if tokens < 0 {
		tokens = 0
	}

	now := s.now()
	month := usage.MonthKey(now)

	ledger := s.load(ctx)
	if ledger.Month != month {
		if ledger.Month != "" {
			logx.WithFields(logx.Fields{
				"from_month": ledger.Month,
				"to_month":   month,
				"old_total":  ledger.TotalTokens,
			}).Info("usage ledger rolled over to a new month")
		}
		ledger = usage.NewLedger(now)
	}

	ledger.TotalTokens += tokens

	if err := s.store.Save(ctx, ledger); err != nil {
		return ledger, usage.Verdict{}, err
	}

	return ledger, s.gate.After(ledger.TotalTokens), nil
}

// CurrentLedger returns the ledger as it applies to the current month.
// A stored ledger from an earlier month reads as zero; nothing is
// persisted by this view.
func (s *UsageService) CurrentLedger(ctx context.Context) usage.Ledger {
	now := s.now()
	ledger := s.load(ctx)
	if !ledger.IsCurrent(now) {
		return usage.NewLedger(now)
	}
	return ledger
}

// load reads the stored ledger. A missing ledger starts fresh silently;
// an unreadable one starts fresh too, but that recovery is logged since
// it discards whatever spend the broken ledger held.
func (s *UsageService) load(ctx context.Context) usage.Ledger {
	stored, err := s.store.Load(ctx)
	if err != nil {
		logx.WithError(err).Warn("usage ledger unreadable, starting a fresh ledger")
		return usage.NewLedger(s.now())
	}
	if stored == nil {
		return usage.Ledger{}
	}
	return *stored
}
