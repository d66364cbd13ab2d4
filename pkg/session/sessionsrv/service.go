package sessionsrv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/ai/llm"
	"github.com/Abraxas-365/fateweaver/pkg/asyncx"
	"github.com/Abraxas-365/fateweaver/pkg/campaign"
	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/kernel"
	"github.com/Abraxas-365/fateweaver/pkg/logx"
	"github.com/Abraxas-365/fateweaver/pkg/narrator"
	"github.com/Abraxas-365/fateweaver/pkg/session"
	"github.com/Abraxas-365/fateweaver/pkg/usage"
	"github.com/Abraxas-365/fateweaver/pkg/usage/usagesrv"
)

// Narrator is the slice of the narrator the turn loop needs.
type Narrator interface {
	Narrate(ctx context.Context, state campaign.State, input string) (*narrator.Turn, llm.Usage, error)
}

// TurnService runs the read-merge-write turn loop. Every mutation of the
// campaign document or the ledger happens under the injected lock, one
// turn at a time.
type TurnService struct {
	states      campaign.StateStore
	snapshots   campaign.SnapshotStore
	usage       *usagesrv.UsageService
	narrator    Narrator
	locker      session.Locker
	journal     session.TurnJournal
	alerter     session.BudgetAlerter
	campaignID  kernel.CampaignID
	callTimeout time.Duration
	now         func() time.Time
}

type Option func(*TurnService)

// WithSnapshotStore enables save-game snapshots.
func WithSnapshotStore(store campaign.SnapshotStore) Option {
	return func(s *TurnService) { s.snapshots = store }
}

// WithJournal records every committed turn.
func WithJournal(journal session.TurnJournal) Option {
	return func(s *TurnService) { s.journal = journal }
}

// WithAlerter sends budget milestones to the game master.
func WithAlerter(alerter session.BudgetAlerter) Option {
	return func(s *TurnService) { s.alerter = alerter }
}

// WithCampaignID stamps records and snapshots with a campaign namespace.
func WithCampaignID(id kernel.CampaignID) Option {
	return func(s *TurnService) {
		if !id.IsEmpty() {
			s.campaignID = id
		}
	}
}

// WithCallTimeout bounds one narration call wall-clock. Zero disables
// the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(s *TurnService) { s.callTimeout = d }
}

// WithClock overrides the service clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TurnService) { s.now = now }
}

func NewTurnService(
	states campaign.StateStore,
	usageSvc *usagesrv.UsageService,
	nar Narrator,
	locker session.Locker,
	opts ...Option,
) *TurnService {
	s := &TurnService{
		states:      states,
		usage:       usageSvc,
		narrator:    nar,
		locker:      locker,
		campaignID:  kernel.DefaultCampaignID,
		callTimeout: 60 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bootstrap seeds the campaign document on first boot. seed may be nil,
// in which case the built-in starter state is written. An existing
// document is never touched.
func (s *TurnService) Bootstrap(ctx context.Context, seed campaign.State) error {
	exists, err := s.states.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if seed == nil {
		seed = campaign.StarterState()
	}
	if err := s.states.Save(ctx, seed); err != nil {
		return err
	}

	logx.WithField("campaign_id", s.campaignID.String()).Info("seeded new campaign state")
	return nil
}

// ProcessTurn runs one player input through the full loop: load state,
// budget gate, narration, merge, persist, meter, journal. A turn that
// fails before the state write leaves storage untouched.
func (s *TurnService) ProcessTurn(ctx context.Context, input string) (*session.TurnResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, session.ErrEmptyInput()
	}

	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	turnID := kernel.NewTurnID()
	ctx = kernel.WithTurnID(ctx, turnID)
	log := logx.WithFields(logx.Fields{"turn_id": turnID.String()})

	state, err := s.states.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Pre-call gate: a blocked turn makes no provider call and writes
	// nothing at all.
	verdict, ledger := s.usage.Check(ctx)
	if verdict.Decision == usage.Block {
		report := s.report(ledger)
		log.WithFields(logx.Fields{
			"month":        report.Month,
			"total_tokens": report.TotalTokens,
		}).Warn("turn blocked by budget gate")
		s.alertExhausted(report, verdict.Notice)

		return nil, usage.ErrBudgetBlocked().
			WithDetail("notice", verdict.Notice).
			WithDetail("month", report.Month).
			WithDetail("total_tokens", report.TotalTokens).
			WithDetail("limit", report.Limit).
			WithDetail("summary", state.Summary())
	}

	turn, tokens, err := s.narrate(ctx, state, input)
	if err != nil {
		return nil, err
	}

	campaign.Merge(state, turn.Delta)

	if err := s.states.Save(ctx, state); err != nil {
		return nil, err
	}

	ledger, post, err := s.usage.Record(ctx, tokens.TotalTokens)
	if err != nil {
		return nil, err
	}

	report := s.report(ledger)
	result := &session.TurnResult{
		TurnID:    turnID,
		Narration: turn.Narration,
		Notice:    post.Notice,
		Delta:     turn.Delta,
		Summary:   state.Summary(),
		Usage:     report,
	}

	s.journalTurn(ctx, log, session.TurnRecord{
		TurnID:     turnID,
		CampaignID: s.campaignID,
		Input:      input,
		Narration:  turn.Narration,
		Delta:      turn.Delta,
		TokensUsed: tokens.TotalTokens,
		MonthTotal: ledger.TotalTokens,
		CreatedAt:  s.now(),
	})

	if post.Decision == usage.AdmitWithWarning {
		if ledger.TotalTokens >= s.usage.Gate().Limit {
			s.alertExhausted(report, post.Notice)
		} else {
			s.alertWarning(report, post.Notice)
		}
	}

	log.WithFields(logx.Fields{
		"tokens_used": tokens.TotalTokens,
		"month_total": ledger.TotalTokens,
		"decision":    post.Decision.String(),
	}).Info("turn completed")

	return result, nil
}

// narrate calls the provider under the configured wall-clock bound.
func (s *TurnService) narrate(ctx context.Context, state campaign.State, input string) (*narrator.Turn, llm.Usage, error) {
	if s.callTimeout <= 0 {
		return s.narrator.Narrate(ctx, state, input)
	}

	type narration struct {
		turn   *narrator.Turn
		tokens llm.Usage
	}

	out, err := asyncx.WithTimeout(ctx, s.callTimeout, func(ctx context.Context) (narration, error) {
		turn, tokens, err := s.narrator.Narrate(ctx, state, input)
		return narration{turn: turn, tokens: tokens}, err
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, llm.Usage{}, narrator.ErrProviderFailed(err).
				WithDetail("reason", "narration timed out").
				WithDetail("timeout", s.callTimeout.String())
		}
		return nil, llm.Usage{}, err
	}
	return out.turn, out.tokens, nil
}

// ============================================================================
// Read Side
// ============================================================================

// CurrentState returns the full campaign document.
func (s *TurnService) CurrentState(ctx context.Context) (campaign.State, error) {
	return s.states.Load(ctx)
}

// StateSummary returns the party and economy view of the document.
func (s *TurnService) StateSummary(ctx context.Context) (map[string]any, error) {
	state, err := s.states.Load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Summary(), nil
}

// Usage returns the current-month usage report.
func (s *TurnService) Usage(ctx context.Context) session.UsageReport {
	return s.report(s.usage.CurrentLedger(ctx))
}

// ListTurns pages through the turn journal, newest first.
func (s *TurnService) ListTurns(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[session.TurnRecord], error) {
	if s.journal == nil {
		return kernel.NewPaginated([]session.TurnRecord{}, opts.Page, opts.PageSize, 0), nil
	}
	return s.journal.List(ctx, opts)
}

// ============================================================================
// Snapshots
// ============================================================================

// CreateSnapshot stores a point-in-time copy of the state. It takes the
// session lock so the copy never catches a turn mid-write.
func (s *TurnService) CreateSnapshot(ctx context.Context, label string) (*campaign.Snapshot, error) {
	if s.snapshots == nil {
		return nil, errx.New("snapshot store not configured", errx.TypeInternal)
	}
	if label == "" {
		label = campaign.SnapshotLabelManual
	}

	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.states.Load(ctx)
	if err != nil {
		return nil, err
	}

	snap := campaign.Snapshot{
		ID:         kernel.NewSnapshotID(),
		CampaignID: s.campaignID,
		State:      state.Clone(),
		Label:      label,
		CreatedAt:  s.now(),
	}
	if err := s.snapshots.SaveSnapshot(ctx, snap); err != nil {
		return nil, err
	}

	logx.WithFields(logx.Fields{
		"snapshot_id": snap.ID.String(),
		"label":       label,
	}).Info("campaign snapshot saved")

	return &snap, nil
}

// RestoreSnapshot replaces the live state with a stored snapshot and
// returns the restored summary.
func (s *TurnService) RestoreSnapshot(ctx context.Context, id kernel.SnapshotID) (map[string]any, error) {
	if s.snapshots == nil {
		return nil, errx.New("snapshot store not configured", errx.TypeInternal)
	}

	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	snap, err := s.snapshots.FindSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	restored := snap.State.Clone()
	if err := s.states.Save(ctx, restored); err != nil {
		return nil, err
	}

	logx.WithFields(logx.Fields{
		"snapshot_id": id.String(),
		"taken_at":    snap.CreatedAt,
	}).Info("campaign state restored from snapshot")

	return restored.Summary(), nil
}

// ListSnapshots lists stored snapshots, newest first.
func (s *TurnService) ListSnapshots(ctx context.Context) ([]campaign.SnapshotInfo, error) {
	if s.snapshots == nil {
		return []campaign.SnapshotInfo{}, nil
	}
	return s.snapshots.ListSnapshots(ctx)
}

// ============================================================================
// Internals
// ============================================================================

func (s *TurnService) report(ledger usage.Ledger) session.UsageReport {
	month := ledger.Month
	if month == "" {
		month = usage.MonthKey(s.now())
	}

	limit := s.usage.Gate().Limit
	remaining := limit - ledger.TotalTokens
	if remaining < 0 {
		remaining = 0
	}
	return session.UsageReport{
		Month:       month,
		TotalTokens: ledger.TotalTokens,
		Limit:       limit,
		Remaining:   remaining,
	}
}

// journalTurn records a committed turn. The state is already persisted
// at this point, so a journal failure only logs.
func (s *TurnService) journalTurn(ctx context.Context, log *logx.Entry, record session.TurnRecord) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(ctx, record); err != nil {
		log.WithError(err).Warn("turn journal append failed")
	}
}

func (s *TurnService) alertWarning(report session.UsageReport, notice string) {
	if s.alerter == nil {
		return
	}
	s.alerter.BudgetWarning(report, notice)
}

func (s *TurnService) alertExhausted(report session.UsageReport, notice string) {
	if s.alerter == nil {
		return
	}
	s.alerter.BudgetExhausted(report, notice)
}
