package sessioninfra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/kernel"
	"github.com/Abraxas-365/fateweaver/pkg/session"
)

// PostgresTurnJournal es la implementación en PostgreSQL del journal de
// turnos. Cada turno confirmado es una fila inmutable.
type PostgresTurnJournal struct {
	db         *sqlx.DB
	campaignID kernel.CampaignID
}

// NewPostgresTurnJournal crea una nueva instancia del journal.
func NewPostgresTurnJournal(db *sqlx.DB, campaignID kernel.CampaignID) *PostgresTurnJournal {
	return &PostgresTurnJournal{
		db:         db,
		campaignID: campaignID,
	}
}

// EnsureSchema crea las tablas del módulo si no existen.
func (r *PostgresTurnJournal) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS turn_journal (
			turn_id     TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL,
			input       TEXT NOT NULL,
			narration   TEXT NOT NULL,
			delta       JSONB,
			tokens_used BIGINT NOT NULL DEFAULT 0,
			month_total BIGINT NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_turn_journal_campaign
			ON turn_journal (campaign_id, created_at DESC);`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errx.Wrap(err, "failed to ensure turn journal schema", errx.TypeInternal)
	}
	return nil
}

// Append inserta un turno confirmado en el journal.
func (r *PostgresTurnJournal) Append(ctx context.Context, record session.TurnRecord) error {
	p, err := recordToPersistence(record)
	if err != nil {
		return session.ErrJournalFailure(err).WithDetail("turn_id", record.TurnID.String())
	}

	query := `
		INSERT INTO turn_journal (turn_id, campaign_id, input, narration, delta, tokens_used, month_total, created_at)
		VALUES (:turn_id, :campaign_id, :input, :narration, :delta, :tokens_used, :month_total, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return session.ErrJournalFailure(err).
				WithDetail("turn_id", record.TurnID.String()).
				WithDetail("reason", "turn id already journaled")
		}
		return session.ErrJournalFailure(err).WithDetail("turn_id", record.TurnID.String())
	}
	return nil
}

// List lista los turnos de la campaña, el más reciente primero.
func (r *PostgresTurnJournal) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[session.TurnRecord], error) {
	page, size := normalizePage(opts)

	var total int
	countQuery := `SELECT COUNT(*) FROM turn_journal WHERE campaign_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, r.campaignID.String()); err != nil {
		return kernel.Paginated[session.TurnRecord]{}, session.ErrJournalFailure(err).
			WithDetail("campaign_id", r.campaignID.String())
	}

	var rows []turnPersistence
	query := `
		SELECT turn_id, campaign_id, input, narration, delta, tokens_used, month_total, created_at
		FROM turn_journal
		WHERE campaign_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &rows, query, r.campaignID.String(), size, (page-1)*size)
	if err != nil {
		return kernel.Paginated[session.TurnRecord]{}, session.ErrJournalFailure(err).
			WithDetail("campaign_id", r.campaignID.String())
	}

	records := make([]session.TurnRecord, len(rows))
	for i, row := range rows {
		records[i] = recordToDomain(row)
	}
	return kernel.NewPaginated(records, page, size, total), nil
}

// Struct auxiliar para persistencia que maneja tipos de DB específicos.
type turnPersistence struct {
	TurnID     string          `db:"turn_id"`
	CampaignID string          `db:"campaign_id"`
	Input      string          `db:"input"`
	Narration  string          `db:"narration"`
	Delta      json.RawMessage `db:"delta"`
	TokensUsed int64           `db:"tokens_used"`
	MonthTotal int64           `db:"month_total"`
	CreatedAt  time.Time       `db:"created_at"`
}

func recordToPersistence(record session.TurnRecord) (turnPersistence, error) {
	var delta json.RawMessage
	if record.Delta != nil {
		raw, err := json.Marshal(record.Delta)
		if err != nil {
			return turnPersistence{}, err
		}
		delta = raw
	}
	return turnPersistence{
		TurnID:     record.TurnID.String(),
		CampaignID: record.CampaignID.String(),
		Input:      record.Input,
		Narration:  record.Narration,
		Delta:      delta,
		TokensUsed: int64(record.TokensUsed),
		MonthTotal: int64(record.MonthTotal),
		CreatedAt:  record.CreatedAt,
	}, nil
}

func recordToDomain(p turnPersistence) session.TurnRecord {
	var delta any
	if len(p.Delta) > 0 {
		// Un delta ilegible no debe ocultar el resto del registro.
		_ = json.Unmarshal(p.Delta, &delta)
	}
	return session.TurnRecord{
		TurnID:     kernel.TurnID(p.TurnID),
		CampaignID: kernel.CampaignID(p.CampaignID),
		Input:      p.Input,
		Narration:  p.Narration,
		Delta:      delta,
		TokensUsed: int(p.TokensUsed),
		MonthTotal: int(p.MonthTotal),
		CreatedAt:  p.CreatedAt,
	}
}
