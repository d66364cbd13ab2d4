package usageinfra

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/kernel"
	"github.com/Abraxas-365/fateweaver/pkg/usage"
)

// PostgresLedgerStore es la implementación en PostgreSQL de LedgerStore.
// El ledger mensual vive en una fila por campaña.
type PostgresLedgerStore struct {
	db         *sqlx.DB
	campaignID kernel.CampaignID
}

// NewPostgresLedgerStore crea una nueva instancia del store del ledger.
func NewPostgresLedgerStore(db *sqlx.DB, campaignID kernel.CampaignID) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db:         db,
		campaignID: campaignID,
	}
}

// EnsureSchema crea la tabla del ledger si no existe.
func (r *PostgresLedgerStore) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS usage_ledger (
			campaign_id  TEXT PRIMARY KEY,
			month        TEXT NOT NULL,
			total_tokens BIGINT NOT NULL CHECK (total_tokens >= 0),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errx.Wrap(err, "failed to ensure usage schema", errx.TypeInternal)
	}
	return nil
}

// Load lee el ledger de la campaña; (nil, nil) cuando aún no existe.
func (r *PostgresLedgerStore) Load(ctx context.Context) (*usage.Ledger, error) {
	var p ledgerPersistence
	query := `SELECT month, total_tokens FROM usage_ledger WHERE campaign_id = $1`
	err := r.db.GetContext(ctx, &p, query, r.campaignID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, usage.ErrStorageFailure(err).WithDetail("campaign_id", r.campaignID.String())
	}

	if p.TotalTokens < 0 {
		return nil, usage.ErrLedgerUnreadable(nil).
			WithDetail("campaign_id", r.campaignID.String()).
			WithDetail("reason", "negative total_tokens")
	}
	return &usage.Ledger{Month: p.Month, TotalTokens: int(p.TotalTokens)}, nil
}

// Save inserta o actualiza el ledger mensual.
func (r *PostgresLedgerStore) Save(ctx context.Context, ledger usage.Ledger) error {
	query := `
		INSERT INTO usage_ledger (campaign_id, month, total_tokens, updated_at)
		VALUES (:campaign_id, :month, :total_tokens, :updated_at)
		ON CONFLICT (campaign_id) DO UPDATE
			SET month = EXCLUDED.month,
			    total_tokens = EXCLUDED.total_tokens,
			    updated_at = EXCLUDED.updated_at`

	p := ledgerPersistence{
		CampaignID:  r.campaignID.String(),
		Month:       ledger.Month,
		TotalTokens: int64(ledger.TotalTokens),
		UpdatedAt:   time.Now(),
	}

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return usage.ErrStorageFailure(err).WithDetail("campaign_id", r.campaignID.String())
	}
	return nil
}

// Struct auxiliar para persistencia.
type ledgerPersistence struct {
	CampaignID  string    `db:"campaign_id"`
	Month       string    `db:"month"`
	TotalTokens int64     `db:"total_tokens"`
	UpdatedAt   time.Time `db:"updated_at"`
}
