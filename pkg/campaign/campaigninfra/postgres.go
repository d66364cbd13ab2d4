package campaigninfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Abraxas-365/fateweaver/pkg/campaign"
	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/kernel"
)

// PostgresCampaignStore es la implementación en PostgreSQL de StateStore y
// SnapshotStore. El documento de estado vive en una fila JSONB por campaña.
type PostgresCampaignStore struct {
	db         *sqlx.DB
	campaignID kernel.CampaignID
}

// NewPostgresCampaignStore crea una nueva instancia del store de campaña.
func NewPostgresCampaignStore(db *sqlx.DB, campaignID kernel.CampaignID) *PostgresCampaignStore {
	return &PostgresCampaignStore{
		db:         db,
		campaignID: campaignID,
	}
}

// EnsureSchema crea las tablas del módulo si no existen.
func (r *PostgresCampaignStore) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS campaign_state (
			campaign_id TEXT PRIMARY KEY,
			state       JSONB NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS campaign_snapshots (
			id          TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL,
			state       JSONB NOT NULL,
			label       TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_campaign_snapshots_campaign
			ON campaign_snapshots (campaign_id, created_at DESC);`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errx.Wrap(err, "failed to ensure campaign schema", errx.TypeInternal)
	}
	return nil
}

// ============================================================================
// StateStore Implementation
// ============================================================================

// Load lee el documento de estado de la campaña.
func (r *PostgresCampaignStore) Load(ctx context.Context) (campaign.State, error) {
	var raw []byte
	query := `SELECT state FROM campaign_state WHERE campaign_id = $1`
	err := r.db.GetContext(ctx, &raw, query, r.campaignID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, campaign.ErrStorageFailure(err).
				WithDetail("campaign_id", r.campaignID.String()).
				WithDetail("reason", "state document does not exist")
		}
		return nil, campaign.ErrStorageFailure(err).WithDetail("campaign_id", r.campaignID.String())
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, campaign.ErrStorageFailure(err).
			WithDetail("campaign_id", r.campaignID.String()).
			WithDetail("reason", "state document is not valid JSON")
	}
	return campaign.State(doc), nil
}

// Save inserta o actualiza el documento de estado.
func (r *PostgresCampaignStore) Save(ctx context.Context, state campaign.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return campaign.ErrStorageFailure(err).WithDetail("campaign_id", r.campaignID.String())
	}

	query := `
		INSERT INTO campaign_state (campaign_id, state, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (campaign_id) DO UPDATE
			SET state = EXCLUDED.state, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, r.campaignID.String(), raw); err != nil {
		return campaign.ErrStorageFailure(err).WithDetail("campaign_id", r.campaignID.String())
	}
	return nil
}

// Exists verifica si la campaña ya tiene un documento de estado.
func (r *PostgresCampaignStore) Exists(ctx context.Context) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM campaign_state WHERE campaign_id = $1)`
	err := r.db.GetContext(ctx, &exists, query, r.campaignID.String())
	if err != nil {
		return false, campaign.ErrStorageFailure(err).WithDetail("campaign_id", r.campaignID.String())
	}
	return exists, nil
}

// ============================================================================
// SnapshotStore Implementation
// ============================================================================

// SaveSnapshot guarda una copia puntual del estado.
func (r *PostgresCampaignStore) SaveSnapshot(ctx context.Context, snap campaign.Snapshot) error {
	p, err := snapshotToPersistence(snap)
	if err != nil {
		return campaign.ErrStorageFailure(err).WithDetail("snapshot_id", snap.ID.String())
	}

	query := `
		INSERT INTO campaign_snapshots (id, campaign_id, state, label, created_at)
		VALUES (:id, :campaign_id, :state, :label, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return campaign.ErrStorageFailure(err).
				WithDetail("snapshot_id", snap.ID.String()).
				WithDetail("reason", "snapshot id already exists")
		}
		return campaign.ErrStorageFailure(err).WithDetail("snapshot_id", snap.ID.String())
	}
	return nil
}

// FindSnapshot busca un snapshot por su ID.
func (r *PostgresCampaignStore) FindSnapshot(ctx context.Context, id kernel.SnapshotID) (*campaign.Snapshot, error) {
	var p snapshotPersistence
	query := `SELECT * FROM campaign_snapshots WHERE id = $1 AND campaign_id = $2`
	err := r.db.GetContext(ctx, &p, query, id.String(), r.campaignID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, campaign.ErrSnapshotNotFound().WithDetail("snapshot_id", id.String())
		}
		return nil, campaign.ErrStorageFailure(err).WithDetail("snapshot_id", id.String())
	}
	return snapshotToDomain(p)
}

// ListSnapshots lista los snapshots de la campaña, el más reciente primero.
func (r *PostgresCampaignStore) ListSnapshots(ctx context.Context) ([]campaign.SnapshotInfo, error) {
	var rows []struct {
		ID        string    `db:"id"`
		Label     string    `db:"label"`
		CreatedAt time.Time `db:"created_at"`
	}
	query := `
		SELECT id, label, created_at
		FROM campaign_snapshots
		WHERE campaign_id = $1
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &rows, query, r.campaignID.String())
	if err != nil {
		return nil, campaign.ErrStorageFailure(err).WithDetail("campaign_id", r.campaignID.String())
	}

	infos := make([]campaign.SnapshotInfo, len(rows))
	for i, row := range rows {
		infos[i] = campaign.SnapshotInfo{
			ID:        kernel.SnapshotID(row.ID),
			Label:     row.Label,
			CreatedAt: row.CreatedAt,
		}
	}
	return infos, nil
}

// Struct auxiliar para persistencia que maneja tipos de DB específicos.
type snapshotPersistence struct {
	ID         string          `db:"id"`
	CampaignID string          `db:"campaign_id"`
	State      json.RawMessage `db:"state"`
	Label      string          `db:"label"`
	CreatedAt  time.Time       `db:"created_at"`
}

func snapshotToPersistence(snap campaign.Snapshot) (snapshotPersistence, error) {
	raw, err := json.Marshal(snap.State)
	if err != nil {
		return snapshotPersistence{}, err
	}
	return snapshotPersistence{
		ID:         snap.ID.String(),
		CampaignID: snap.CampaignID.String(),
		State:      raw,
		Label:      snap.Label,
		CreatedAt:  snap.CreatedAt,
	}, nil
}

func snapshotToDomain(p snapshotPersistence) (*campaign.Snapshot, error) {
	var doc map[string]any
	if err := json.Unmarshal(p.State, &doc); err != nil {
		return nil, campaign.ErrStorageFailure(err).
			WithDetail("snapshot_id", p.ID).
			WithDetail("reason", "snapshot document is not valid JSON")
	}
	return &campaign.Snapshot{
		ID:         kernel.SnapshotID(p.ID),
		CampaignID: kernel.CampaignID(p.CampaignID),
		State:      campaign.State(doc),
		Label:      p.Label,
		CreatedAt:  p.CreatedAt,
	}, nil
}
