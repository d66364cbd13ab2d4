package campaign

import (
	"context"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/kernel"
)

// Snapshot is a point-in-time copy of the campaign state that can be
// restored later.
type Snapshot struct {
	ID         kernel.SnapshotID `json:"id"`
	CampaignID kernel.CampaignID `json:"campaign_id"`
	State      State             `json:"state"`
	Label      string            `json:"label"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Labels stamped on snapshots nobody named explicitly.
const (
	SnapshotLabelManual    = "manual"
	SnapshotLabelScheduled = "scheduled"
)

// SnapshotInfo describes a stored snapshot without carrying its state.
type SnapshotInfo struct {
	ID        kernel.SnapshotID `json:"id"`
	Label     string            `json:"label"`
	CreatedAt time.Time         `json:"created_at"`
}

type StateStore interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
	Exists(ctx context.Context) (bool, error)
}

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	FindSnapshot(ctx context.Context, id kernel.SnapshotID) (*Snapshot, error)
	// ListSnapshots returns every stored snapshot, newest first.
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
}
