package campaigninfra

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Abraxas-365/fateweaver/pkg/campaign"
	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/fsx"
	"github.com/Abraxas-365/fateweaver/pkg/kernel"
)

const (
	statePath   = "state.json"
	snapshotDir = "snapshots"
)

// FileCampaignStore persists the campaign document as JSON files behind an
// fsx.FileSystem, so the same store runs against local disk or S3.
type FileCampaignStore struct {
	fs fsx.FileSystem
}

// NewFileCampaignStore creates a store rooted at the file system's base.
func NewFileCampaignStore(fs fsx.FileSystem) *FileCampaignStore {
	return &FileCampaignStore{fs: fs}
}

// ============================================================================
// StateStore Implementation
// ============================================================================

func (s *FileCampaignStore) Load(ctx context.Context) (campaign.State, error) {
	data, err := s.fs.ReadFile(ctx, statePath)
	if err != nil {
		return nil, campaign.ErrStorageFailure(err).WithDetail("path", statePath)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, campaign.ErrStorageFailure(err).
			WithDetail("path", statePath).
			WithDetail("reason", "state document is not valid JSON")
	}
	return campaign.State(doc), nil
}

func (s *FileCampaignStore) Save(ctx context.Context, state campaign.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return campaign.ErrStorageFailure(err).WithDetail("path", statePath)
	}
	if err := s.fs.WriteFile(ctx, statePath, data); err != nil {
		return campaign.ErrStorageFailure(err).WithDetail("path", statePath)
	}
	return nil
}

func (s *FileCampaignStore) Exists(ctx context.Context) (bool, error) {
	exists, err := s.fs.Exists(ctx, statePath)
	if err != nil {
		return false, campaign.ErrStorageFailure(err).WithDetail("path", statePath)
	}
	return exists, nil
}

// ============================================================================
// SnapshotStore Implementation
// ============================================================================

func (s *FileCampaignStore) SaveSnapshot(ctx context.Context, snap campaign.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return campaign.ErrStorageFailure(err).WithDetail("snapshot_id", snap.ID.String())
	}
	if err := s.fs.WriteFile(ctx, s.snapshotPath(snap.ID), data); err != nil {
		return campaign.ErrStorageFailure(err).WithDetail("snapshot_id", snap.ID.String())
	}
	return nil
}

func (s *FileCampaignStore) FindSnapshot(ctx context.Context, id kernel.SnapshotID) (*campaign.Snapshot, error) {
	path := s.snapshotPath(id)

	exists, err := s.fs.Exists(ctx, path)
	if err != nil {
		return nil, campaign.ErrStorageFailure(err).WithDetail("snapshot_id", id.String())
	}
	if !exists {
		return nil, campaign.ErrSnapshotNotFound().WithDetail("snapshot_id", id.String())
	}

	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, campaign.ErrStorageFailure(err).WithDetail("snapshot_id", id.String())
	}

	var snap campaign.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, campaign.ErrStorageFailure(err).
			WithDetail("snapshot_id", id.String()).
			WithDetail("reason", "snapshot document is not valid JSON")
	}
	return &snap, nil
}

func (s *FileCampaignStore) ListSnapshots(ctx context.Context) ([]campaign.SnapshotInfo, error) {
	exists, err := s.fs.Exists(ctx, snapshotDir)
	if err != nil {
		return nil, campaign.ErrStorageFailure(err)
	}
	if !exists {
		return []campaign.SnapshotInfo{}, nil
	}

	entries, err := s.fs.List(ctx, snapshotDir)
	if err != nil {
		return nil, campaign.ErrStorageFailure(err)
	}

	infos := make([]campaign.SnapshotInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir || !strings.HasSuffix(entry.Name, ".json") {
			continue
		}
		id := kernel.SnapshotID(strings.TrimSuffix(entry.Name, ".json"))

		snap, err := s.FindSnapshot(ctx, id)
		if err != nil {
			var e *errx.Error
			if errx.As(err, &e) && e.Type == errx.TypeNotFound {
				continue
			}
			return nil, err
		}
		infos = append(infos, campaign.SnapshotInfo{
			ID:        snap.ID,
			Label:     snap.Label,
			CreatedAt: snap.CreatedAt,
		})
	}

	// Directory listings come back in name order; the contract is newest
	// first.
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

func (s *FileCampaignStore) snapshotPath(id kernel.SnapshotID) string {
	return s.fs.Join(snapshotDir, id.String()+".json")
}
