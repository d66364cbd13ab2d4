package usageinfra

import (
	"context"
	"encoding/json"

	"github.com/Abraxas-365/fateweaver/pkg/fsx"
	"github.com/Abraxas-365/fateweaver/pkg/usage"
)

const ledgerPath = "usage.json"

// FileLedgerStore persists the monthly ledger as a JSON file behind an
// fsx.FileSystem, next to the campaign state document.
type FileLedgerStore struct {
	fs fsx.FileSystem
}

func NewFileLedgerStore(fs fsx.FileSystem) *FileLedgerStore {
	return &FileLedgerStore{fs: fs}
}

func (s *FileLedgerStore) Load(ctx context.Context) (*usage.Ledger, error) {
	exists, err := s.fs.Exists(ctx, ledgerPath)
	if err != nil {
		return nil, usage.ErrStorageFailure(err).WithDetail("path", ledgerPath)
	}
	if !exists {
		return nil, nil
	}

	data, err := s.fs.ReadFile(ctx, ledgerPath)
	if err != nil {
		return nil, usage.ErrStorageFailure(err).WithDetail("path", ledgerPath)
	}

	var ledger usage.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, usage.ErrLedgerUnreadable(err).WithDetail("path", ledgerPath)
	}
	if ledger.TotalTokens < 0 {
		return nil, usage.ErrLedgerUnreadable(nil).
			WithDetail("path", ledgerPath).
			WithDetail("reason", "negative total_tokens")
	}
	return &ledger, nil
}

func (s *FileLedgerStore) Save(ctx context.Context, ledger usage.Ledger) error {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return usage.ErrStorageFailure(err).WithDetail("path", ledgerPath)
	}
	if err := s.fs.WriteFile(ctx, ledgerPath, data); err != nil {
		return usage.ErrStorageFailure(err).WithDetail("path", ledgerPath)
	}
	return nil
}
