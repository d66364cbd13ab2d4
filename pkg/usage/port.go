package usage

import "context"

type LedgerStore interface {
	// Load returns the stored ledger, or (nil, nil) when none has been
	// written yet. A ledger that exists but cannot be parsed is an error;
	// callers recover from it by starting a fresh ledger.
	Load(ctx context.Context) (*Ledger, error)
	Save(ctx context.Context, ledger Ledger) error
}
