package session

import (
	"context"

	"github.com/Abraxas-365/fateweaver/pkg/kernel"
)

// Locker serializes turn processing. Acquire blocks until the session
// lock is held or ctx is done; the returned release must be called
// exactly once.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

type TurnJournal interface {
	Append(ctx context.Context, record TurnRecord) error
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[TurnRecord], error)
}

// BudgetAlerter tells the game master about budget milestones. Sends are
// best-effort and must never block or fail the turn.
type BudgetAlerter interface {
	BudgetWarning(report UsageReport, notice string)
	BudgetExhausted(report UsageReport, notice string)
}
