// Package sessioninfra provides the infrastructure behind the session:
// turn serialization, the turn journal, and budget alert delivery.
package sessioninfra

import (
	"context"

	"github.com/Abraxas-365/fateweaver/pkg/session"
)

// MutexLocker serializes turns within a single process.
type MutexLocker struct {
	sem chan struct{}
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{sem: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is free or ctx is done.
func (l *MutexLocker) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, session.ErrLockTimeout(ctx.Err())
	}
}
