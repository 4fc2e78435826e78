/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package compare

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the cancellation cause of a batch replaced by a newer one.
var ErrSuperseded = errors.New("superseded by a newer batch")

// Ticket identifies one batch started by Latest.Begin.
type Ticket struct {
	gen uint64
}

// Latest keeps the result of the most recently started batch only. Results
// of superseded batches are dropped even if they finish later.
type Latest[T any] struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelCauseFunc
	value  T
	has    bool
}

// Begin starts a new batch, canceling the previous one with ErrSuperseded.
// The returned context ends when the batch is superseded or Stop is called.
func (l *Latest[T]) Begin(ctx context.Context) (context.Context, Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel(ErrSuperseded)
	}
	batchCtx, cancel := context.WithCancelCause(ctx)
	l.cancel = cancel
	l.gen++

	return batchCtx, Ticket{gen: l.gen}
}

// Current reports whether t is still the newest batch.
func (l *Latest[T]) Current(t Ticket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return t.gen == l.gen && l.cancel != nil
}

// Commit stores v if t is still the newest batch and reports whether it did.
func (l *Latest[T]) Commit(t Ticket, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.gen != l.gen || l.cancel == nil {
		return false
	}
	l.value = v
	l.has = true
	return true
}

// Value returns the last committed result.
func (l *Latest[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.has
}

// Stop cancels the running batch; nothing can be committed until the next Begin.
func (l *Latest[T]) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel(context.Canceled)
		l.cancel = nil
	}
}
