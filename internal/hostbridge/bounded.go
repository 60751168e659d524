package hostbridge

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"slipinterp/internal/value"
)

// Bounded wraps a Bridge so that at most N scheme Resolve/Render/Import
// calls are in flight at once, per config.SchedulerConfig's
// MaxConcurrentHostCalls knob (§4.11 expansion: the scheduler runs
// SLIP-level tasks one at a time off a single baton, but a suspending
// host call — HTTP I/O, a slow template render — may itself fan out
// onto other goroutines inside the host's own implementation; this
// bounds how many of those a single Interpreter lets run concurrently
// so a runaway script can't exhaust the embedding process's file
// descriptors or connection pool). Grounded on the teacher's use of
// golang.org/x/sync/semaphore to cap concurrent tool/model calls.
type Bounded struct {
	inner Bridge
	sem   *semaphore.Weighted
}

// NewBounded wraps inner with a semaphore admitting at most max
// concurrent calls (max <= 0 means unbounded: inner is returned
// unwrapped).
func NewBounded(inner Bridge, max int) Bridge {
	if max <= 0 {
		return inner
	}
	return &Bounded{inner: inner, sem: semaphore.NewWeighted(int64(max))}
}

func (b *Bounded) HostObject(id string) (value.HostObject, bool) {
	return b.inner.HostObject(id)
}

func (b *Bounded) Resolve(ctx context.Context, scheme string, op Op, path value.PathLiteral, cfg *value.Dict, payload value.Value) (value.Value, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer b.sem.Release(1)
	return b.inner.Resolve(ctx, scheme, op, path, cfg, payload)
}

func (b *Bounded) Render(template string, sc *value.Scope) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer b.sem.Release(1)
	return b.inner.Render(template, sc)
}

func (b *Bounded) Import(ctx context.Context, canonical string) (*value.Scope, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer b.sem.Release(1)
	return b.inner.Import(ctx, canonical)
}

func (b *Bounded) Now() time.Time { return b.inner.Now() }
