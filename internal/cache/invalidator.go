// Package cache carries invalidation signals from album writes to the
// response cache. The cache itself lives outside this module; everything
// here treats it as a black box reachable through the Invalidator interface.
package cache

import "context"

// Invalidator drops cached responses matching a pattern. Cache keys are
// shaped "<verb>:<path>:<userID>" and a pattern matches by substring, so
// invalidating one user means matching the ":<userID>" tail.
type Invalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// UserPattern matches every cached response belonging to one user.
func UserPattern(userID string) string {
	return ":" + userID
}

// Noop discards all invalidations. Tests and read-only tooling use it.
type Noop struct{}

// Invalidate implements Invalidator as a no-op.
func (Noop) Invalidate(context.Context, string) error { return nil }

// NewNoop creates a no-op invalidator.
func NewNoop() Invalidator {
	return Noop{}
}
