// Package sweep holds the persistent rate-limit state for the status
// sweep. Keeping the last-run timestamp in storage rather than process
// memory lets any number of API or sweeper instances coordinate on a
// single sweep per interval.
package sweep

import (
	"context"
	"time"
)

// StateStore guards the shared sweep schedule. TryAcquire atomically
// claims the next sweep slot: it returns true for exactly one caller
// per minInterval window, regardless of how many processes race.
type StateStore interface {
	TryAcquire(ctx context.Context, now time.Time, minInterval time.Duration) (bool, error)

	// LastRun returns the timestamp of the most recent sweep claim
	LastRun(ctx context.Context) (time.Time, error)
}
