package postgres

import (
	"context"
	"time"
)

// opContext bounds a repository call with the configured operation
// timeout. A zero timeout returns the context unchanged, which is the
// case for transactional repositories: ExecuteTx already set the
// deadline when it opened the transaction.
func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
