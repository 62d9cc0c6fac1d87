// Package ctxutil holds small context helpers shared across the engine.
package ctxutil

import "context"

// Canceled reports the context error when ctx is already canceled or past
// its deadline, nil otherwise. Store and engine operations call it at entry
// so a canceled caller never reaches the lock.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
