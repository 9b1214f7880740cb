package util

import (
	"context"
	"time"

	"github.com/makeXnow/BrainTrust-AI/core"
)

// Sleep pauses for d or until ctx ends, in which case it returns
// core.ErrAborted. Non-positive durations only check ctx.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if ctx.Err() != nil {
			return core.ErrAborted
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return core.ErrAborted
	}
}
