package core

import "context"

// Epoch is a cancellation scope. A new epoch is created on every reset or
// top-level user action; work bound to an older epoch must discard its
// results.
type Epoch struct {
	ID  uint64
	ctx context.Context
}

// NewEpoch derives an epoch from parent. The returned cancel func ends it.
func NewEpoch(parent context.Context, id uint64) (Epoch, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	return Epoch{ID: id, ctx: ctx}, cancel
}

// Context returns the context carried through every call bound to the epoch.
func (e Epoch) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// Err returns ErrAborted once the epoch has been cancelled.
func (e Epoch) Err() error {
	if e.ctx != nil && e.ctx.Err() != nil {
		return ErrAborted
	}
	return nil
}
