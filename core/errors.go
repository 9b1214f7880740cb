package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrAborted marks work discarded because its generation epoch went stale.
// It is never surfaced to the user.
var ErrAborted = errors.New("aborted: generation epoch is stale")

// ProviderError wraps a network, timeout or non-success failure from a
// text or image collaborator.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("provider %s: %v", e.Op, e.Err) }

func (e *ProviderError) Unwrap() error { return e.Err }

// ParseError reports an unparseable provider response.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Op, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a moderator choice outside the allowed list.
type ValidationError struct {
	Chosen  string
	Allowed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("chosen speaker %q not in allowed list [%s]", e.Chosen, strings.Join(e.Allowed, ", "))
}

// FatalAssemblyError means the discussion could not start because the
// batched persona request failed or yielded zero personas.
type FatalAssemblyError struct {
	Err error
}

func (e *FatalAssemblyError) Error() string { return fmt.Sprintf("persona assembly failed: %v", e.Err) }

func (e *FatalAssemblyError) Unwrap() error { return e.Err }

// IsAborted reports whether err stems from epoch cancellation. Per-call
// deadlines are provider errors, not aborts.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled)
}
