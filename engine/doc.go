// Package engine ties persona assembly and the round runner to user input.
//
// The Engine is the cancellation controller of a discussion. Every new topic,
// follow-up message, skipped turn and reset advances the session's generation
// epoch, which cancels all work bound to the previous one; results of that
// work are rejected by the session when they resolve.
//
// # Workflows
//
// A submit on a session without a panel starts a new discussion:
//
//	idle -> generating_panelists -> introductions -> discussion
//	     -> generating_auto_response -> waiting_for_user
//
// A submit on a session with a panel appends the user message, re-seeds the
// mention queue from it and starts a new round. Continue starts a round
// without a user message. A failed assembly returns the session to idle with
// a dismissible error notice.
//
// Workflows run on their own goroutines. The returned channel yields the
// workflow's error (nil on success or when superseded) and is then closed.
// Config.MaxConcurrentWorkflows bounds how many run at once across sessions.
//
// # Callbacks
//
// Lifecycle hooks (see CallbackType) can be registered for tracing or
// custom policy; a failing Before callback stops its workflow.
package engine
