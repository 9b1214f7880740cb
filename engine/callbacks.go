package engine

import (
	"context"
	"fmt"
	"sync"
)

// CallbackType defines the lifecycle points of a discussion where callbacks
// run.
//
// Callbacks run synchronously on the workflow goroutine. A Before callback
// that returns an error stops the workflow; errors from the other types are
// logged and ignored.
type CallbackType string

const (
	// CallbackBeforeAssembly runs before the panel for a new topic is built.
	CallbackBeforeAssembly CallbackType = "before_assembly"

	// CallbackAfterAssembly runs once every introduction is displayed.
	CallbackAfterAssembly CallbackType = "after_assembly"

	// CallbackBeforeRound runs before a discussion round starts.
	CallbackBeforeRound CallbackType = "before_round"

	// CallbackAfterRound runs after a round and its suggested reply finished.
	CallbackAfterRound CallbackType = "after_round"

	// CallbackOnError runs when a workflow ends with a user-visible error.
	CallbackOnError CallbackType = "on_error"

	// CallbackOnReset runs after a session was reset to idle.
	CallbackOnReset CallbackType = "on_reset"
)

// CallbackContext describes the workflow a callback runs for.
type CallbackContext struct {
	SessionID string
	Epoch     uint64
	Topic     string
	// Err is set for CallbackOnError.
	Err error
	// Type is the callback type being executed.
	Type CallbackType
}

// Callback is a lifecycle hook.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic.
	Execute(ctx context.Context, cc *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, cc *CallbackContext) error
}

// NewFunctionCallback creates a callback of the given type.
func NewFunctionCallback(callbackType CallbackType, fn func(ctx context.Context, cc *CallbackContext) error) *FunctionCallback {
	return &FunctionCallback{callbackType: callbackType, fn: fn}
}

// Type implements Callback.
func (c *FunctionCallback) Type() CallbackType { return c.callbackType }

// Execute implements Callback.
func (c *FunctionCallback) Execute(ctx context.Context, cc *CallbackContext) error {
	return c.fn(ctx, cc)
}

// CallbackManager stores callbacks by type and executes them in registration
// order. It is safe for concurrent use.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{callbacks: make(map[CallbackType][]Callback)}
}

// RegisterCallback adds a callback for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	t := callback.Type()
	cm.callbacks[t] = append(cm.callbacks[t], callback)
}

// ExecuteCallbacks runs every callback of callbackType and stops at the first
// error.
func (cm *CallbackManager) ExecuteCallbacks(ctx context.Context, callbackType CallbackType, cc *CallbackContext) error {
	cm.mu.RLock()
	callbacks := append([]Callback(nil), cm.callbacks[callbackType]...)
	cm.mu.RUnlock()

	cc.Type = callbackType
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, cc); err != nil {
			return fmt.Errorf("%s callback: %w", callbackType, err)
		}
	}
	return nil
}

// LoggingCallback writes a one-line trace for every execution.
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a LoggingCallback for callbackType.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{callbackType: callbackType, logger: logger}
}

// Type implements Callback.
func (c *LoggingCallback) Type() CallbackType { return c.callbackType }

// Execute implements Callback.
func (c *LoggingCallback) Execute(_ context.Context, cc *CallbackContext) error {
	if c.logger != nil {
		msg := fmt.Sprintf("[%s] session: %s, epoch: %d", c.callbackType, cc.SessionID, cc.Epoch)
		if cc.Err != nil {
			msg += fmt.Sprintf(", error: %v", cc.Err)
		}
		c.logger(msg)
	}
	return nil
}
