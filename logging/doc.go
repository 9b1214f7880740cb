// Package logging provides a minimal logging interface and adapters for BrainTrust.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the engine, assembly pipeline and round runner use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - PanelLogger with session/component context and provider call helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	bt := braintrust.New(textModel, imageModel, func(o *braintrust.Options) { o.Logger = logger })
package logging
