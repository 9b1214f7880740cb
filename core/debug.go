package core

import (
	"context"
	"time"
)

// DebugKind classifies a debug log entry.
type DebugKind string

const (
	DebugRequest  DebugKind = "request"
	DebugResponse DebugKind = "response"
	DebugError    DebugKind = "error"
)

// DebugEntry records one provider interaction for the host debug panel.
type DebugEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      DebugKind `json:"type"`
	Endpoint  string    `json:"endpoint"`
	Payload   string    `json:"payload,omitempty"`
	Response  string    `json:"response,omitempty"`
	Model     string    `json:"model,omitempty"`
}

// DebugRecorder receives debug entries. Implementations must be safe for
// concurrent use.
type DebugRecorder interface {
	Record(entry DebugEntry)
}

// NoOpRecorder discards debug entries.
type NoOpRecorder struct{}

// Record implements DebugRecorder.
func (NoOpRecorder) Record(DebugEntry) {}

type recorderKey struct{}

// WithRecorder returns a copy of ctx carrying rec.
func WithRecorder(ctx context.Context, rec DebugRecorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, rec)
}

// RecorderFrom returns the recorder carried by ctx, or fallback.
func RecorderFrom(ctx context.Context, fallback DebugRecorder) DebugRecorder {
	if rec, ok := ctx.Value(recorderKey{}).(DebugRecorder); ok && rec != nil {
		return rec
	}
	return fallback
}

// Trace records a request entry and returns a func that records the outcome
// under the same id, so recorders can update the entry in place.
func Trace(rec DebugRecorder, endpoint, model, payload string) func(response string, err error) {
	if rec == nil {
		rec = NoOpRecorder{}
	}
	id := NewID()
	rec.Record(DebugEntry{ID: id, Timestamp: time.Now(), Kind: DebugRequest, Endpoint: endpoint, Payload: payload, Model: model})
	return func(response string, err error) {
		e := DebugEntry{ID: id, Timestamp: time.Now(), Kind: DebugResponse, Endpoint: endpoint, Payload: payload, Response: response, Model: model}
		if err != nil {
			e.Kind = DebugError
			e.Response = err.Error()
		}
		rec.Record(e)
	}
}
