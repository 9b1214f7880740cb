package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceRecorder struct {
	mu      sync.Mutex
	entries []DebugEntry
}

func (r *sliceRecorder) Record(e DebugEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func TestTrace_SharesIDBetweenRequestAndOutcome(t *testing.T) {
	rec := &sliceRecorder{}
	done := Trace(rec, "Assembling 3 panelists", "gpt-4o-mini", "topic")
	done(`{"panelists":[]}`, nil)

	require.Len(t, rec.entries, 2)
	assert.Equal(t, DebugRequest, rec.entries[0].Kind)
	assert.Equal(t, DebugResponse, rec.entries[1].Kind)
	assert.Equal(t, rec.entries[0].ID, rec.entries[1].ID)
	assert.Equal(t, "gpt-4o-mini", rec.entries[1].Model)
}

func TestTrace_RecordsErrors(t *testing.T) {
	rec := &sliceRecorder{}
	Trace(rec, "x", "", "")("", errors.New("timeout"))
	require.Len(t, rec.entries, 2)
	assert.Equal(t, DebugError, rec.entries[1].Kind)
	assert.Equal(t, "timeout", rec.entries[1].Response)

	assert.NotPanics(t, func() { Trace(nil, "x", "", "")("", nil) })
}

func TestRecorderFrom(t *testing.T) {
	fallback, carried := &sliceRecorder{}, &sliceRecorder{}
	assert.Same(t, fallback, RecorderFrom(context.Background(), fallback))

	ctx := WithRecorder(context.Background(), carried)
	assert.Same(t, carried, RecorderFrom(ctx, fallback))
}
