package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/model"
	"github.com/makeXnow/BrainTrust-AI/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecorder struct {
	mu      sync.Mutex
	entries []core.DebugEntry
}

func (r *memRecorder) Record(e core.DebugEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func newTestAgent(t *testing.T, responder model.Responder, optFns ...func(o *ModelAgentOptions)) (*ModelAgent, *model.MockModel, *settings.Static) {
	t.Helper()
	m := model.NewMockModel("mock", responder)
	sp := settings.NewStatic(settings.Defaults())
	return NewModelAgent(m, sp, optFns...), m, sp
}

func reply(text string) model.Responder {
	return func(context.Context, model.Request) (string, error) { return text, nil }
}

func TestCall_RecordsDebugEntriesAndModel(t *testing.T) {
	rec := &memRecorder{}
	a, m, sp := newTestAgent(t, reply(`{"userResponse":"ok"}`), func(o *ModelAgentOptions) { o.Debug = rec })
	sp.Update(func(s *settings.Settings) { s.TextModel = "claude-test" })

	_, err := a.SuggestReply(context.Background(), "topic", nil)
	require.NoError(t, err)

	require.Len(t, m.Requests(), 1)
	assert.Equal(t, "claude-test", m.Requests()[0].Model)
	require.Len(t, rec.entries, 2)
	assert.Equal(t, core.DebugRequest, rec.entries[0].Kind)
	assert.Equal(t, core.DebugResponse, rec.entries[1].Kind)
	assert.Equal(t, `{"userResponse":"ok"}`, rec.entries[1].Response)
}

func TestCall_TimeoutIsProviderError(t *testing.T) {
	a, _, sp := newTestAgent(t, func(ctx context.Context, _ model.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	sp.Update(func(s *settings.Settings) { s.TextTimeout = 10 * time.Millisecond })

	_, err := a.SuggestReply(context.Background(), "topic", nil)
	var perr *core.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.False(t, core.IsAborted(err))
}

func TestCall_CancelledContextIsAborted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a, _, _ := newTestAgent(t, func(context.Context, model.Request) (string, error) {
		cancel()
		return `{"userResponse":"late"}`, nil
	})
	_, err := a.SuggestReply(ctx, "topic", nil)
	assert.ErrorIs(t, err, core.ErrAborted)
}

func TestCall_UnparseableIsParseError(t *testing.T) {
	a, _, _ := newTestAgent(t, reply("I cannot answer in JSON"))
	_, err := a.SuggestReply(context.Background(), "topic", nil)
	var perr *core.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestCall_ProviderError(t *testing.T) {
	a, _, _ := newTestAgent(t, func(context.Context, model.Request) (string, error) {
		return "", errors.New("503")
	})
	_, err := a.SuggestReply(context.Background(), "topic", nil)
	var perr *core.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "suggested reply", perr.Op)
}

func TestStyle_UnknownKeepsName(t *testing.T) {
	a, _, _ := newTestAgent(t, nil)
	assert.Equal(t, "punchy", a.Style("punchy and DIRECT").ID)
	st := a.Style("Interpretive dance")
	assert.Equal(t, "Interpretive dance", st.Name)
	assert.Equal(t, 10, st.WordMin)
}

func promptContains(t *testing.T, m *model.MockModel, i int, parts ...string) {
	t.Helper()
	reqs := m.Requests()
	require.Greater(t, len(reqs), i)
	for _, p := range parts {
		assert.True(t, strings.Contains(reqs[i].Prompt(), p), "prompt missing %q", p)
	}
}
