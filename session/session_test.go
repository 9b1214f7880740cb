package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_RejectsStaleEpoch(t *testing.T) {
	s := New("s1")
	old := s.Advance(context.Background(), false)
	require.NoError(t, s.Apply(old, func(st *State) { st.Topic = "first" }))

	cur := s.Advance(context.Background(), false)
	assert.Equal(t, old.ID+1, cur.ID)
	assert.ErrorIs(t, old.Err(), core.ErrAborted)

	err := s.Apply(old, func(st *State) { st.Topic = "stale" })
	assert.ErrorIs(t, err, core.ErrAborted)
	assert.Equal(t, "first", s.Snapshot().Topic)
	assert.Equal(t, cur.ID, s.Snapshot().Epoch)
}

func TestAdvance_ClearKeepsModeAndDebug(t *testing.T) {
	s := New("s1", func(o *Options) { o.Mode = core.ModeModerator })
	ep := s.Advance(context.Background(), false)
	require.NoError(t, s.Apply(ep, func(st *State) {
		st.Topic = "t"
		st.Status = core.StatusDiscussion
		st.AppendMessage(core.NewUserMessage("You", "hi"))
		st.Error = "boom"
	}))
	s.Record(core.DebugEntry{ID: "d1"})

	s.Advance(context.Background(), true)
	snap := s.Snapshot()
	assert.Equal(t, core.StatusIdle, snap.Status)
	assert.Empty(t, snap.Topic)
	assert.Empty(t, snap.Canonical)
	assert.Empty(t, snap.Error)
	assert.Equal(t, core.ModeModerator, snap.Mode)
	assert.Len(t, snap.Debug, 1)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := New("s1")
	ep := s.Advance(context.Background(), false)
	require.NoError(t, s.Apply(ep, func(st *State) {
		st.Personas = []core.Persona{{ID: "p1", FirstName: "Alice"}}
		st.Round.Order = []string{"p1"}
	}))
	snap := s.Snapshot()
	snap.Personas[0].FirstName = "Mallory"
	snap.Round.Order[0] = "x"
	assert.Equal(t, "Alice", s.Snapshot().Personas[0].FirstName)
	assert.Equal(t, "p1", s.Snapshot().Round.Order[0])
}

func TestPlaceholders(t *testing.T) {
	var st State
	p := core.Persona{ID: "p1", FirstName: "Alice"}
	ph := core.NewPlaceholder(p, "Alice is thinking...")
	st.ShowPlaceholder(ph)
	assert.True(t, st.HasPlaceholders())
	assert.Empty(t, st.Canonical)

	final := core.NewPersonaMessage(p, "Hello", "")
	st.ResolvePlaceholder(ph.ID, final)
	require.Len(t, st.Display, 1)
	assert.Equal(t, "Hello", st.Display[0].Content)
	assert.False(t, st.HasPlaceholders())
	assert.Len(t, st.Canonical, 1)

	st.ShowPlaceholder(core.NewPlaceholder(p, "joining"))
	st.DropPlaceholders()
	assert.Len(t, st.Display, 1)

	last, ok := st.LastDisplay()
	require.True(t, ok)
	assert.True(t, last.IsResolvedAgent())

	st.RemoveDisplay(last.ID)
	assert.Empty(t, st.Display)
}

func TestSubscribe_DeliversLatestSnapshot(t *testing.T) {
	s := New("s1")
	ch, cancel := s.Subscribe()
	defer cancel()
	first := <-ch
	assert.Equal(t, core.StatusIdle, first.Status)

	ep := s.Advance(context.Background(), false)
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, s.Apply(ep, func(st *State) { st.Topic = fmt.Sprint(i) }))
	}
	latest := <-ch
	assert.Equal(t, "4", latest.Topic)

	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestRecord_UpsertsAndBounds(t *testing.T) {
	s := New("s1", func(o *Options) { o.DebugLimit = 3 })
	for i := 0; i < 5; i++ {
		s.Record(core.DebugEntry{ID: fmt.Sprint(i), Kind: core.DebugRequest})
	}
	s.Record(core.DebugEntry{ID: "4", Kind: core.DebugResponse})

	dbg := s.Snapshot().Debug
	require.Len(t, dbg, 3)
	assert.Equal(t, "2", dbg[0].ID)
	assert.Equal(t, core.DebugResponse, dbg[2].Kind)
}

func TestIntrosSignal(t *testing.T) {
	s := New("s1")
	ep := s.Advance(context.Background(), true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.WaitIntros(ctx), core.ErrAborted)

	stale := ep
	ep = s.Advance(context.Background(), true)
	s.IntrosDone(stale)
	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	assert.Error(t, s.WaitIntros(ctx2))

	s.IntrosDone(ep)
	s.IntrosDone(ep)
	assert.NoError(t, s.WaitIntros(context.Background()))
}

func TestBeginRound_SingleFlight(t *testing.T) {
	s := New("s1")
	select {
	case <-s.RoundIdle():
	default:
		t.Fatal("expected idle")
	}

	release, ok := s.BeginRound()
	require.True(t, ok)
	_, ok = s.BeginRound()
	assert.False(t, ok)

	idle := s.RoundIdle()
	select {
	case <-idle:
		t.Fatal("round still active")
	default:
	}

	release()
	release()
	<-idle
	_, ok = s.BeginRound()
	assert.True(t, ok)
}

func TestEpochContextCarriesRecorder(t *testing.T) {
	s := New("s1")
	ep := s.Advance(context.Background(), false)

	done := core.Trace(core.RecorderFrom(ep.Context(), core.NoOpRecorder{}), "Generating response for Alice", "m", "prompt")
	done("ok", nil)

	dbg := s.Snapshot().Debug
	require.Len(t, dbg, 1)
	assert.Equal(t, core.DebugResponse, dbg[0].Kind)
	assert.Equal(t, "ok", dbg[0].Response)
}
