package assembly

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/makeXnow/BrainTrust-AI/agent"
	"github.com/makeXnow/BrainTrust-AI/avatar"
	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/session"
	"github.com/makeXnow/BrainTrust-AI/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePanel struct {
	names    []string
	panelErr error
	enrich   func(ctx context.Context, p core.Persona) (agent.Profile, error)

	mu       sync.Mutex
	enriched int
}

func (f *fakePanel) QuickPanel(_ context.Context, _ string, count int) ([]agent.Skeleton, error) {
	if f.panelErr != nil {
		return nil, f.panelErr
	}
	names := f.names
	if names == nil {
		names = []string{"Alice", "Bob", "Cara", "Dan", "Eve", "Finn", "Gus", "Hana"}
	}
	out := make([]agent.Skeleton, count)
	for i := range out {
		out[i] = agent.Skeleton{
			FirstName:        names[i],
			ShortDescription: "specialist",
			Style:            core.CommunicationStyle{Name: "Concise"},
		}
	}
	return out, nil
}

func (f *fakePanel) Enrich(ctx context.Context, _ string, p core.Persona) (agent.Profile, error) {
	f.mu.Lock()
	f.enriched++
	f.mu.Unlock()
	if f.enrich != nil {
		return f.enrich(ctx, p)
	}
	return agent.Profile{
		FullPersonality:     "Curious.",
		PhysicalDescription: "Tall.",
		IntroMessage:        fmt.Sprintf("Hi, I'm %s.", p.FirstName),
	}, nil
}

type fakeAvatars struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeAvatars) Generate(_ context.Context, req avatar.Request) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return "https://img.test/" + req.Persona.FirstName + ".png", nil
}

var (
	_ PanelAgent      = (*fakePanel)(nil)
	_ AvatarGenerator = (*fakeAvatars)(nil)
)

func testPipeline(a PanelAgent, avatars AvatarGenerator, fns ...func(s *settings.Settings)) *Pipeline {
	s := settings.Defaults()
	s.Pacing = settings.Pacing{}
	s.AgentCount = 3
	for _, fn := range fns {
		fn(&s)
	}
	return New(a, settings.NewStatic(s), func(o *Options) {
		o.Avatars = avatars
		o.Rand = rand.New(rand.NewSource(1))
	})
}

func freshSession() (*session.Session, core.Epoch) {
	sess := session.New("s1")
	return sess, sess.Advance(context.Background(), false)
}

func TestRun_AssemblesPanel(t *testing.T) {
	fp, fa := &fakePanel{}, &fakeAvatars{}
	p := testPipeline(fp, fa)
	sess, ep := freshSession()

	require.NoError(t, p.Run(sess, ep, "Is remote work permanent?"))
	p.WaitAvatars()

	st := sess.Snapshot()
	require.Len(t, st.Personas, 3)
	assert.Equal(t, core.StatusDiscussion, st.Status)
	assert.Equal(t, 3, fp.enriched)
	assert.Equal(t, 3, fa.calls)

	ids, colors := map[string]bool{}, map[string]bool{}
	for _, pr := range st.Personas {
		ids[pr.ID] = true
		colors[pr.Color.Hex] = true
		assert.Equal(t, "specialist", pr.ShortDescription)
		assert.Equal(t, "Curious.", pr.FullPersonality)
		assert.Equal(t, "https://img.test/"+pr.FirstName+".png", pr.AvatarURL)
	}
	assert.Len(t, ids, 3)
	assert.Len(t, colors, 3)

	require.Len(t, st.Canonical, 3)
	assert.False(t, st.HasPlaceholders())
	for _, m := range st.Canonical {
		assert.Equal(t, core.RoleAgent, m.Role)
		assert.Equal(t, fmt.Sprintf("Hi, I'm %s.", m.SenderName), m.Content)
		assert.NotEmpty(t, m.AvatarURL)
	}
	assert.NoError(t, sess.WaitIntros(context.Background()))
}

func TestRun_AvatarsDisabled(t *testing.T) {
	fa := &fakeAvatars{}
	p := testPipeline(&fakePanel{}, fa, func(s *settings.Settings) { s.AvatarEnabled = false })
	sess, ep := freshSession()

	require.NoError(t, p.Run(sess, ep, "topic"))
	p.WaitAvatars()
	assert.Zero(t, fa.calls)
	for _, pr := range sess.Snapshot().Personas {
		assert.Empty(t, pr.AvatarURL)
	}
}

func TestRun_PanelFailureIsFatal(t *testing.T) {
	p := testPipeline(&fakePanel{panelErr: &core.ProviderError{Op: "panel", Err: errors.New("503")}}, nil)
	sess, ep := freshSession()

	err := p.Run(sess, ep, "topic")
	var fatal *core.FatalAssemblyError
	require.ErrorAs(t, err, &fatal)
	assert.Empty(t, sess.Snapshot().Personas)
}

func TestRun_EnrichmentFailureUsesFallback(t *testing.T) {
	fp := &fakePanel{enrich: func(_ context.Context, p core.Persona) (agent.Profile, error) {
		return agent.Profile{
			FullPersonality: agent.FallbackPersonality,
			IntroMessage:    agent.FallbackIntro,
		}, &core.ParseError{Op: "details", Err: errors.New("bad json")}
	}}
	fa := &fakeAvatars{}
	p := testPipeline(fp, fa)
	sess, ep := freshSession()

	require.NoError(t, p.Run(sess, ep, "topic"))
	p.WaitAvatars()
	st := sess.Snapshot()
	require.Len(t, st.Canonical, 3)
	for _, m := range st.Canonical {
		assert.Equal(t, agent.FallbackIntro, m.Content)
	}
	assert.Zero(t, fa.calls)
}

func TestRun_ResetDuringEnrichmentLeavesNoTrace(t *testing.T) {
	entered := make(chan struct{}, 3)
	fp := &fakePanel{enrich: func(ctx context.Context, _ core.Persona) (agent.Profile, error) {
		entered <- struct{}{}
		<-ctx.Done()
		return agent.Profile{}, core.ErrAborted
	}}
	p := testPipeline(fp, &fakeAvatars{})
	sess, ep := freshSession()

	done := make(chan error, 1)
	go func() { done <- p.Run(sess, ep, "topic") }()

	<-entered
	next := sess.Advance(context.Background(), true)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, core.ErrAborted)
	case <-time.After(2 * time.Second):
		t.Fatal("assembly did not stop after reset")
	}
	p.WaitAvatars()

	st := sess.Snapshot()
	assert.Equal(t, core.StatusIdle, st.Status)
	assert.Empty(t, st.Personas)
	assert.Empty(t, st.Display)
	assert.Equal(t, next.ID, st.Epoch)
}

func TestAttachAvatarBackfillsMessages(t *testing.T) {
	st := &session.State{
		Personas: []core.Persona{{ID: "a"}, {ID: "b"}},
	}
	st.AppendMessage(core.Message{ID: "m1", PanelistID: "a"})
	st.AppendMessage(core.Message{ID: "m2", PanelistID: "b"})

	attachAvatar(st, "a", "data:image/png;base64,AAA")

	assert.Equal(t, "data:image/png;base64,AAA", st.Personas[0].AvatarURL)
	assert.Empty(t, st.Personas[1].AvatarURL)
	assert.Equal(t, "data:image/png;base64,AAA", st.Canonical[0].AvatarURL)
	assert.Equal(t, "data:image/png;base64,AAA", st.Display[0].AvatarURL)
	assert.Empty(t, st.Canonical[1].AvatarURL)
}

func TestRun_DuplicateNamesAreNumbered(t *testing.T) {
	fp := &fakePanel{names: []string{"Alex", "alex", "Bo"}}
	p := testPipeline(fp, nil)
	sess, ep := freshSession()

	require.NoError(t, p.Run(sess, ep, "topic"))
	var names []string
	for _, pr := range sess.Snapshot().Personas {
		names = append(names, pr.FirstName)
	}
	assert.Equal(t, []string{"Alex", "alex 2", "Bo"}, names)
}

func TestUniqueNames(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		user string
		want []string
	}{
		{"distinct", []string{"Alice", "Bob"}, "", []string{"Alice", "Bob"}},
		{"repeats", []string{"Alex", "Alex", "Alex"}, "", []string{"Alex", "Alex 2", "Alex 3"}},
		{"blank uses fallback", []string{"", " "}, "", []string{agent.FallbackFirstName, agent.FallbackFirstName + " 2"}},
		{"suffix already taken", []string{"Alex 2", "Alex", "Alex"}, "", []string{"Alex 2", "Alex", "Alex 3"}},
		{"user name reserved", []string{"Sam", "Bob"}, "sam", []string{"Sam 2", "Bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sk := make([]agent.Skeleton, len(tt.in))
			for i, n := range tt.in {
				sk[i] = agent.Skeleton{FirstName: n}
			}
			assert.Equal(t, tt.want, uniqueNames(sk, tt.user))
		})
	}
}
