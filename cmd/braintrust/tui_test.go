package main

import (
	"math/rand"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	braintrust "github.com/makeXnow/BrainTrust-AI"
	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/engine"
	"github.com/makeXnow/BrainTrust-AI/internal/testutil"
	"github.com/makeXnow/BrainTrust-AI/session"
	"github.com/makeXnow/BrainTrust-AI/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBrainTrust(t *testing.T) *braintrust.BrainTrust {
	t.Helper()
	s := settings.Defaults()
	s.Pacing = settings.Pacing{}
	s.AvatarEnabled = false
	bt := braintrust.New(testutil.NewPanelModel(), func(o *braintrust.Options) {
		o.Settings = settings.NewStatic(s)
		o.Rand = rand.New(rand.NewSource(1))
	})
	t.Cleanup(bt.Close)
	return bt
}

func enter(m chatModel, text string) chatModel {
	m.input.SetValue(text)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(chatModel)
}

func waitingForUser(bt *braintrust.BrainTrust, id string) func() bool {
	return func() bool { return bt.Snapshot(id).Status == core.StatusWaitingForUser }
}

func TestChatModel_SubmitStartsDiscussion(t *testing.T) {
	bt := newTestBrainTrust(t)
	m := newChatModel(bt, "s1")
	defer m.unsubscribe()

	m = enter(m, "Is remote work permanent?")
	assert.Empty(t, m.input.Value())
	assert.Equal(t, "sent", m.statusLine)
	assert.Equal(t, "Is remote work permanent?", bt.Snapshot("s1").Topic)

	require.Eventually(t, waitingForUser(bt, "s1"), 2*time.Second, 10*time.Millisecond)
	assert.Len(t, bt.Snapshot("s1").Personas, 3)
}

func TestChatModel_SlashCommands(t *testing.T) {
	bt := newTestBrainTrust(t)
	m := newChatModel(bt, "s1")
	defer m.unsubscribe()

	m = enter(m, "/continue")
	assert.Equal(t, engine.ErrNoDiscussion.Error(), m.statusLine)

	m = enter(m, "/bogus")
	assert.Equal(t, "unknown command /bogus", m.statusLine)

	m = enter(m, "Is remote work permanent?")
	require.Eventually(t, waitingForUser(bt, "s1"), 2*time.Second, 10*time.Millisecond)

	m = enter(m, "/reset")
	assert.Equal(t, "session reset", m.statusLine)
	st := bt.Snapshot("s1")
	assert.Equal(t, core.StatusIdle, st.Status)
	assert.Empty(t, st.Personas)

	_, cmd := enter(m, "/quit").Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestChatModel_StateAndSuggestion(t *testing.T) {
	bt := newTestBrainTrust(t)
	m := newChatModel(bt, "s1")
	defer m.unsubscribe()

	st := session.State{
		Topic:      "Is remote work permanent?",
		Mode:       core.ModeMention,
		Status:     core.StatusWaitingForUser,
		Personas:   []core.Persona{{ID: "a", FirstName: "Alice"}},
		Suggestion: "What about hybrid setups?",
	}
	next, cmd := m.Update(stateMsg(st))
	m = next.(chatModel)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Reply to the panel", m.input.Placeholder)
	assert.Contains(t, m.headerText(), "Is remote work permanent?")
	assert.Contains(t, m.headerText(), "mention mode")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(chatModel)
	assert.Equal(t, "What about hybrid setups?", m.input.Value())
}

func TestRenderTimeline(t *testing.T) {
	alice := core.Persona{ID: "a", FirstName: "Alice", ShortDescription: "Economist", Color: core.Color{Hex: "#ff8800"}}
	bob := core.Persona{ID: "b", FirstName: "Bob"}
	st := session.State{
		Status: core.StatusWaitingForUser,
		Display: []core.Message{
			core.NewUserMessage("Sam", "Is remote work permanent?"),
			core.NewPersonaMessage(alice, "It depends.", ""),
			core.NewPlaceholder(bob, "Bob is thinking..."),
		},
		Error:      "image model unavailable",
		Suggestion: "Tell me more.",
	}

	out := renderTimeline(st, 80, newChatStyles())
	assert.Contains(t, out, "Sam")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Economist")
	assert.Contains(t, out, "It depends.")
	assert.Contains(t, out, "Bob is thinking...")
	assert.Contains(t, out, "! image model unavailable (/dismiss)")
	assert.Contains(t, out, "suggested: Tell me more.")
}

func TestRenderTimeline_Empty(t *testing.T) {
	out := renderTimeline(session.State{}, 10, newChatStyles())
	assert.Contains(t, out, "Enter a topic")
}
