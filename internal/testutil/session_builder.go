package testutil

import (
	"context"
	"strings"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/session"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess, ep := NewSessionBuilder("sess-1").Personas("Alice", "Bob").UserMessage("hi").Build()
type SessionBuilder struct {
	id       string
	mode     core.Mode
	topic    string
	personas []core.Persona
	messages []core.Message
	round    core.RoundState
	status   core.Status
}

// NewSessionBuilder creates a builder for a random-mode session whose
// introductions are already done.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{
		id:     id,
		mode:   core.ModeRandom,
		topic:  "Is remote work permanent?",
		round:  core.RoundState{LastSpeaker: core.UserSpeaker, AfterIntros: true},
		status: core.StatusDiscussion,
	}
}

// Mode sets the scheduling mode (chainable).
func (b *SessionBuilder) Mode(m core.Mode) *SessionBuilder {
	b.mode = m
	return b
}

// Topic sets the discussion topic (chainable).
func (b *SessionBuilder) Topic(t string) *SessionBuilder {
	b.topic = t
	return b
}

// Personas adds one persona per first name with the id "p-<lowercase name>"
// (chainable).
func (b *SessionBuilder) Personas(names ...string) *SessionBuilder {
	for _, n := range names {
		b.personas = append(b.personas, core.Persona{
			ID:               "p-" + strings.ToLower(n),
			FirstName:        n,
			ShortDescription: n + "'s title",
		})
	}
	return b
}

// UserMessage appends a message from the user "You" (chainable).
func (b *SessionBuilder) UserMessage(text string) *SessionBuilder {
	b.messages = append(b.messages, core.NewUserMessage("You", text))
	return b
}

// Round overrides the initial round state (chainable).
func (b *SessionBuilder) Round(r core.RoundState) *SessionBuilder {
	b.round = r
	return b
}

// Build returns the session and its current epoch. Introductions are
// signalled done.
func (b *SessionBuilder) Build() (*session.Session, core.Epoch) {
	sess := session.New(b.id, func(o *session.Options) { o.Mode = b.mode })
	ep := sess.Advance(context.Background(), false)
	_ = sess.Apply(ep, func(st *session.State) {
		st.Topic = b.topic
		st.Status = b.status
		st.Personas = append([]core.Persona(nil), b.personas...)
		for _, m := range b.messages {
			st.AppendMessage(m)
		}
		st.Round = b.round.Clone()
	})
	sess.IntrosDone(ep)
	return sess, ep
}
