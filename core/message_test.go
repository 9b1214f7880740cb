package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHistory(t *testing.T) {
	alice := Persona{ID: "p1", FirstName: "Alice", ShortDescription: "Economist", Color: Color{Name: "sky", Hex: "#0ea5e9"}}

	msgs := []Message{
		NewUserMessage("Dana", "Is remote work permanent?"),
		NewPersonaMessage(alice, "It is here to stay.", "private"),
		NewPlaceholder(alice, "Alice is thinking..."),
		{Role: RoleModerator, Content: "Summary."},
		{Role: RoleUser, Content: "Anonymous."},
	}

	got := FormatHistory(msgs)
	assert.Equal(t, "Dana: Is remote work permanent?\nAlice: It is here to stay.\nModerator: Summary.\nUser: Anonymous.", got)
}

func TestNewPersonaMessage_CopiesAttribution(t *testing.T) {
	p := Persona{ID: "p1", FirstName: "Bob", ShortDescription: "Founder", AvatarURL: "data:x", Color: Color{Name: "rose", Hex: "#f43f5e"}}
	m := NewPersonaMessage(p, "hi", "because")

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, RoleAgent, m.Role)
	assert.Equal(t, "p1", m.PanelistID)
	assert.Equal(t, "Founder", m.SenderTitle)
	assert.Equal(t, "#f43f5e", m.Color)
	assert.Equal(t, "data:x", m.AvatarURL)
	assert.True(t, m.IsResolvedAgent())

	ph := NewPlaceholder(p, "Bob is thinking...")
	assert.True(t, ph.IsThinking)
	assert.False(t, ph.IsResolvedAgent())
}

func TestFindPersona(t *testing.T) {
	ps := []Persona{{ID: "a"}, {ID: "b", FirstName: "B"}}
	p, ok := FindPersona(ps, "b")
	assert.True(t, ok)
	assert.Equal(t, "B", p.FirstName)

	_, ok = FindPersona(ps, "z")
	assert.False(t, ok)
}
