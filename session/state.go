package session

import (
	"strings"

	"github.com/makeXnow/BrainTrust-AI/core"
)

// State is a snapshot of one discussion.
type State struct {
	ID       string          `json:"id"`
	Topic    string          `json:"topic"`
	Mode     core.Mode       `json:"mode"`
	Status   core.Status     `json:"status"`
	Personas []core.Persona  `json:"personas"`
	// Canonical feeds provider context; Display adds transient placeholders.
	Canonical  []core.Message    `json:"messages"`
	Display    []core.Message    `json:"displayMessages"`
	Round      core.RoundState   `json:"round"`
	Suggestion string            `json:"suggestedReply,omitempty"`
	Error      string            `json:"error,omitempty"`
	Epoch      uint64            `json:"epoch"`
	Debug      []core.DebugEntry `json:"debugLogs,omitempty"`
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := s
	c.Personas = append([]core.Persona(nil), s.Personas...)
	c.Canonical = append([]core.Message(nil), s.Canonical...)
	c.Display = append([]core.Message(nil), s.Display...)
	c.Debug = append([]core.DebugEntry(nil), s.Debug...)
	c.Round = s.Round.Clone()
	return c
}

// PersonaNames returns the first names of the panel in order.
func (s *State) PersonaNames() []string {
	names := make([]string, len(s.Personas))
	for i, p := range s.Personas {
		names[i] = p.FirstName
	}
	return names
}

// UpdatePersona replaces the persona with the same id.
func (s *State) UpdatePersona(p core.Persona) bool {
	for i := range s.Personas {
		if s.Personas[i].ID == p.ID {
			s.Personas[i] = p
			return true
		}
	}
	return false
}

// AppendMessage adds m to both logs.
func (s *State) AppendMessage(m core.Message) {
	s.Canonical = append(s.Canonical, m)
	s.Display = append(s.Display, m)
}

// ShowPlaceholder appends a transient display entry.
func (s *State) ShowPlaceholder(m core.Message) {
	m.IsThinking = true
	s.Display = append(s.Display, m)
}

// ResolvePlaceholder appends m to the canonical log and swaps it in for the
// display entry id.
func (s *State) ResolvePlaceholder(id string, m core.Message) {
	m.IsThinking = false
	s.Canonical = append(s.Canonical, m)
	s.SwapPlaceholder(id, m)
}

// SwapPlaceholder replaces the display entry id with m in place. When the
// placeholder is gone m is appended.
func (s *State) SwapPlaceholder(id string, m core.Message) {
	m.IsThinking = false
	for i := range s.Display {
		if s.Display[i].ID == id {
			s.Display[i] = m
			return
		}
	}
	s.Display = append(s.Display, m)
}

// RemoveDisplay drops the display entry id.
func (s *State) RemoveDisplay(id string) {
	out := s.Display[:0]
	for _, m := range s.Display {
		if m.ID != id {
			out = append(out, m)
		}
	}
	s.Display = out
}

// DropPlaceholders removes every unresolved display entry.
func (s *State) DropPlaceholders() {
	out := s.Display[:0]
	for _, m := range s.Display {
		if !m.IsThinking {
			out = append(out, m)
		}
	}
	s.Display = out
}

// LastDisplay returns the newest display entry.
func (s *State) LastDisplay() (core.Message, bool) {
	if len(s.Display) == 0 {
		return core.Message{}, false
	}
	return s.Display[len(s.Display)-1], true
}

// HasPlaceholders reports whether any display entry is unresolved.
func (s *State) HasPlaceholders() bool {
	for _, m := range s.Display {
		if m.IsThinking {
			return true
		}
	}
	return false
}

// SetError records a user-visible error notice.
func (s *State) SetError(err error) {
	if err == nil {
		s.Error = ""
		return
	}
	s.Error = strings.TrimSpace(err.Error())
}
