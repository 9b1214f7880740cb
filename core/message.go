package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author class of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAgent     Role = "agent"
	RoleModerator Role = "moderator"
	RoleSystem    Role = "system"
)

// Message is an entry in the canonical or display log. Thoughts carry the
// private reasoning of a persona and are never shown to other participants.
type Message struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Thoughts    string    `json:"thoughts,omitempty"`
	SenderName  string    `json:"senderName,omitempty"`
	SenderTitle string    `json:"senderTitle,omitempty"`
	PanelistID  string    `json:"panelistId,omitempty"`
	Color       string    `json:"color,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	IsThinking  bool      `json:"isThinking,omitempty"`
}

// NewID generates a new unique identifier for personas, messages and debug entries.
func NewID() string { return uuid.NewString() }

// NewUserMessage builds a message authored by the human participant.
func NewUserMessage(userName, text string) Message {
	return Message{
		ID:         NewID(),
		Role:       RoleUser,
		Content:    text,
		SenderName: userName,
		Timestamp:  time.Now(),
	}
}

// NewPersonaMessage builds a resolved agent message attributed to p.
func NewPersonaMessage(p Persona, content, thoughts string) Message {
	return Message{
		ID:          NewID(),
		Role:        RoleAgent,
		Content:     content,
		Thoughts:    thoughts,
		SenderName:  p.FirstName,
		SenderTitle: p.ShortDescription,
		PanelistID:  p.ID,
		Color:       p.Color.Hex,
		AvatarURL:   p.AvatarURL,
		Timestamp:   time.Now(),
	}
}

// NewPlaceholder builds a transient display-only message for p.
func NewPlaceholder(p Persona, text string) Message {
	m := NewPersonaMessage(p, text, "")
	m.IsThinking = true
	return m
}

// IsResolvedAgent reports whether m is a non-placeholder persona message.
func (m Message) IsResolvedAgent() bool {
	return m.Role == RoleAgent && !m.IsThinking
}

// FormatHistory renders messages as "Name: content" lines for prompts.
// Placeholders are skipped.
func FormatHistory(msgs []Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.IsThinking {
			continue
		}
		name := m.SenderName
		if name == "" {
			switch m.Role {
			case RoleUser:
				name = "User"
			case RoleModerator:
				name = "Moderator"
			case RoleSystem:
				name = "System"
			default:
				name = "Agent"
			}
		}
		lines = append(lines, name+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
