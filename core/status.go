package core

import (
	"fmt"
	"strings"
)

// Status is the coarse discussion phase observed by the host UI.
type Status int

const (
	StatusIdle Status = iota
	StatusGeneratingPanelists
	StatusIntroductions
	StatusDiscussion
	StatusGeneratingAutoResponse
	StatusWaitingForUser
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusGeneratingPanelists:
		return "generating_panelists"
	case StatusIntroductions:
		return "introductions"
	case StatusDiscussion:
		return "discussion"
	case StatusGeneratingAutoResponse:
		return "generating_auto_response"
	case StatusWaitingForUser:
		return "waiting_for_user"
	default:
		return "unknown"
	}
}

// Mode selects the turn scheduling policy. It is fixed per session.
type Mode string

const (
	ModeRandom    Mode = "random"
	ModeMention   Mode = "mention"
	ModeModerator Mode = "moderator"
)

// ParseMode accepts the short mode names and their long forms
// ("mention-following", "moderator-selected").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random":
		return ModeRandom, nil
	case "mention", "mention-following":
		return ModeMention, nil
	case "moderator", "moderator-selected":
		return ModeModerator, nil
	default:
		return "", fmt.Errorf("unknown scheduling mode %q", s)
	}
}
