package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/makeXnow/BrainTrust-AI/core"
)

// Selection is a moderator's speaker pick. Chosen is not validated here.
type Selection struct {
	Reasoning map[string]string
	Chosen    string
}

type selectionData struct {
	ParticipantList string
	UserName        string
	History         string
}

// SelectSpeaker asks the moderator to pick the next speaker from allowed.
// A reply without a chosen name is a *core.ParseError.
func (a *ModelAgent) SelectSpeaker(ctx context.Context, allowed []string, history []core.Message) (Selection, error) {
	s := a.settings.Settings()
	doc, err := a.call(ctx, s, "moderator selection", "Moderator choosing next speaker", "", s.Prompts.ModeratorSelection, selectionData{
		ParticipantList: strings.Join(allowed, ", "),
		UserName:        s.DisplayUserName(),
		History:         core.FormatHistory(history),
	})
	if err != nil {
		return Selection{}, err
	}
	reasoning, _ := doc.StringMap("reasoning", "reasons", "analysis")
	sel := Selection{
		Reasoning: reasoning,
		Chosen:    doc.String("chosen", "next", "nextSpeaker", "speaker", "name"),
	}
	if sel.Chosen == "" {
		return sel, &core.ParseError{Op: "moderator selection", Err: errors.New("no chosen speaker")}
	}
	return sel, nil
}

type suggestionData struct {
	Topic    string
	UserName string
	History  string
}

// SuggestReply asks the moderator persona to draft the user's next message.
func (a *ModelAgent) SuggestReply(ctx context.Context, topic string, history []core.Message) (string, error) {
	s := a.settings.Settings()
	doc, err := a.call(ctx, s, "suggested reply", "Generating suggested reply", "", s.Prompts.Moderator, suggestionData{
		Topic:    topic,
		UserName: s.DisplayUserName(),
		History:  core.FormatHistory(history),
	})
	if err != nil {
		return "", err
	}
	reply := doc.String("userResponse", "response", "reply", "suggestion", "message")
	if reply == "" {
		return "", &core.ParseError{Op: "suggested reply", Err: errors.New("no userResponse in reply")}
	}
	return reply, nil
}
