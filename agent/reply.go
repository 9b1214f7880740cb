package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/internal/util"
	"github.com/makeXnow/BrainTrust-AI/safety"
)

// ReplyInput is the context of one persona turn.
type ReplyInput struct {
	Persona core.Persona
	Topic   string
	// History is the canonical log so far.
	History []core.Message
	// Interference asks the persona to address the user directly.
	Interference bool
}

type replyData struct {
	FirstName        string
	ShortDescription string
	FullPersonality  string
	Style            string
	StyleDescription string
	WordMin          int
	WordMax          int
	Topic            string
	UserName         string
	History          string
	Interference     string
}

// Respond generates a persona's public comment and private thoughts. Missing
// fields fall back to placeholder texts; a provider failure yields
// FailureReply. The error is returned alongside usable text except on abort.
func (a *ModelAgent) Respond(ctx context.Context, in ReplyInput) (safety.Text, error) {
	s := a.settings.Settings()
	style := a.Style(in.Persona.CommunicationStyle)
	userName := s.DisplayUserName()

	data := replyData{
		FirstName:        in.Persona.FirstName,
		ShortDescription: in.Persona.ShortDescription,
		FullPersonality:  in.Persona.FullPersonality,
		Style:            style.Name,
		StyleDescription: style.Description,
		WordMin:          style.WordMin,
		WordMax:          style.WordMax,
		Topic:            in.Topic,
		UserName:         userName,
		History:          core.FormatHistory(in.History),
	}
	if in.Interference {
		data.Interference = strings.TrimSpace(util.MustRender(s.Prompts.Interference, struct{ UserName string }{userName}))
	}

	instructions, err := a.instruction.Resolve(in.Persona)
	if err != nil {
		a.logger.Warn("persona instruction failed", "persona", in.Persona.FirstName, "error", err)
		instructions = ""
	}

	doc, err := a.call(ctx, s, "response", "Generating "+in.Persona.FirstName+"'s response", instructions, s.Prompts.Response, data)
	switch {
	case core.IsAborted(err):
		return safety.Text{}, err
	case err != nil:
		var perr *core.ParseError
		if errors.As(err, &perr) {
			return safety.Text{Public: FallbackPublic, Thoughts: FallbackThoughts}, err
		}
		return safety.Text{Public: FailureReply, Thoughts: FallbackThoughts}, err
	}

	return safety.Text{
		Public:   doc.StringOr(FallbackPublic, "publicComment", "public_comment", "response", "message", "summary", "comment"),
		Thoughts: doc.StringOr(FallbackThoughts, "thoughts", "thinking", "reasoning", "internalMonologue"),
	}, nil
}

type rewriteData struct {
	BannedWords string
	Response    string
}

// Rewrite implements safety.Rewriter with the banned-speech prompt. A reply
// without a public comment yields empty text, which the filter ignores.
func (a *ModelAgent) Rewrite(ctx context.Context, in safety.Text, banned []string) (safety.Text, error) {
	s := a.settings.Settings()
	doc, err := a.call(ctx, s, "rewrite", "Rewriting banned speech", "", s.Prompts.BannedSpeech, rewriteData{
		BannedWords: strings.Join(banned, ", "),
		Response:    in.Public,
	})
	if err != nil {
		return safety.Text{}, err
	}
	out := safety.Text{
		Public:   doc.String("publicComment", "public_comment", "response", "message", "rewritten"),
		Thoughts: doc.StringOr(in.Thoughts, "thoughts", "thinking", "reasoning"),
	}
	if out.Public == "" {
		return safety.Text{}, nil
	}
	return out, nil
}

var _ safety.Rewriter = (*ModelAgent)(nil)
