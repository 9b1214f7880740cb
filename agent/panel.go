package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/internal/util"
)

// Skeleton is a compact persona descriptor from the batched panel request.
type Skeleton struct {
	FirstName        string
	ShortDescription string
	Style            core.CommunicationStyle
}

type quickPanelData struct {
	Topic  string
	Count  int
	Styles string
}

// QuickPanel asks for count persona descriptors in a single request. Style
// names are matched back to the catalog; unmatched names receive catalog
// styles in rotation. Extra descriptors are dropped. An empty panel is a
// *core.ParseError.
func (a *ModelAgent) QuickPanel(ctx context.Context, topic string, count int) ([]Skeleton, error) {
	s := a.settings.Settings()
	endpoint := fmt.Sprintf("Assembling %d panelists", count)
	doc, err := a.call(ctx, s, "panelists", endpoint, "", s.Prompts.QuickPanelists, quickPanelData{
		Topic:  topic,
		Count:  count,
		Styles: a.catalog.DescribeStyles(),
	})
	if err != nil {
		return nil, err
	}

	items := doc.Array("panelists", "personas", "members", "panel")
	if items == nil && doc.IsArray() {
		items = doc.Items()
	}
	if len(items) == 0 {
		return nil, &core.ParseError{Op: "panelists", Err: errors.New("no panelists in reply")}
	}
	if len(items) > count {
		items = items[:count]
	}

	styles := a.catalog.Styles
	out := make([]Skeleton, 0, len(items))
	for i, it := range items {
		style, ok := a.catalog.MatchStyle(it.String("communicationStyle", "style", "communication_style"))
		if !ok {
			style = styles[i%len(styles)]
		}
		out = append(out, Skeleton{
			FirstName:        it.StringOr(FallbackFirstName, "firstName", "first_name", "name"),
			ShortDescription: it.StringOr(FallbackTitle, "shortDescription", "description", "title", "role"),
			Style:            style,
		})
	}
	return out, nil
}

// Profile is the enrichment result for one persona.
type Profile struct {
	ShortDescription    string
	FullPersonality     string
	PhysicalDescription string
	IntroMessage        string
}

// Apply copies the profile onto p. An empty short description keeps the
// one from the quick panel.
func (pr Profile) Apply(p *core.Persona) {
	if pr.ShortDescription != "" {
		p.ShortDescription = pr.ShortDescription
	}
	p.FullPersonality = pr.FullPersonality
	p.PhysicalDescription = pr.PhysicalDescription
	p.IntroMessage = pr.IntroMessage
}

type detailsData struct {
	Topic            string
	FirstName        string
	ShortDescription string
	Style            string
	StyleDescription string
	WordMin          int
	WordMax          int
	StyleIntro       string
}

// Enrich requests the full profile of a skeleton persona. The returned
// profile is always usable: on provider or parse errors it carries fallback
// texts and the error is returned alongside for logging. Only an abort
// yields an empty profile.
func (a *ModelAgent) Enrich(ctx context.Context, topic string, p core.Persona) (Profile, error) {
	s := a.settings.Settings()
	style := a.Style(p.CommunicationStyle)
	styleIntro := strings.TrimSpace(util.MustRender(style.IntroTemplate, p))

	fallback := Profile{
		ShortDescription: p.ShortDescription,
		FullPersonality:  FallbackPersonality,
		IntroMessage:     styleIntro,
	}
	if fallback.IntroMessage == "" {
		fallback.IntroMessage = FallbackIntro
	}

	doc, err := a.call(ctx, s, "panelist details", "Generating details for "+p.FirstName, "", s.Prompts.PanelistDetails, detailsData{
		Topic:            topic,
		FirstName:        p.FirstName,
		ShortDescription: p.ShortDescription,
		Style:            style.Name,
		StyleDescription: style.Description,
		WordMin:          style.WordMin,
		WordMax:          style.WordMax,
		StyleIntro:       styleIntro,
	})
	if core.IsAborted(err) {
		return Profile{}, err
	}
	if err != nil {
		return fallback, err
	}

	return Profile{
		ShortDescription:    doc.StringOr(fallback.ShortDescription, "shortDescription", "description", "title"),
		FullPersonality:     doc.StringOr(fallback.FullPersonality, "fullPersonality", "personality", "background"),
		PhysicalDescription: doc.StringOr(fallback.PhysicalDescription, "physicalDescription", "appearance", "physical"),
		IntroMessage:        doc.StringOr(fallback.IntroMessage, "introMessage", "intro", "introduction"),
	}, nil
}
