package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickPanel_ParsesAndMatchesStyles(t *testing.T) {
	a, m, _ := newTestAgent(t, reply("Sure! ```json\n"+`{"panelists":[
		{"firstName":"Alice","shortDescription":"Labor economist","communicationStyle":"Measured and academic"},
		{"name":"Bob","description":"Startup CEO","style":"contrarian"},
		{"firstName":"Cara","shortDescription":"Nurse","communicationStyle":"Something new"},
		{"firstName":"Dan","shortDescription":"Extra","communicationStyle":"Punchy"}
	]}`+"\n```"))

	sk, err := a.QuickPanel(context.Background(), "Is remote work permanent?", 3)
	require.NoError(t, err)
	require.Len(t, sk, 3)

	assert.Equal(t, "Alice", sk[0].FirstName)
	assert.Equal(t, "academic", sk[0].Style.ID)
	assert.Equal(t, "Bob", sk[1].FirstName)
	assert.Equal(t, "Startup CEO", sk[1].ShortDescription)
	assert.Equal(t, "contrarian", sk[1].Style.ID)
	assert.Equal(t, a.Catalog().Styles[2].ID, sk[2].Style.ID)

	promptContains(t, m, 0, `Topic: "Is remote work permanent?"`, "Create 3 diverse panelists", "- Punchy and direct:")
}

func TestQuickPanel_RootArrayAndDefaults(t *testing.T) {
	a, _, _ := newTestAgent(t, reply(`[{"communicationStyle":"Warm storyteller"}]`))
	sk, err := a.QuickPanel(context.Background(), "t", 2)
	require.NoError(t, err)
	require.Len(t, sk, 1)
	assert.Equal(t, FallbackFirstName, sk[0].FirstName)
	assert.Equal(t, FallbackTitle, sk[0].ShortDescription)
	assert.Equal(t, "storyteller", sk[0].Style.ID)
}

func TestQuickPanel_EmptyIsParseError(t *testing.T) {
	a, _, _ := newTestAgent(t, reply(`{"panelists":[]}`))
	_, err := a.QuickPanel(context.Background(), "t", 3)
	var perr *core.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestEnrich_AliasesAndPrompt(t *testing.T) {
	a, m, _ := newTestAgent(t, reply(`{"description":"Senior Economist","personality":"Grew up in a mill town.","appearance":"Grey blazer, silver hair.","intro":"Hi, Alice here."}`))
	p := core.Persona{ID: "p1", FirstName: "Alice", ShortDescription: "Economist", CommunicationStyle: "Measured and academic"}

	pr, err := a.Enrich(context.Background(), "remote work", p)
	require.NoError(t, err)
	assert.Equal(t, Profile{
		ShortDescription:    "Senior Economist",
		FullPersonality:     "Grew up in a mill town.",
		PhysicalDescription: "Grey blazer, silver hair.",
		IntroMessage:        "Hi, Alice here.",
	}, pr)

	pr.Apply(&p)
	assert.Equal(t, "Senior Economist", p.ShortDescription)
	promptContains(t, m, 0, "Name: Alice", "Target Word Count: 30-80 words", "Hello, Alice here. I'll try to bring some evidence to this.")
}

func TestEnrich_FailureFallsBack(t *testing.T) {
	a, _, _ := newTestAgent(t, func(context.Context, model.Request) (string, error) { return "", errors.New("down") })
	p := core.Persona{FirstName: "Bob", ShortDescription: "CEO", CommunicationStyle: "Playful contrarian"}

	pr, err := a.Enrich(context.Background(), "t", p)
	assert.Error(t, err)
	assert.Equal(t, "CEO", pr.ShortDescription)
	assert.Equal(t, FallbackPersonality, pr.FullPersonality)
	assert.Equal(t, "Bob. Someone has to disagree, so it might as well be me.", pr.IntroMessage)

	p.CommunicationStyle = "unknown"
	pr, _ = a.Enrich(context.Background(), "t", p)
	assert.Equal(t, FallbackIntro, pr.IntroMessage)
}

func TestEnrich_AbortReturnsEmptyProfile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a, _, _ := newTestAgent(t, reply(`{}`))
	pr, err := a.Enrich(ctx, "t", core.Persona{FirstName: "X"})
	assert.ErrorIs(t, err, core.ErrAborted)
	assert.Equal(t, Profile{}, pr)
}
