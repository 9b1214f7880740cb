package openai

import (
	"testing"

	"github.com/makeXnow/BrainTrust-AI/model"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
)

var (
	_ model.Model      = (*Model)(nil)
	_ model.ImageModel = (*ImageModel)(nil)
)

func TestBuildMessages(t *testing.T) {
	req := model.Request{
		Instructions: "You are Alice.",
		Messages: []model.Message{
			{Role: "user", Text: "hello"},
			{Role: "assistant", Text: "hi"},
			{Role: "user", Text: ""},
		},
	}
	msgs := buildMessages(req)
	assert.Len(t, msgs, 3)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	assert.NotNil(t, msgs[2].OfAssistant)
}

func TestBuildParams_ModelOverride(t *testing.T) {
	client := openai.NewClient()
	m := NewModelFromClient(&client, func(o *Options) { o.Model = "gpt-4o" })

	p := m.buildParams(model.NewPromptRequest("", "", "x"))
	assert.EqualValues(t, "gpt-4o", p.Model)

	p = m.buildParams(model.NewPromptRequest("gpt-4.1-mini", "", "x"))
	assert.EqualValues(t, "gpt-4.1-mini", p.Model)
	assert.Equal(t, "openai", m.Info().Provider)
}

func TestImageModelInfo(t *testing.T) {
	client := openai.NewClient()
	m := NewImageModelFromClient(&client)
	assert.Equal(t, string(openai.ImageModelDallE3), m.Info().Name)
}
