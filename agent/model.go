package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/makeXnow/BrainTrust-AI/catalog"
	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/internal/jsonx"
	"github.com/makeXnow/BrainTrust-AI/internal/util"
	"github.com/makeXnow/BrainTrust-AI/logging"
	"github.com/makeXnow/BrainTrust-AI/model"
	"github.com/makeXnow/BrainTrust-AI/settings"
)

// Fallback texts used when a provider reply is missing or unusable.
const (
	FallbackPersonality = "A seasoned professional with deep expertise."
	FallbackIntro       = "Ready to join the discussion."
	FallbackThoughts    = "No thoughts recorded."
	FallbackPublic      = "No response generated."
	FailureReply        = "Sorry, I had trouble generating that response."
	FallbackFirstName   = "Expert"
	FallbackTitle       = "Consultant"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	// Catalog resolves communication styles. Defaults to the embedded catalog.
	Catalog *catalog.Catalog
	// PersonaInstruction is the system instruction of persona replies.
	PersonaInstruction Instruction
	Logger             logging.Logger
	Debug              core.DebugRecorder
}

// ModelAgent issues every text-generation request of a discussion against a
// single model.Model. It is safe for concurrent use.
type ModelAgent struct {
	llm         model.Model
	settings    settings.Provider
	catalog     *catalog.Catalog
	instruction Instruction
	logger      logging.Logger
	debug       core.DebugRecorder
}

// NewModelAgent creates a ModelAgent reading its prompts, model id and
// timeouts from sp on every call.
func NewModelAgent(llm model.Model, sp settings.Provider, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		PersonaInstruction: NewInstructionFromText(DefaultPersonaInstruction),
		Logger:             logging.NoOpLogger{},
		Debug:              core.NoOpRecorder{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Debug == nil {
		opts.Debug = core.NoOpRecorder{}
	}
	return &ModelAgent{
		llm:         llm,
		settings:    sp,
		catalog:     opts.Catalog,
		instruction: opts.PersonaInstruction,
		logger:      logging.OrNoOp(opts.Logger),
		debug:       opts.Debug,
	}
}

// Catalog returns the style catalog used by the agent.
func (a *ModelAgent) Catalog() *catalog.Catalog { return a.catalog }

// Style resolves a persona's communication style. Unknown names yield a
// style carrying only the name and the default word band.
func (a *ModelAgent) Style(name string) core.CommunicationStyle {
	if s, ok := a.catalog.MatchStyle(name); ok {
		return s
	}
	return core.CommunicationStyle{Name: name, WordMin: 10, WordMax: 50}
}

// call renders tmpl, issues one request bounded by the text timeout and
// parses the reply.
func (a *ModelAgent) call(ctx context.Context, s settings.Settings, op, endpoint, instructions, tmpl string, data any) (jsonx.Doc, error) {
	prompt, err := util.RenderTemplate(tmpl, data)
	if err != nil {
		return jsonx.Doc{}, &core.ProviderError{Op: op, Err: fmt.Errorf("render prompt: %w", err)}
	}

	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.TextTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, s.TextTimeout)
	}
	defer cancel()

	done := core.Trace(core.RecorderFrom(ctx, a.debug), endpoint, s.TextModel, prompt)
	start := time.Now()
	text, usage, err := model.GenerateText(callCtx, a.llm, model.NewPromptRequest(s.TextModel, instructions, prompt))
	if ctx.Err() != nil {
		return jsonx.Doc{}, core.ErrAborted
	}
	tokens := 0
	if usage != nil {
		tokens = usage.TotalTokens
	}
	logging.LLMCall(a.logger, s.TextModel, tokens, time.Since(start), err)
	if err != nil {
		done("", err)
		return jsonx.Doc{}, &core.ProviderError{Op: op, Err: err}
	}
	done(text, nil)

	doc, err := jsonx.Parse(text)
	if err != nil {
		return jsonx.Doc{}, &core.ParseError{Op: op, Err: err}
	}
	return doc, nil
}
