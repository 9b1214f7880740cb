// Package avatar renders the portrait prompt for a persona, requests the image
// from an image model, trims the generated frame and stores the result.
package avatar

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/internal/util"
	"github.com/makeXnow/BrainTrust-AI/logging"
	"github.com/makeXnow/BrainTrust-AI/model"
)

// personalityExcerpt bounds how much of the personality reaches the image prompt.
const personalityExcerpt = 400

// unsafeTerms are words image providers tend to refuse in portrait prompts.
var unsafeTerms = regexp.MustCompile(`(?i)\b(?:trauma|emergency|mass-casualty|ER|blood|violence|death|kill|dead|gun|weapon|hospital|injury|accident|victim|murder|attack)\b`)

// Scrub replaces provider-sensitive words in s with repl.
func Scrub(s, repl string) string {
	return unsafeTerms.ReplaceAllString(s, repl)
}

// PromptData is the template input of the image prompt.
type PromptData struct {
	FirstName           string
	ShortDescription    string
	PhysicalDescription string
	Personality         string
	Color               string
}

// NewPromptData builds scrubbed prompt input for p.
func NewPromptData(p core.Persona) PromptData {
	personality := []rune(p.FullPersonality)
	if len(personality) > personalityExcerpt {
		personality = personality[:personalityExcerpt]
	}
	color := p.Color.Name
	if color == "" {
		color = "professional"
	}
	return PromptData{
		FirstName:           p.FirstName,
		ShortDescription:    Scrub(p.ShortDescription, "professional"),
		PhysicalDescription: Scrub(p.PhysicalDescription, "professional"),
		Personality:         Scrub(string(personality), "medical or professional"),
		Color:               color,
	}
}

// Options configures a Generator.
type Options struct {
	// Store keeps the cropped bytes keyed by session and persona id. Optional.
	Store  core.ArtifactStore
	Logger logging.Logger
	Debug  core.DebugRecorder
	// Timeout bounds a single image request. Zero disables the bound.
	Timeout time.Duration
}

// Generator produces persona avatars.
type Generator struct {
	model model.ImageModel
	opts  Options
}

// NewGenerator creates a Generator backed by m.
func NewGenerator(m model.ImageModel, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Logger:  logging.NoOpLogger{},
		Debug:   core.NoOpRecorder{},
		Timeout: 90 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Debug == nil {
		opts.Debug = core.NoOpRecorder{}
	}
	return &Generator{model: m, opts: opts}
}

// Request describes one avatar generation.
type Request struct {
	SessionID string
	Persona   core.Persona
	// Template is the image prompt template; see PromptData for its fields.
	Template string
	Model    string
	// Timeout overrides Options.Timeout when positive.
	Timeout time.Duration
}

// Generate returns the avatar URL for the persona: a PNG data URL when the
// provider returned bytes, otherwise the provider URL. Cropping failures fall
// back to the uncropped image. Errors are *core.ProviderError or
// core.ErrAborted when ctx ended.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	prompt, err := util.RenderTemplate(req.Template, NewPromptData(req.Persona))
	if err != nil {
		return "", &core.ProviderError{Op: "avatar prompt", Err: err}
	}

	timeout := g.opts.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	endpoint := "Generating image for " + req.Persona.FirstName
	done := core.Trace(core.RecorderFrom(ctx, g.opts.Debug), endpoint, req.Model, prompt)
	start := time.Now()
	resp, err := g.model.GenerateImage(callCtx, model.ImageRequest{Model: req.Model, Prompt: prompt})
	if ctx.Err() != nil {
		return "", core.ErrAborted
	}
	logging.ImageCall(g.opts.Logger, req.Model, time.Since(start), err)
	if err != nil {
		done("", err)
		return "", &core.ProviderError{Op: "image", Err: err}
	}
	if len(resp.Data) == 0 {
		if resp.URL == "" {
			err := errors.New("no image returned")
			done("", err)
			return "", &core.ProviderError{Op: "image", Err: err}
		}
		done(resp.URL, nil)
		return resp.URL, nil
	}
	done(fmt.Sprintf("%d bytes", len(resp.Data)), nil)

	data := resp.Data
	if cropped, err := Crop(data); err != nil {
		g.opts.Logger.Warn("avatar crop failed, using original", "persona", req.Persona.FirstName, "error", err)
	} else {
		data = cropped
	}
	if g.opts.Store != nil {
		if err := g.opts.Store.Save(req.SessionID, req.Persona.ID, data); err != nil {
			g.opts.Logger.Warn("avatar store failed", "persona", req.Persona.FirstName, "error", err)
		}
	}
	return DataURL(data), nil
}

// DataURL encodes image bytes as a data URL.
func DataURL(data []byte) string {
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
