// Package safety detects banned tokens in a generated reply and requests a
// single rewrite. The rewrite replaces the reply unconditionally; it is not
// re-checked.
package safety

import (
	"context"
	"strings"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/logging"
)

// Text is a persona reply: public comment plus private reasoning.
type Text struct {
	Public   string
	Thoughts string
}

// Rewriter asks a model to rephrase text without the banned tokens.
type Rewriter interface {
	Rewrite(ctx context.Context, in Text, banned []string) (Text, error)
}

// RewriterFunc adapts a function to Rewriter.
type RewriterFunc func(ctx context.Context, in Text, banned []string) (Text, error)

// Rewrite implements Rewriter.
func (f RewriterFunc) Rewrite(ctx context.Context, in Text, banned []string) (Text, error) {
	return f(ctx, in, banned)
}

// Result describes the outcome of Apply.
type Result struct {
	Text Text
	// Token is the first banned token found, empty when not triggered.
	Token     string
	Rewritten bool
}

// Match returns the first banned token contained in text (case-insensitive).
func Match(text string, banned []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, tok := range banned {
		t := strings.ToLower(strings.TrimSpace(tok))
		if t != "" && strings.Contains(lower, t) {
			return tok, true
		}
	}
	return "", false
}

// Filter runs the detection and the single rewrite attempt.
type Filter struct {
	rewriter Rewriter
	logger   logging.Logger
}

// Options configures a Filter.
type Options struct {
	Logger logging.Logger
}

// NewFilter creates a Filter backed by r.
func NewFilter(r Rewriter, optFns ...func(o *Options)) *Filter {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Filter{rewriter: r, logger: logging.OrNoOp(opts.Logger)}
}

// Apply checks in.Public against banned. When triggered it issues exactly one
// rewrite; usable output replaces both fields. A failed or empty rewrite keeps
// the original text. Only an aborted epoch is returned as an error.
func (f *Filter) Apply(ctx context.Context, in Text, banned []string) (Result, error) {
	tok, hit := Match(in.Public, banned)
	if !hit {
		return Result{Text: in}, nil
	}

	out, err := f.rewriter.Rewrite(ctx, in, banned)
	if err != nil {
		if core.IsAborted(err) {
			return Result{}, err
		}
		f.logger.Warn("safety rewrite failed, keeping original", "token", tok, "error", err)
		return Result{Text: in, Token: tok}, nil
	}
	if strings.TrimSpace(out.Public) == "" {
		f.logger.Warn("safety rewrite returned no text, keeping original", "token", tok)
		return Result{Text: in, Token: tok}, nil
	}

	f.logger.Debug("safety rewrite applied", "token", tok)
	return Result{Text: out, Token: tok, Rewritten: true}, nil
}
