package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/makeXnow/BrainTrust-AI/catalog"
	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/session"
	"github.com/makeXnow/BrainTrust-AI/settings"
)

const askSession = "ask"

// AskCmd runs a non-interactive discussion and prints the transcript.
type AskCmd struct {
	CommonOptions
	Topic    string        `short:"t" long:"topic"   description:"discussion topic" required:"true"`
	Rounds   int           `short:"r" long:"rounds"  description:"number of rounds" default:"1"`
	NoPacing bool          `long:"no-pacing"         description:"disable presentation delays"`
	Timeout  time.Duration `long:"timeout"           description:"overall deadline" default:"10m"`

	out io.Writer
}

func (c *AskCmd) Execute(_ []string) error {
	if c.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1")
	}
	var extra []func(s *settings.Settings)
	if c.NoPacing {
		extra = append(extra, func(s *settings.Settings) { s.Pacing = settings.Pacing{} })
	}
	bt, cleanup, err := c.open(os.Stderr, extra...)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	if err := bt.SubmitSync(ctx, askSession, c.Topic); err != nil {
		return err
	}
	for i := 1; i < c.Rounds; i++ {
		if err := bt.ContinueSync(ctx, askSession); err != nil {
			return err
		}
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	printTranscript(out, bt.Snapshot(askSession))
	return nil
}

// printTranscript writes the panel and every canonical message of st.
func printTranscript(w io.Writer, st session.State) {
	fmt.Fprintf(w, "Topic: %s\n", st.Topic)
	if st.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", st.Error)
	}
	if len(st.Personas) > 0 {
		fmt.Fprintln(w, "Panel:")
		for _, p := range st.Personas {
			fmt.Fprintf(w, "  - %s, %s\n", p.FirstName, p.ShortDescription)
		}
	}
	fmt.Fprintln(w)
	for _, m := range st.Canonical {
		switch m.Role {
		case core.RoleUser:
			fmt.Fprintf(w, "> %s: %s\n\n", m.SenderName, m.Content)
		default:
			fmt.Fprintf(w, "%s: %s\n\n", m.SenderName, strings.TrimSpace(m.Content))
		}
	}
	if st.Suggestion != "" {
		fmt.Fprintf(w, "Suggested reply: %s\n", st.Suggestion)
	}
}

// TopicsCmd prints topic suggestions from the catalog.
type TopicsCmd struct {
	Catalog string `long:"catalog" description:"catalog YAML path"`
	Count   int    `short:"c" long:"count" description:"number of suggestions" default:"5"`

	out io.Writer
}

func (c *TopicsCmd) Execute(_ []string) error {
	cat := catalog.Default()
	if c.Catalog != "" {
		var err error
		if cat, err = catalog.Load(c.Catalog); err != nil {
			return err
		}
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, s := range cat.RandomSuggestions(c.Count, rng) {
		fmt.Fprintln(out, s)
	}
	return nil
}
