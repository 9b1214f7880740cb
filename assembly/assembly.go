// Package assembly builds the panel of a new discussion: one batched request
// for persona descriptors, then concurrent per-persona enrichment followed by
// avatar generation, with introductions displayed one at a time.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/makeXnow/BrainTrust-AI/agent"
	"github.com/makeXnow/BrainTrust-AI/avatar"
	"github.com/makeXnow/BrainTrust-AI/catalog"
	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/internal/util"
	"github.com/makeXnow/BrainTrust-AI/logging"
	"github.com/makeXnow/BrainTrust-AI/session"
	"github.com/makeXnow/BrainTrust-AI/settings"
)

// PanelAgent issues the assembly requests.
type PanelAgent interface {
	QuickPanel(ctx context.Context, topic string, count int) ([]agent.Skeleton, error)
	Enrich(ctx context.Context, topic string, p core.Persona) (agent.Profile, error)
}

// AvatarGenerator produces an avatar URL for a persona.
type AvatarGenerator interface {
	Generate(ctx context.Context, req avatar.Request) (string, error)
}

// Options configures a Pipeline.
type Options struct {
	Catalog *catalog.Catalog
	// Avatars is optional; without it personas keep no avatar.
	Avatars AvatarGenerator
	Rand    *rand.Rand
	Logger  logging.Logger
}

// Pipeline runs persona assembly for any number of sessions.
type Pipeline struct {
	agent    PanelAgent
	settings settings.Provider
	catalog  *catalog.Catalog
	avatars  AvatarGenerator
	logger   logging.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	avatarWG sync.WaitGroup
}

// New creates a Pipeline.
func New(a PanelAgent, sp settings.Provider, optFns ...func(o *Options)) *Pipeline {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Pipeline{
		agent:    a,
		settings: sp,
		catalog:  opts.Catalog,
		avatars:  opts.Avatars,
		logger:   logging.OrNoOp(opts.Logger),
		rng:      opts.Rand,
	}
}

// Run assembles the panel for topic into sess under epoch ep. It returns once
// every introduction is displayed; avatars may still be in flight (see
// WaitAvatars). Errors are *core.FatalAssemblyError when no persona could be
// created and core.ErrAborted when ep went stale.
func (p *Pipeline) Run(sess *session.Session, ep core.Epoch, topic string) error {
	ctx := ep.Context()
	s := p.settings.Settings()
	count := s.Agents()

	skeletons, err := p.agent.QuickPanel(ctx, topic, count)
	if err != nil {
		if core.IsAborted(err) {
			return core.ErrAborted
		}
		return &core.FatalAssemblyError{Err: err}
	}
	if len(skeletons) == 0 {
		return &core.FatalAssemblyError{Err: errors.New("no panelists generated")}
	}

	p.rngMu.Lock()
	colors := catalog.AssignColors(p.catalog.Palette, len(skeletons), p.rng)
	p.rngMu.Unlock()

	names := uniqueNames(skeletons, s.UserName)
	personas := make([]core.Persona, len(skeletons))
	for i, sk := range skeletons {
		personas[i] = core.Persona{
			ID:                 core.NewID(),
			FirstName:          names[i],
			ShortDescription:   sk.ShortDescription,
			CommunicationStyle: sk.Style.Name,
			Color:              colors[i],
		}
	}
	if err := sess.Apply(ep, func(st *session.State) {
		st.Personas = append([]core.Persona(nil), personas...)
		st.Status = core.StatusIntroductions
	}); err != nil {
		return err
	}
	p.logger.Info("panel created", "session_id", sess.ID(), "personas", len(personas))

	var introMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, persona := range personas {
		g.Go(func() error {
			profile, err := p.agent.Enrich(gctx, topic, persona)
			if core.IsAborted(err) || ctx.Err() != nil {
				return core.ErrAborted
			}
			if err != nil {
				p.logger.Warn("enrichment failed, using fallback profile", "persona", persona.FirstName, "error", err)
			}
			profile.Apply(&persona)
			if err := sess.Apply(ep, func(st *session.State) { st.UpdatePersona(persona) }); err != nil {
				return err
			}

			if err == nil && s.AvatarEnabled && p.avatars != nil {
				p.startAvatar(sess, ep, persona, s)
			}

			introMu.Lock()
			defer introMu.Unlock()
			return p.introduce(ctx, sess, ep, persona, s.Pacing)
		})
	}
	if err := g.Wait(); err != nil {
		return core.ErrAborted
	}

	sess.IntrosDone(ep)
	return sess.Apply(ep, func(st *session.State) { st.Status = core.StatusDiscussion })
}

// introduce shows a joining placeholder, then swaps in the intro text.
func (p *Pipeline) introduce(ctx context.Context, sess *session.Session, ep core.Epoch, persona core.Persona, pacing settings.Pacing) error {
	if err := util.Sleep(ctx, pacing.IntroPreDelay); err != nil {
		return err
	}
	ph := core.NewPlaceholder(persona, persona.FirstName+" is joining...")
	if err := sess.Apply(ep, func(st *session.State) { st.ShowPlaceholder(ph) }); err != nil {
		return err
	}
	if err := util.Sleep(ctx, pacing.JoiningMin); err != nil {
		return err
	}
	return sess.Apply(ep, func(st *session.State) {
		// The avatar may have attached while the placeholder was showing.
		for _, cur := range st.Personas {
			if cur.ID == persona.ID {
				persona.AvatarURL = cur.AvatarURL
			}
		}
		st.ResolvePlaceholder(ph.ID, core.NewPersonaMessage(persona, persona.IntroMessage, ""))
	})
}

func (p *Pipeline) startAvatar(sess *session.Session, ep core.Epoch, persona core.Persona, s settings.Settings) {
	p.avatarWG.Add(1)
	go func() {
		defer p.avatarWG.Done()
		url, err := p.avatars.Generate(ep.Context(), avatar.Request{
			SessionID: sess.ID(),
			Persona:   persona,
			Template:  s.Prompts.Image,
			Model:     s.ImageModel,
			Timeout:   s.ImageTimeout,
		})
		if err != nil {
			if !core.IsAborted(err) {
				p.logger.Warn("avatar generation failed", "persona", persona.FirstName, "error", err)
			}
			return
		}
		_ = sess.Apply(ep, func(st *session.State) { attachAvatar(st, persona.ID, url) })
	}()
}

// uniqueNames returns the skeleton first names with repeats numbered
// ("Alex", "Alex 2"). Names are compared case-insensitively and the user's
// name is never handed to a persona.
func uniqueNames(skeletons []agent.Skeleton, userName string) []string {
	taken := map[string]bool{}
	if u := strings.TrimSpace(userName); u != "" {
		taken[strings.ToLower(u)] = true
	}
	out := make([]string, len(skeletons))
	for i, sk := range skeletons {
		base := strings.TrimSpace(sk.FirstName)
		if base == "" {
			base = agent.FallbackFirstName
		}
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s %d", base, n)
		}
		taken[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

// attachAvatar sets the persona's avatar and back-fills its messages.
func attachAvatar(st *session.State, id, url string) {
	for i := range st.Personas {
		if st.Personas[i].ID == id {
			st.Personas[i].AvatarURL = url
		}
	}
	for _, log := range [][]core.Message{st.Canonical, st.Display} {
		for i := range log {
			if log[i].PanelistID == id {
				log[i].AvatarURL = url
			}
		}
	}
}

// WaitAvatars blocks until every started avatar request has finished.
func (p *Pipeline) WaitAvatars() {
	p.avatarWG.Wait()
}
