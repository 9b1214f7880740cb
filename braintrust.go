// Package braintrust provides a high-level façade over the discussion engine
// and its services (sessions, avatar artifacts, settings and logging). Most
// applications interact with this package by:
//  1. Creating a BrainTrust via New() with a text model (and optionally an
//     image model for avatars)
//  2. Submitting a topic for a session id, which assembles a panel of
//     personas and runs the first round
//  3. Observing the session through Snapshot or Subscribe, and submitting
//     follow-up messages, continuing or resetting
//
// The façade delegates orchestration to engine.Engine. All defaults are
// in-memory and safe for local development and testing.
package braintrust

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/makeXnow/BrainTrust-AI/agent"
	"github.com/makeXnow/BrainTrust-AI/artifact"
	"github.com/makeXnow/BrainTrust-AI/assembly"
	"github.com/makeXnow/BrainTrust-AI/avatar"
	"github.com/makeXnow/BrainTrust-AI/catalog"
	"github.com/makeXnow/BrainTrust-AI/engine"
	"github.com/makeXnow/BrainTrust-AI/logging"
	"github.com/makeXnow/BrainTrust-AI/model"
	"github.com/makeXnow/BrainTrust-AI/runner"
	"github.com/makeXnow/BrainTrust-AI/session"
	"github.com/makeXnow/BrainTrust-AI/settings"
)

// Options configures the BrainTrust instance.
type Options struct {
	// Engine configuration (workflow concurrency)
	EngineConfig engine.Config

	// Settings supplies runtime tunables. Defaults to settings.Defaults().
	Settings settings.Provider
	// Catalog supplies styles, palette and topic suggestions. Defaults to the
	// embedded catalog.
	Catalog *catalog.Catalog
	// ImageModel generates avatars. Nil disables avatars.
	ImageModel model.ImageModel

	// Stores (defaults to in-memory implementations if not provided)
	SessionStore  *session.InMemoryStore
	ArtifactStore *artifact.InMemoryStore

	// Rand drives shuffles and color assignment. Defaults to a time seed.
	Rand *rand.Rand

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// BrainTrust is the high-level façade aggregating the engine and services.
type BrainTrust struct {
	opts     Options
	sessions *session.InMemoryStore
	engine   *engine.Engine

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a BrainTrust backed by llm. Any unset service is initialized
// with an in-memory implementation.
func New(llm model.Model, optFns ...func(o *Options)) *BrainTrust {
	opts := Options{
		EngineConfig:  engine.DefaultConfig,
		ArtifactStore: artifact.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Settings == nil {
		opts.Settings = settings.NewStatic(settings.Defaults())
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.SessionStore == nil {
		mode := opts.Settings.Settings().Mode
		opts.SessionStore = session.NewInMemoryStore(func(o *session.Options) {
			o.Mode = mode
			o.Logger = opts.Logger
		})
	}

	ma := agent.NewModelAgent(llm, opts.Settings, func(o *agent.ModelAgentOptions) {
		o.Catalog = opts.Catalog
		o.Logger = opts.Logger
	})

	var avatars assembly.AvatarGenerator
	if opts.ImageModel != nil {
		avatars = avatar.NewGenerator(opts.ImageModel, func(o *avatar.Options) {
			o.Store = opts.ArtifactStore
			o.Logger = opts.Logger
		})
	}

	pipeline := assembly.New(ma, opts.Settings, func(o *assembly.Options) {
		o.Catalog = opts.Catalog
		o.Avatars = avatars
		o.Rand = rand.New(rand.NewSource(opts.Rand.Int63()))
		o.Logger = opts.Logger
	})
	rounds := runner.New(ma, opts.Settings, func(o *runner.Options) {
		o.Rand = rand.New(rand.NewSource(opts.Rand.Int63()))
		o.Logger = opts.Logger
	})
	eng := engine.New(pipeline, rounds, opts.Settings, func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Artifacts = opts.ArtifactStore
		o.Logger = opts.Logger
	})

	return &BrainTrust{
		opts:     opts,
		sessions: opts.SessionStore,
		engine:   eng,
		rng:      opts.Rand,
	}
}

// Session returns the session for id, creating it when missing.
func (b *BrainTrust) Session(sessionID string) *session.Session {
	return b.sessions.Get(sessionID)
}

// Callbacks exposes the engine's lifecycle hooks.
func (b *BrainTrust) Callbacks() *engine.CallbackManager { return b.engine.Callbacks() }

// Submit starts a discussion on sessionID (first message) or a new round
// (follow-up) asynchronously. The returned channel yields the workflow's
// error and is then closed.
func (b *BrainTrust) Submit(sessionID, text string) (<-chan error, error) {
	return b.engine.Submit(b.Session(sessionID), text)
}

// SubmitSync is a synchronous helper that waits until the workflow started by
// Submit finished or ctx is done.
func (b *BrainTrust) SubmitSync(ctx context.Context, sessionID, text string) error {
	done, err := b.Submit(sessionID, text)
	if err != nil {
		return err
	}
	return wait(ctx, done)
}

// Continue starts a new round without a user message.
func (b *BrainTrust) Continue(sessionID string) (<-chan error, error) {
	return b.engine.Continue(b.Session(sessionID))
}

// ContinueSync is the synchronous form of Continue.
func (b *BrainTrust) ContinueSync(ctx context.Context, sessionID string) error {
	done, err := b.Continue(sessionID)
	if err != nil {
		return err
	}
	return wait(ctx, done)
}

// Reset cancels all work of sessionID and returns it to idle.
func (b *BrainTrust) Reset(sessionID string) {
	b.engine.Reset(b.Session(sessionID))
}

// DismissError clears the user-visible error notice of sessionID.
func (b *BrainTrust) DismissError(sessionID string) {
	b.engine.DismissError(b.Session(sessionID))
}

// Snapshot returns a copy of the current state of sessionID.
func (b *BrainTrust) Snapshot(sessionID string) session.State {
	return b.Session(sessionID).Snapshot()
}

// Subscribe streams state snapshots of sessionID. The returned func
// unsubscribes.
func (b *BrainTrust) Subscribe(sessionID string) (<-chan session.State, func()) {
	return b.Session(sessionID).Subscribe()
}

// Suggestions returns n random topic suggestions from the catalog.
func (b *BrainTrust) Suggestions(n int) []string {
	b.rngMu.Lock()
	defer b.rngMu.Unlock()
	return b.opts.Catalog.RandomSuggestions(n, b.rng)
}

// Avatar returns the stored avatar bytes of a persona.
func (b *BrainTrust) Avatar(sessionID, personaID string) ([]byte, error) {
	return b.opts.ArtifactStore.Get(sessionID, personaID)
}

// Close cancels all work and waits for in-flight requests to unwind.
func (b *BrainTrust) Close() {
	b.engine.Close()
	for _, id := range b.sessions.IDs() {
		b.sessions.Get(id).Close()
	}
}

func wait(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
