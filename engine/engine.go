package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/logging"
	"github.com/makeXnow/BrainTrust-AI/mention"
	"github.com/makeXnow/BrainTrust-AI/session"
	"github.com/makeXnow/BrainTrust-AI/settings"
)

var (
	// ErrEmptyMessage is returned for blank user input.
	ErrEmptyMessage = errors.New("engine: message is empty")
	// ErrBusy is returned while the panel for a topic is being assembled.
	ErrBusy = errors.New("engine: panel assembly in progress")
	// ErrNoDiscussion is returned by Continue when the session has no panel.
	ErrNoDiscussion = errors.New("engine: no discussion to continue")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("engine: closed")
)

// Assembler builds the panel for a topic.
type Assembler interface {
	Run(sess *session.Session, ep core.Epoch, topic string) error
}

// RoundRunner executes one discussion round.
type RoundRunner interface {
	Run(sess *session.Session, ep core.Epoch) error
}

// Purger drops the stored artifacts of a session.
type Purger interface {
	Purge(sessionID string)
}

// Config defines tuning parameters for the Engine.
type Config struct {
	// MaxConcurrentWorkflows limits how many assembly or round workflows run
	// at once across all sessions. Set to 0 for unlimited.
	MaxConcurrentWorkflows int
}

// DefaultConfig provides the default configuration values.
var DefaultConfig = Config{
	MaxConcurrentWorkflows: 10,
}

// Options configures an Engine.
type Options struct {
	Config Config
	// Artifacts, when set, is purged for a session on Reset.
	Artifacts Purger
	Callbacks *CallbackManager
	Logger    logging.Logger
}

// Engine drives discussions for any number of sessions. All methods are safe
// for concurrent use.
type Engine struct {
	assembler Assembler
	runner    RoundRunner
	settings  settings.Provider
	artifacts Purger
	callbacks *CallbackManager
	logger    logging.Logger

	sem chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates an Engine.
func New(a Assembler, r RoundRunner, sp settings.Provider, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Callbacks == nil {
		opts.Callbacks = NewCallbackManager()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		assembler: a,
		runner:    r,
		settings:  sp,
		artifacts: opts.Artifacts,
		callbacks: opts.Callbacks,
		logger:    logging.OrNoOp(opts.Logger),
		ctx:       ctx,
		cancel:    cancel,
	}
	if n := opts.Config.MaxConcurrentWorkflows; n > 0 {
		e.sem = make(chan struct{}, n)
	}
	return e
}

// Callbacks returns the engine's callback manager.
func (e *Engine) Callbacks() *CallbackManager { return e.callbacks }

// Submit handles user input. On a session without a panel the text becomes
// the topic of a new discussion; otherwise it is a follow-up message that
// starts a new round.
func (e *Engine) Submit(sess *session.Session, text string) (<-chan error, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if e.isClosed() {
		return nil, ErrClosed
	}

	snap := sess.Snapshot()
	switch snap.Status {
	case core.StatusGeneratingPanelists, core.StatusIntroductions:
		return nil, ErrBusy
	}

	s := e.settings.Settings()
	msg := core.NewUserMessage(s.DisplayUserName(), text)

	if len(snap.Personas) == 0 {
		ep := sess.Advance(e.ctx, true)
		if err := sess.Apply(ep, func(st *session.State) {
			st.Topic = text
			st.Mode = s.Mode
			st.Status = core.StatusGeneratingPanelists
			st.AppendMessage(msg)
			st.Round = core.RoundState{LastSpeaker: core.UserSpeaker, AfterIntros: true}
		}); err != nil {
			return nil, err
		}
		e.logger.Info("discussion started", "session_id", sess.ID(), "epoch", ep.ID, "mode", s.Mode)
		return e.start(sess, ep, func() error { return e.discuss(sess, ep, text) }), nil
	}

	ep := sess.Advance(e.ctx, false)
	tracker := mention.NewTracker(s.UserName, s.InterferenceThreshold)
	if err := sess.Apply(ep, func(st *session.State) {
		st.DropPlaceholders()
		st.AppendMessage(msg)
		tracker.ObserveUser(&st.Round, text, st.PersonaNames())
		st.Round.LastSpeaker = core.UserSpeaker
		st.Round.UserSkipped = false
		st.Round.AfterIntros = false
		st.Suggestion = ""
		st.Status = core.StatusDiscussion
	}); err != nil {
		return nil, err
	}
	e.logger.Debug("user message", "session_id", sess.ID(), "epoch", ep.ID)
	return e.start(sess, ep, func() error { return e.round(sess, ep) }), nil
}

// Continue starts a new round without a user message.
func (e *Engine) Continue(sess *session.Session) (<-chan error, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}
	snap := sess.Snapshot()
	switch {
	case snap.Status == core.StatusGeneratingPanelists || snap.Status == core.StatusIntroductions:
		return nil, ErrBusy
	case len(snap.Personas) == 0:
		return nil, ErrNoDiscussion
	}

	ep := sess.Advance(e.ctx, false)
	if err := sess.Apply(ep, func(st *session.State) {
		st.DropPlaceholders()
		st.Round.UserSkipped = true
		st.Suggestion = ""
		st.Status = core.StatusDiscussion
	}); err != nil {
		return nil, err
	}
	return e.start(sess, ep, func() error { return e.round(sess, ep) }), nil
}

// Reset cancels all in-flight work of sess and returns it to idle.
func (e *Engine) Reset(sess *session.Session) {
	ep := sess.Advance(e.ctx, true)
	if e.artifacts != nil {
		e.artifacts.Purge(sess.ID())
	}
	e.logger.Info("session reset", "session_id", sess.ID(), "epoch", ep.ID)
	e.fire(CallbackOnReset, &CallbackContext{SessionID: sess.ID(), Epoch: ep.ID})
}

// DismissError clears the user-visible error notice.
func (e *Engine) DismissError(sess *session.Session) {
	_ = sess.Apply(sess.Epoch(), func(st *session.State) { st.SetError(nil) })
}

// Close cancels every running workflow and waits for them to unwind.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
	if w, ok := e.assembler.(interface{ WaitAvatars() }); ok {
		w.WaitAvatars()
	}
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// start runs fn on its own goroutine under the workflow limit.
func (e *Engine) start(sess *session.Session, ep core.Epoch, fn func() error) <-chan error {
	done := make(chan error, 1)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(done)

		err := e.acquire(ep)
		if err == nil {
			err = fn()
			e.release()
		}
		switch {
		case err == nil:
		case core.IsAborted(err):
			e.logger.Debug("workflow superseded", "session_id", sess.ID(), "epoch", ep.ID)
			err = nil
		default:
			e.logger.Error("workflow failed", "session_id", sess.ID(), "epoch", ep.ID, "error", err)
			e.fire(CallbackOnError, &CallbackContext{SessionID: sess.ID(), Epoch: ep.ID, Err: err})
		}
		done <- err
	}()
	return done
}

func (e *Engine) acquire(ep core.Epoch) error {
	if e.sem == nil {
		return nil
	}
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ep.Context().Done():
		return core.ErrAborted
	}
}

func (e *Engine) release() {
	if e.sem != nil {
		<-e.sem
	}
}

// discuss assembles the panel for topic and runs the first round.
func (e *Engine) discuss(sess *session.Session, ep core.Epoch, topic string) error {
	cc := &CallbackContext{SessionID: sess.ID(), Epoch: ep.ID, Topic: topic}
	if err := e.callbacks.ExecuteCallbacks(ep.Context(), CallbackBeforeAssembly, cc); err != nil {
		e.fail(sess, ep, err)
		return err
	}

	err := e.assembler.Run(sess, ep, topic)
	var fatal *core.FatalAssemblyError
	if errors.As(err, &fatal) {
		e.fail(sess, ep, err)
		return err
	}
	if err != nil {
		return err
	}
	e.fire(CallbackAfterAssembly, cc)

	return e.round(sess, ep)
}

// round waits for the superseded round to unwind, then runs a new one.
func (e *Engine) round(sess *session.Session, ep core.Epoch) error {
	select {
	case <-sess.RoundIdle():
	case <-ep.Context().Done():
		return core.ErrAborted
	}

	cc := &CallbackContext{SessionID: sess.ID(), Epoch: ep.ID, Topic: sess.Snapshot().Topic}
	if err := e.callbacks.ExecuteCallbacks(ep.Context(), CallbackBeforeRound, cc); err != nil {
		return err
	}
	if err := e.runner.Run(sess, ep); err != nil {
		return err
	}
	e.fire(CallbackAfterRound, cc)
	return nil
}

// fail returns the session to idle with a visible error notice.
func (e *Engine) fail(sess *session.Session, ep core.Epoch, err error) {
	e.logger.Error("discussion could not start", "session_id", sess.ID(), "error", err)
	_ = sess.Apply(ep, func(st *session.State) {
		st.Personas = nil
		st.Canonical = nil
		st.Display = nil
		st.Round = core.RoundState{}
		st.Suggestion = ""
		st.Status = core.StatusIdle
		st.SetError(err)
	})
}

func (e *Engine) fire(t CallbackType, cc *CallbackContext) {
	if err := e.callbacks.ExecuteCallbacks(e.ctx, t, cc); err != nil {
		e.logger.Warn("callback failed", "type", t, "error", err)
	}
}
