package runner

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/makeXnow/BrainTrust-AI/agent"
	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/internal/util"
	"github.com/makeXnow/BrainTrust-AI/logging"
	"github.com/makeXnow/BrainTrust-AI/safety"
	"github.com/makeXnow/BrainTrust-AI/scheduler"
	"github.com/makeXnow/BrainTrust-AI/session"
	"github.com/makeXnow/BrainTrust-AI/settings"
)

// ErrRoundActive is returned when a round is already running for the session.
var ErrRoundActive = errors.New("runner: a round is already running")

// Agent issues the provider requests of a round.
type Agent interface {
	scheduler.Selector
	safety.Rewriter
	Respond(ctx context.Context, in agent.ReplyInput) (safety.Text, error)
	SuggestReply(ctx context.Context, topic string, history []core.Message) (string, error)
}

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	Logger logging.Logger
	Rand   *rand.Rand
}

// Runner executes discussion rounds. Public methods are safe for concurrent
// use; each session runs at most one round at a time.
type Runner struct {
	agent    Agent
	settings settings.Provider
	logger   logging.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New constructs a Runner with optional overrides.
func New(a Agent, sp settings.Provider, optFns ...func(o *Options)) *Runner {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Runner{
		agent:    a,
		settings: sp,
		logger:   logging.OrNoOp(opts.Logger),
		rng:      opts.Rand,
	}
}

// Run executes one round for sess under epoch ep and finishes with the
// suggested reply. It returns core.ErrAborted when ep goes stale and
// ErrRoundActive when another round holds the session.
func (r *Runner) Run(sess *session.Session, ep core.Epoch) error {
	release, ok := sess.BeginRound()
	if !ok {
		return ErrRoundActive
	}
	defer release()

	start := time.Now()
	turns, err := r.run(sess, ep)
	mode := string(sess.Snapshot().Mode)
	if core.IsAborted(err) {
		r.logger.Debug("round aborted", "session_id", sess.ID(), "epoch", ep.ID, "turns", turns)
		return core.ErrAborted
	}
	logging.Round(r.logger, mode, turns, time.Since(start), err)
	return err
}

func (r *Runner) run(sess *session.Session, ep core.Epoch) (int, error) {
	ctx := ep.Context()
	if err := sess.WaitIntros(ctx); err != nil {
		return 0, err
	}

	s := r.settings.Settings()
	r.rngMu.Lock()
	seed := r.rng.Int63()
	r.rngMu.Unlock()

	mode := sess.Snapshot().Mode
	sched := scheduler.New(mode, func(o *scheduler.Options) {
		o.Selector = r.agent
		o.UserName = s.UserName
		o.UserDisplayName = s.DisplayUserName()
		o.InterferenceThreshold = s.InterferenceThreshold
		o.ModeratorAttempts = s.ModeratorAttempts
		o.Rand = rand.New(rand.NewSource(seed))
		o.Logger = r.logger
	})
	filter := safety.NewFilter(r.agent, func(o *safety.Options) { o.Logger = r.logger })
	limiter := core.NewTurnLimiter(s.MaxTurnsPerRound)

	if err := sess.Apply(ep, func(st *session.State) {
		sched.StartRound(&st.Round, st.Personas)
		st.Status = core.StatusDiscussion
		st.Suggestion = ""
	}); err != nil {
		return 0, err
	}

	turns := 0
	for {
		snap := sess.Snapshot()
		round := snap.Round.Clone()
		pick, err := sched.Next(ctx, snap.Personas, snap.Canonical, &round)
		if err != nil {
			return turns, err
		}
		if err := sess.Apply(ep, func(st *session.State) { st.Round = round }); err != nil {
			return turns, err
		}
		if pick.Done {
			break
		}
		if err := limiter.Increment(); err != nil {
			r.logger.Info("round stopped at turn limit", "session_id", sess.ID(), "error", err)
			break
		}

		addressed, err := r.turn(ctx, sess, ep, sched, filter, snap, pick, s)
		if err != nil {
			return turns, err
		}
		turns++
		if mode != core.ModeRandom && addressed {
			r.logger.Debug("user addressed, ending round", "session_id", sess.ID())
			break
		}
	}

	return turns, r.suggest(ctx, sess, ep, s)
}

// turn runs a single persona reply and reports whether it addressed the user.
func (r *Runner) turn(ctx context.Context, sess *session.Session, ep core.Epoch, sched *scheduler.Scheduler, filter *safety.Filter, snap session.State, pick scheduler.Pick, s settings.Settings) (bool, error) {
	p := pick.Persona

	if last, ok := snap.LastDisplay(); ok && last.IsResolvedAgent() {
		if err := util.Sleep(ctx, s.Pacing.ReadingTime(last.Content)); err != nil {
			return false, err
		}
	}
	if err := util.Sleep(ctx, s.Pacing.PreThink); err != nil {
		return false, err
	}

	ph := core.NewPlaceholder(p, p.FirstName+" is thinking...")
	if err := sess.Apply(ep, func(st *session.State) { st.ShowPlaceholder(ph) }); err != nil {
		return false, err
	}
	shown := time.Now()

	text, err := r.agent.Respond(ctx, agent.ReplyInput{
		Persona:      p,
		Topic:        snap.Topic,
		History:      snap.Canonical,
		Interference: pick.Interference,
	})
	if core.IsAborted(err) {
		return false, err
	}
	if err != nil {
		r.logger.Warn("persona reply degraded", "persona", p.FirstName, "error", err)
	}

	if s.SafetyEnabled {
		res, err := filter.Apply(ctx, text, s.BannedTokens())
		if err != nil {
			return false, err
		}
		if res.Token != "" {
			r.logger.Info("banned token detected", "persona", p.FirstName, "rewritten", res.Rewritten)
		}
		text = res.Text
	}

	msg := core.NewPersonaMessage(p, text.Public, text.Thoughts)
	var addressed bool
	if err := sess.Apply(ep, func(st *session.State) {
		if cur, ok := core.FindPersona(st.Personas, p.ID); ok {
			msg.AvatarURL = cur.AvatarURL
		}
		st.Canonical = append(st.Canonical, msg)
		sched.Advance(&st.Round, p.ID)
		addressed = sched.Tracker().ObserveAgent(&st.Round, p.FirstName, msg.Content, st.PersonaNames())
	}); err != nil {
		return false, err
	}

	if err := util.Sleep(ctx, s.Pacing.ThinkingMin-time.Since(shown)); err != nil {
		return false, err
	}
	if err := sess.Apply(ep, func(st *session.State) { st.SwapPlaceholder(ph.ID, msg) }); err != nil {
		return false, err
	}
	return addressed, nil
}

// suggest drafts the user's next message. Failures only cost the suggestion.
func (r *Runner) suggest(ctx context.Context, sess *session.Session, ep core.Epoch, s settings.Settings) error {
	if !s.SuggestReply {
		return sess.Apply(ep, func(st *session.State) { st.Status = core.StatusWaitingForUser })
	}
	if err := sess.Apply(ep, func(st *session.State) { st.Status = core.StatusGeneratingAutoResponse }); err != nil {
		return err
	}
	snap := sess.Snapshot()
	reply, err := r.agent.SuggestReply(ctx, snap.Topic, snap.Canonical)
	if core.IsAborted(err) {
		return err
	}
	if err != nil {
		r.logger.Warn("suggested reply failed", "session_id", sess.ID(), "error", err)
	}
	return sess.Apply(ep, func(st *session.State) {
		st.Suggestion = reply
		st.Status = core.StatusWaitingForUser
	})
}
