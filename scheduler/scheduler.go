// Package scheduler implements the turn-selection policies of a discussion
// round: random order, mention-following and moderator-selected. The
// immediately preceding speaker is never eligible in any mode.
package scheduler

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/makeXnow/BrainTrust-AI/agent"
	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/logging"
	"github.com/makeXnow/BrainTrust-AI/mention"
)

// Selector asks a moderator model for the next speaker.
type Selector interface {
	SelectSpeaker(ctx context.Context, allowed []string, history []core.Message) (agent.Selection, error)
}

// Options configures a Scheduler.
type Options struct {
	// Selector is required in moderator mode.
	Selector Selector
	// UserName is the configured name of the human participant. Mentions of
	// the user are only detected when it is set.
	UserName string
	// UserDisplayName is offered to the moderator as the user's name.
	// Defaults to UserName.
	UserDisplayName string
	// InterferenceThreshold is the consecutive agent turn count that triggers
	// the user-engagement nudge. 0 disables it.
	InterferenceThreshold int
	// ModeratorAttempts bounds moderator retries before falling back.
	ModeratorAttempts int
	Rand              *rand.Rand
	Logger            logging.Logger
}

// Scheduler picks the next speaker of a round. It is not safe for concurrent
// use; a round runner owns one at a time.
type Scheduler struct {
	mode     core.Mode
	selector Selector
	tracker  *mention.Tracker
	attempts int
	userName string
	rng      *rand.Rand
	logger   logging.Logger
}

// New creates a Scheduler for mode.
func New(mode core.Mode, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		ModeratorAttempts: 3,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if strings.TrimSpace(opts.UserDisplayName) == "" {
		opts.UserDisplayName = opts.UserName
	}
	if opts.ModeratorAttempts <= 0 {
		opts.ModeratorAttempts = 1
	}
	return &Scheduler{
		mode:     mode,
		selector: opts.Selector,
		tracker:  mention.NewTracker(opts.UserName, opts.InterferenceThreshold),
		attempts: opts.ModeratorAttempts,
		userName: strings.TrimSpace(opts.UserDisplayName),
		rng:      opts.Rand,
		logger:   logging.OrNoOp(opts.Logger),
	}
}

// Mode returns the scheduling policy.
func (s *Scheduler) Mode() core.Mode { return s.mode }

// Tracker returns the mention tracker bound to this scheduler's user name
// and threshold.
func (s *Scheduler) Tracker() *mention.Tracker { return s.tracker }

// Pick is the outcome of Next.
type Pick struct {
	Persona core.Persona
	// Done means the round is over: no eligible persona remains or the user
	// was chosen.
	Done bool
	// UserChosen is set when the round ends because the user has the floor.
	UserChosen bool
	// Interference asks the picked persona to address the user.
	Interference bool
}

// StartRound reshuffles the round order and clears the spoken set. Mention
// queue, counter and last speaker carry over.
func (s *Scheduler) StartRound(state *core.RoundState, personas []core.Persona) {
	order := make([]string, len(personas))
	for i, p := range personas {
		order[i] = p.ID
	}
	s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	state.Order = order
	state.AlreadySpoken = nil
	state.Turns = 0
}

// Advance records that persona id took a turn.
func (s *Scheduler) Advance(state *core.RoundState, id string) {
	if !state.HasSpoken(id) {
		state.AlreadySpoken = append(state.AlreadySpoken, id)
	}
	state.LastSpeaker = id
	state.AfterIntros = false
	state.UserSkipped = false
	state.Turns++
}

// Next selects the next speaker and records the decision in state. The only
// error returned is an abort from the moderator call.
func (s *Scheduler) Next(ctx context.Context, personas []core.Persona, history []core.Message, state *core.RoundState) (Pick, error) {
	interference := false
	if s.mode != core.ModeRandom && s.tracker.ShouldInterfere(state) {
		s.logger.Debug("interference triggered", "consecutive_agent_turns", state.ConsecutiveAgentCount)
		s.tracker.Interfere(state)
		interference = true
	}

	var (
		pick Pick
		dec  core.Decision
		err  error
	)
	switch s.mode {
	case core.ModeMention:
		pick, dec = s.nextMention(personas, state)
	case core.ModeModerator:
		pick, dec, err = s.nextModerator(ctx, personas, history, state)
		if err != nil {
			return Pick{}, err
		}
	default:
		pick, dec = s.nextInOrder(personas, state)
	}

	pick.Interference = interference && !pick.Done
	dec.Interference = pick.Interference
	state.LastDecision = &dec
	return pick, nil
}

// nextInOrder returns the first unspoken persona of the round order that did
// not speak last.
func (s *Scheduler) nextInOrder(personas []core.Persona, state *core.RoundState) (Pick, core.Decision) {
	for _, id := range state.Order {
		if state.HasSpoken(id) || id == state.LastSpeaker {
			continue
		}
		if p, ok := core.FindPersona(personas, id); ok {
			return Pick{Persona: p}, core.Decision{Chosen: p.FirstName}
		}
	}
	return Pick{Done: true}, core.Decision{}
}

// nextMention pops eligible queue heads, dropping ineligible ones, then
// falls back to the round order.
func (s *Scheduler) nextMention(personas []core.Persona, state *core.RoundState) (Pick, core.Decision) {
	for len(state.MentionQueue) > 0 {
		head := state.MentionQueue[0]
		state.MentionQueue = state.MentionQueue[1:]

		if s.tracker.IsUser(head) {
			if state.AfterIntros || state.UserSkipped {
				continue
			}
			return Pick{Done: true, UserChosen: true}, core.Decision{Chosen: s.userName}
		}
		p, ok := findEligible(personas, head, state.LastSpeaker)
		if !ok {
			continue
		}
		return Pick{Persona: p}, core.Decision{Chosen: p.FirstName}
	}
	return s.nextInOrder(personas, state)
}

// nextModerator asks the selector up to the configured number of times and
// falls back to mention-following on repeated failure. The round restarts
// instead of ending once every persona has spoken.
func (s *Scheduler) nextModerator(ctx context.Context, personas []core.Persona, history []core.Message, state *core.RoundState) (Pick, core.Decision, error) {
	if allSpoken(personas, state) {
		s.StartRound(state, personas)
	}

	allowed := s.allowed(personas, state)
	if s.selector == nil {
		pick, dec := s.nextMention(personas, state)
		dec.Fallback = true
		return pick, dec, nil
	}

	var lastReasoning map[string]string
	for attempt := 1; attempt <= s.attempts; attempt++ {
		sel, err := s.selector.SelectSpeaker(ctx, allowed, history)
		if err != nil {
			if core.IsAborted(err) {
				return Pick{}, core.Decision{}, err
			}
			s.logger.Warn("moderator selection failed", "attempt", attempt, "error", err)
			continue
		}
		lastReasoning = sel.Reasoning
		name, ok := matchAllowed(allowed, sel.Chosen)
		if !ok {
			verr := &core.ValidationError{Chosen: sel.Chosen, Allowed: allowed}
			s.logger.Warn("moderator chose an ineligible speaker", "attempt", attempt, "error", verr)
			continue
		}
		dec := core.Decision{Reasoning: sel.Reasoning, Chosen: name, Attempts: attempt}
		if s.userName != "" && strings.EqualFold(name, s.userName) {
			return Pick{Done: true, UserChosen: true}, dec, nil
		}
		p, ok := findEligible(personas, name, state.LastSpeaker)
		if !ok {
			s.logger.Warn("moderator choice matches no eligible persona", "attempt", attempt, "chosen", name)
			continue
		}
		mention.Remove(state, p.FirstName)
		return Pick{Persona: p}, dec, nil
	}

	s.logger.Warn("moderator selection exhausted, falling back to mentions", "attempts", s.attempts)
	pick, dec := s.nextMention(personas, state)
	dec.Reasoning = lastReasoning
	dec.Attempts = s.attempts
	dec.Fallback = true
	return pick, dec, nil
}

// allowed lists the names the moderator may choose from.
func (s *Scheduler) allowed(personas []core.Persona, state *core.RoundState) []string {
	names := make([]string, 0, len(personas)+1)
	for _, p := range personas {
		if p.ID != state.LastSpeaker {
			names = append(names, p.FirstName)
		}
	}
	userBlocked := state.AfterIntros || state.UserSkipped || state.LastSpeaker == core.UserSpeaker
	if s.userName != "" && !userBlocked {
		names = append(names, s.userName)
	}
	return names
}

func allSpoken(personas []core.Persona, state *core.RoundState) bool {
	for _, p := range personas {
		if !state.HasSpoken(p.ID) {
			return false
		}
	}
	return len(personas) > 0
}

// matchAllowed validates a moderator answer case-insensitively, tolerating
// surrounding quotes and punctuation.
func matchAllowed(allowed []string, chosen string) (string, bool) {
	c := strings.Trim(strings.TrimSpace(chosen), `"'.!,`)
	for _, a := range allowed {
		if strings.EqualFold(a, c) {
			return a, true
		}
	}
	return "", false
}

// findEligible resolves name to a persona other than the one with ID
// exclude.
func findEligible(personas []core.Persona, name, exclude string) (core.Persona, bool) {
	for _, p := range personas {
		if p.ID != exclude && strings.EqualFold(p.FirstName, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return core.Persona{}, false
}
