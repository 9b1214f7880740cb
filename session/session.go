package session

import (
	"context"
	"sync"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/logging"
)

// DefaultDebugLimit bounds the debug ring.
const DefaultDebugLimit = 200

// Options configures a Session.
type Options struct {
	Mode       core.Mode
	DebugLimit int
	Logger     logging.Logger
}

// Session is the single owner of a discussion's State.
type Session struct {
	id         string
	debugLimit int
	logger     logging.Logger

	mu     sync.Mutex
	state  State
	epoch  core.Epoch
	cancel context.CancelFunc

	introsDone chan struct{}
	introsOnce *sync.Once

	roundActive bool
	roundDone   chan struct{}

	subs   map[int]chan State
	nextID int
}

// New creates an idle session.
func New(id string, optFns ...func(o *Options)) *Session {
	opts := Options{Mode: core.ModeRandom, DebugLimit: DefaultDebugLimit, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	s := &Session{
		id:         id,
		debugLimit: opts.DebugLimit,
		logger:     logging.OrNoOp(opts.Logger),
		subs:       map[int]chan State{},
	}
	s.state = State{ID: id, Mode: opts.Mode, Status: core.StatusIdle}
	s.epoch, s.cancel = core.NewEpoch(core.WithRecorder(context.Background(), s), 0)
	s.resetIntrosLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Epoch returns the current generation epoch.
func (s *Session) Epoch() core.Epoch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Advance cancels the current epoch and starts the next one derived from
// parent. The epoch context carries the session as its debug recorder.
//
// When clear is set the discussion returns to idle. Logs, panel, round state,
// suggestion and error are dropped and the introduction signal is re-armed;
// the debug log is kept.
func (s *Session) Advance(parent context.Context, clear bool) core.Epoch {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	s.epoch, s.cancel = core.NewEpoch(core.WithRecorder(parent, s), s.epoch.ID+1)
	s.state.Epoch = s.epoch.ID
	if clear {
		s.state = State{
			ID:     s.id,
			Mode:   s.state.Mode,
			Status: core.StatusIdle,
			Epoch:  s.epoch.ID,
			Debug:  s.state.Debug,
		}
		s.resetIntrosLocked()
	}
	s.publishLocked()
	return s.epoch
}

// Close cancels the current epoch and drops all subscribers.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

// Apply runs fn against the state if ep is still current. Proposals from a
// stale epoch are rejected with core.ErrAborted and never touch the state.
func (s *Session) Apply(ep core.Epoch, fn func(st *State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ep.ID != s.epoch.ID || ep.Err() != nil {
		return core.ErrAborted
	}
	fn(&s.state)
	s.publishLocked()
	return nil
}

// Read runs fn against the current state under the session lock. fn must not
// retain references into st.
func (s *Session) Read(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Subscribe returns a channel receiving the latest snapshot after every
// change. Slow subscribers only see the newest state. The returned func
// unsubscribes.
func (s *Session) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan State, 1)
	s.subs[id] = ch
	ch <- s.state.Clone()
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

func (s *Session) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.state.Clone()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// Record implements core.DebugRecorder. An entry whose id is already present
// replaces it in place; the ring keeps the newest entries.
func (s *Session) Record(e core.DebugEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Debug {
		if s.state.Debug[i].ID == e.ID {
			s.state.Debug[i] = e
			s.publishLocked()
			return
		}
	}
	s.state.Debug = append(s.state.Debug, e)
	if s.debugLimit > 0 && len(s.state.Debug) > s.debugLimit {
		s.state.Debug = append([]core.DebugEntry(nil), s.state.Debug[len(s.state.Debug)-s.debugLimit:]...)
	}
	s.publishLocked()
}

func (s *Session) resetIntrosLocked() {
	s.introsDone = make(chan struct{})
	s.introsOnce = &sync.Once{}
}

// IntrosDone signals that every introduction has been displayed. Calls bound
// to a stale epoch are ignored.
func (s *Session) IntrosDone(ep core.Epoch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ep.ID != s.epoch.ID {
		return
	}
	ch, once := s.introsDone, s.introsOnce
	once.Do(func() { close(ch) })
}

// WaitIntros blocks until introductions are displayed or ctx ends.
func (s *Session) WaitIntros(ctx context.Context) error {
	s.mu.Lock()
	ch := s.introsDone
	s.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return core.ErrAborted
	}
}

// BeginRound claims the single round slot. It returns false when a round is
// already running; otherwise the returned func releases the slot.
func (s *Session) BeginRound() (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roundActive {
		return nil, false
	}
	s.roundActive = true
	done := make(chan struct{})
	s.roundDone = done
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.roundActive = false
			s.mu.Unlock()
			close(done)
		})
	}, true
}

// RoundIdle returns a channel closed once no round is running.
func (s *Session) RoundIdle() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.roundActive {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.roundDone
}
