// Package settings supplies the runtime tunables of the discussion engine:
// model identifiers, thresholds, banned tokens, prompts and pacing. The core
// reads a fresh Settings value from a Provider on every call and never
// mutates it.
package settings

import (
	"strings"
	"sync"
	"time"

	"github.com/makeXnow/BrainTrust-AI/core"
)

const (
	// DefaultUserName is shown for the human participant when none is configured.
	DefaultUserName = "You"

	MinAgents = 2
	MaxAgents = 8
)

// Pacing controls the deliberate display delays of the assembly pipeline and
// round runner. Zero values disable a delay.
type Pacing struct {
	IntroPreDelay time.Duration `yaml:"introPreDelay"`
	JoiningMin    time.Duration `yaml:"joiningMin"`
	PreThink      time.Duration `yaml:"preThink"`
	ThinkingMin   time.Duration `yaml:"thinkingMin"`
	PerWord       time.Duration `yaml:"perWord"`
	ReadingBase   time.Duration `yaml:"readingBase"`
	ReadingCap    time.Duration `yaml:"readingCap"`
	ReadingBuffer time.Duration `yaml:"readingBuffer"`
	// IntroPoll is the fallback poll interval while introductions display.
	IntroPoll time.Duration `yaml:"introPoll"`
}

// DefaultPacing mirrors the reading speed of the host UI's typing animation.
func DefaultPacing() Pacing {
	return Pacing{
		IntroPreDelay: 400 * time.Millisecond,
		JoiningMin:    1200 * time.Millisecond,
		PreThink:      500 * time.Millisecond,
		ThinkingMin:   1500 * time.Millisecond,
		PerWord:       100 * time.Millisecond,
		ReadingBase:   300 * time.Millisecond,
		ReadingCap:    30 * time.Second,
		ReadingBuffer: time.Second,
		IntroPoll:     100 * time.Millisecond,
	}
}

// ReadingTime estimates how long text takes to display: one PerWord tick per
// whitespace-separated token plus ReadingBase, capped at ReadingCap, plus
// ReadingBuffer.
func (p Pacing) ReadingTime(text string) time.Duration {
	d := time.Duration(len(strings.Fields(text)))*p.PerWord + p.ReadingBase
	if p.ReadingCap > 0 && d > p.ReadingCap {
		d = p.ReadingCap
	}
	return d + p.ReadingBuffer
}

// Settings is one immutable snapshot of configuration.
type Settings struct {
	UserName   string    `yaml:"userName"`
	TextModel  string    `yaml:"textModel"`
	ImageModel string    `yaml:"imageModel"`
	AgentCount int       `yaml:"agentCount"`
	Mode       core.Mode `yaml:"mode"`

	// InterferenceThreshold is the number of consecutive agent turns after
	// which the next persona is nudged to address the user. 0 disables it.
	InterferenceThreshold int `yaml:"interferenceThreshold"`
	// ModeratorAttempts bounds moderator selection retries.
	ModeratorAttempts int `yaml:"moderatorAttempts"`
	// MaxTurnsPerRound stops a round after that many persona turns. 0 means unlimited.
	MaxTurnsPerRound int `yaml:"maxTurnsPerRound"`

	SafetyEnabled bool `yaml:"safetyEnabled"`
	// BannedWords is a newline-delimited token list.
	BannedWords string `yaml:"bannedWords"`

	SuggestReply  bool `yaml:"suggestReply"`
	AvatarEnabled bool `yaml:"avatarEnabled"`

	TextTimeout  time.Duration `yaml:"textTimeout"`
	ImageTimeout time.Duration `yaml:"imageTimeout"`

	Prompts Prompts `yaml:"prompts"`
	Pacing  Pacing  `yaml:"pacing"`
}

// Defaults returns the built-in configuration.
func Defaults() Settings {
	return Settings{
		TextModel:             "gpt-4o-mini",
		ImageModel:            "dall-e-3",
		AgentCount:            3,
		Mode:                  core.ModeRandom,
		InterferenceThreshold: 4,
		ModeratorAttempts:     3,
		SafetyEnabled:         false,
		SuggestReply:          true,
		AvatarEnabled:         true,
		TextTimeout:           120 * time.Second,
		ImageTimeout:          90 * time.Second,
		Prompts:               DefaultPrompts(),
		Pacing:                DefaultPacing(),
	}
}

// DisplayUserName returns the configured user name or DefaultUserName.
func (s Settings) DisplayUserName() string {
	if n := strings.TrimSpace(s.UserName); n != "" {
		return n
	}
	return DefaultUserName
}

// Agents returns AgentCount clamped to [MinAgents, MaxAgents].
func (s Settings) Agents() int {
	return min(max(s.AgentCount, MinAgents), MaxAgents)
}

// BannedTokens splits BannedWords into trimmed, non-empty tokens.
func (s Settings) BannedTokens() []string {
	var out []string
	for _, line := range strings.Split(s.BannedWords, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Provider supplies the current settings. Implementations must be safe for
// concurrent use.
type Provider interface {
	Settings() Settings
}

// Static is an in-memory Provider.
type Static struct {
	mu sync.RWMutex
	s  Settings
}

// NewStatic returns a Provider serving s.
func NewStatic(s Settings) *Static {
	return &Static{s: s}
}

// Settings implements Provider.
func (p *Static) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.s
}

// Update applies fn to the stored settings.
func (p *Static) Update(fn func(s *Settings)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.s)
}

// Overlay is a Provider that applies fn to every snapshot of a base provider.
type Overlay struct {
	base Provider
	fn   func(s *Settings)
}

// NewOverlay wraps base. fn must not retain s.
func NewOverlay(base Provider, fn func(s *Settings)) *Overlay {
	return &Overlay{base: base, fn: fn}
}

// Settings implements Provider.
func (o *Overlay) Settings() Settings {
	s := o.base.Settings()
	if o.fn != nil {
		o.fn(&s)
	}
	return s
}
