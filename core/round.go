package core

// UserSpeaker is the speaker id recorded when the human participant is
// selected or spoke last.
const UserSpeaker = "user"

// Decision records why the scheduler picked a speaker.
type Decision struct {
	Reasoning map[string]string `json:"reasoning,omitempty"`
	Chosen    string            `json:"chosen"`
	Attempts  int               `json:"attempts"`
	Fallback  bool              `json:"fallback"`
	// Interference is set when the user-engagement nudge was injected.
	Interference bool `json:"interference"`
}

// RoundState is the scheduler bookkeeping for the active round.
type RoundState struct {
	Order                 []string  `json:"roundOrder"`
	AlreadySpoken         []string  `json:"alreadySpoken"`
	MentionQueue          []string  `json:"mentionStack"`
	ConsecutiveAgentCount int       `json:"consecutiveAgentCount"`
	LastDecision          *Decision `json:"lastDecision,omitempty"`

	// LastSpeaker is a persona id, UserSpeaker, or empty at session start.
	LastSpeaker string `json:"lastSpeaker"`
	// AfterIntros is true until the first persona turn following introductions.
	AfterIntros bool `json:"afterIntros"`
	// UserSkipped is true when the round started without a user message.
	UserSkipped bool `json:"userSkipped"`
	// Turns counts persona turns in this round.
	Turns int `json:"turns"`
}

// HasSpoken reports whether id already took a turn this round.
func (r *RoundState) HasSpoken(id string) bool {
	for _, s := range r.AlreadySpoken {
		if s == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (r RoundState) Clone() RoundState {
	c := r
	c.Order = append([]string(nil), r.Order...)
	c.AlreadySpoken = append([]string(nil), r.AlreadySpoken...)
	c.MentionQueue = append([]string(nil), r.MentionQueue...)
	if r.LastDecision != nil {
		d := *r.LastDecision
		if r.LastDecision.Reasoning != nil {
			d.Reasoning = make(map[string]string, len(r.LastDecision.Reasoning))
			for k, v := range r.LastDecision.Reasoning {
				d.Reasoning[k] = v
			}
		}
		c.LastDecision = &d
	}
	return c
}
