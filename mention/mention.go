// Package mention scans generated text for participant names and maintains the
// pending-speaker queue and the user-engagement counter kept in
// core.RoundState.
package mention

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/makeXnow/BrainTrust-AI/core"
)

// Scan returns the names that occur in text as whole words, case-insensitive,
// optionally possessive ("Bob's"), ordered by first occurrence and
// de-duplicated. Returned values are the candidate spellings from names. An
// occurrence inside a longer matching name ("Alex" within "Alex 2") does not
// count.
func Scan(text string, names []string) []string {
	type span struct {
		name       string
		start, end int
	}
	var spans []span
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		for _, loc := range wholeWords(text, name) {
			spans = append(spans, span{name: name, start: loc[0], end: loc[1]})
		}
	}

	type hit struct {
		name string
		pos  int
	}
	var hits []hit
	found := map[string]bool{}
	for _, sp := range spans {
		if found[sp.name] {
			continue
		}
		covered := false
		for _, o := range spans {
			if o.start <= sp.start && sp.end <= o.end && o.end-o.start > sp.end-sp.start {
				covered = true
				break
			}
		}
		if !covered {
			found[sp.name] = true
			hits = append(hits, hit{name: sp.name, pos: sp.start})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// wholeWords returns the locations of name in text that sit on word
// boundaries.
func wholeWords(text, name string) [][]int {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(name) + `(?:'s|’s)?`)
	var out [][]int
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if boundaryBefore(text, loc[0]) && boundaryAfter(text, loc[1]) {
			out = append(out, loc)
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

// Contains reports whether name occurs in text as a whole word.
func Contains(text, name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && len(wholeWords(text, name)) > 0
}

// Tracker applies mention and interference rules to a round state.
type Tracker struct {
	userName  string
	threshold int
}

// NewTracker creates a tracker. An empty userName disables detection of the
// user being addressed; threshold 0 disables interference.
func NewTracker(userName string, threshold int) *Tracker {
	return &Tracker{userName: strings.TrimSpace(userName), threshold: threshold}
}

// ObserveAgent records a persona turn: the counter advances and names
// mentioned in text are appended to the queue in first-occurrence order. The
// speaker is never queued. It reports whether the user was addressed.
func (t *Tracker) ObserveAgent(state *core.RoundState, speaker, text string, personaNames []string) bool {
	state.ConsecutiveAgentCount++
	mentions := Scan(text, t.candidates(personaNames))
	addressed := false
	for _, m := range mentions {
		if t.userName != "" && strings.EqualFold(m, t.userName) {
			addressed = true
		}
		if strings.EqualFold(m, speaker) || queued(state.MentionQueue, m) {
			continue
		}
		state.MentionQueue = append(state.MentionQueue, m)
	}
	Remove(state, speaker)
	return addressed
}

// ObserveUser records a user message: the counter resets and the queue is
// replaced by the personas named in text.
func (t *Tracker) ObserveUser(state *core.RoundState, text string, personaNames []string) {
	state.ConsecutiveAgentCount = 0
	state.MentionQueue = Scan(text, personaNames)
}

// ShouldInterfere reports whether the next persona must be nudged toward the user.
func (t *Tracker) ShouldInterfere(state *core.RoundState) bool {
	return t.threshold > 0 && state.ConsecutiveAgentCount >= t.threshold
}

// Interfere clears the queue to break self-sustaining mention chains and
// restarts the counter.
func (t *Tracker) Interfere(state *core.RoundState) {
	state.MentionQueue = nil
	state.ConsecutiveAgentCount = 0
}

// IsUser reports whether name refers to the human participant.
func (t *Tracker) IsUser(name string) bool {
	return t.userName != "" && strings.EqualFold(strings.TrimSpace(name), t.userName)
}

func (t *Tracker) candidates(personaNames []string) []string {
	if t.userName == "" {
		return personaNames
	}
	return append(append([]string(nil), personaNames...), t.userName)
}

// Remove drops every queue entry equal (case-insensitive) to name.
func Remove(state *core.RoundState, name string) {
	out := state.MentionQueue[:0]
	for _, q := range state.MentionQueue {
		if !strings.EqualFold(q, name) {
			out = append(out, q)
		}
	}
	state.MentionQueue = out
}

func queued(queue []string, name string) bool {
	for _, q := range queue {
		if strings.EqualFold(q, name) {
			return true
		}
	}
	return false
}
