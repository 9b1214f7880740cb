// Package catalog loads the read-only palette, communication style and topic
// suggestion presets, and implements the fuzzy style lookup and color spacing
// used during persona assembly.
package catalog

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/makeXnow/BrainTrust-AI/core"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

const (
	defaultWordMin       = 10
	defaultWordMax       = 50
	defaultIntroTemplate = "{{.FirstName}} here."
)

// Catalog is the style/palette configuration supplied by the host.
type Catalog struct {
	Palette     []core.Color              `yaml:"palette"`
	Styles      []core.CommunicationStyle `yaml:"styles"`
	Suggestions []string                  `yaml:"suggestions"`
}

// Default returns a fresh copy of the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes, validates and normalizes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) normalize() error {
	if len(c.Palette) == 0 {
		return fmt.Errorf("catalog: palette is empty")
	}
	if len(c.Styles) == 0 {
		return fmt.Errorf("catalog: no communication styles")
	}
	for i, col := range c.Palette {
		if _, err := colorful.Hex(col.Hex); err != nil {
			return fmt.Errorf("catalog: palette color %q: %w", col.Name, err)
		}
		if col.Name == "" {
			c.Palette[i].Name = col.Hex
		}
	}
	seen := map[string]bool{}
	for i := range c.Styles {
		s := &c.Styles[i]
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return fmt.Errorf("catalog: style %d has no name", i)
		}
		if s.ID == "" {
			s.ID = slug(s.Name)
		}
		if seen[s.ID] {
			return fmt.Errorf("catalog: duplicate style id %q", s.ID)
		}
		seen[s.ID] = true
		if s.WordMin <= 0 {
			s.WordMin = defaultWordMin
		}
		if s.WordMax < s.WordMin {
			s.WordMax = max(defaultWordMax, s.WordMin)
		}
		if strings.TrimSpace(s.IntroTemplate) == "" {
			s.IntroTemplate = defaultIntroTemplate
		}
	}
	return nil
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// StyleNames returns the style names in catalog order.
func (c *Catalog) StyleNames() []string {
	names := make([]string, len(c.Styles))
	for i, s := range c.Styles {
		names[i] = s.Name
	}
	return names
}

// DescribeStyles renders the style list for the batched persona prompt.
func (c *Catalog) DescribeStyles() string {
	var b strings.Builder
	for _, s := range c.Styles {
		fmt.Fprintf(&b, "- %s: %s (%d-%d words)\n", s.Name, s.Description, s.WordMin, s.WordMax)
	}
	return strings.TrimRight(b.String(), "\n")
}

// MatchStyle maps a model-supplied style name back to a catalog entry: exact
// match, then case-insensitive match, then substring match in either
// direction.
func (c *Catalog) MatchStyle(name string) (core.CommunicationStyle, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.CommunicationStyle{}, false
	}
	for _, s := range c.Styles {
		if s.Name == name {
			return s, true
		}
	}
	lower := strings.ToLower(name)
	for _, s := range c.Styles {
		if strings.ToLower(s.Name) == lower || s.ID == lower {
			return s, true
		}
	}
	for _, s := range c.Styles {
		sl := strings.ToLower(s.Name)
		if strings.Contains(sl, lower) || strings.Contains(lower, sl) {
			return s, true
		}
	}
	return core.CommunicationStyle{}, false
}

// RandomSuggestions returns up to n distinct topic suggestions.
func (c *Catalog) RandomSuggestions(n int, rng *rand.Rand) []string {
	if n > len(c.Suggestions) {
		n = len(c.Suggestions)
	}
	if n <= 0 {
		return nil
	}
	idx := rng.Perm(len(c.Suggestions))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = c.Suggestions[j]
	}
	return out
}
