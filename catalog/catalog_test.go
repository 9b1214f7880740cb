package catalog

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Len(t, c.Palette, 8)
	assert.NotEmpty(t, c.Styles)
	assert.NotEmpty(t, c.Suggestions)
	for _, s := range c.Styles {
		assert.NotEmpty(t, s.ID)
		assert.LessOrEqual(t, s.WordMin, s.WordMax)
	}
	assert.Contains(t, c.DescribeStyles(), "Punchy and direct")
}

func TestParse_NormalizesAndValidates(t *testing.T) {
	c, err := Parse([]byte(`
palette:
  - { hex: "#ff0000" }
styles:
  - name: Calm Voice
    wordMax: 3
`))
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", c.Palette[0].Name)
	s := c.Styles[0]
	assert.Equal(t, "calm-voice", s.ID)
	assert.Equal(t, 10, s.WordMin)
	assert.Equal(t, 50, s.WordMax)
	assert.Equal(t, "{{.FirstName}} here.", s.IntroTemplate)

	_, err = Parse([]byte("palette: []\nstyles: [{name: x}]"))
	assert.Error(t, err)

	_, err = Parse([]byte("palette: [{name: bad, hex: nothex}]\nstyles: [{name: x}]"))
	assert.Error(t, err)

	_, err = Parse([]byte("palette: [{hex: '#000000'}]\nstyles: [{name: A b}, {name: a-b}]"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultYAML, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().StyleNames(), c.StyleNames())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMatchStyle(t *testing.T) {
	c := Default()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Punchy and direct", "Punchy and direct", true},
		{"punchy AND direct", "Punchy and direct", true},
		{"Punchy", "Punchy and direct", true},
		{"A warm storyteller with anecdotes", "Warm storyteller", true},
		{"academic", "Measured and academic", true},
		{"", "", false},
		{"Interpretive dance", "", false},
	}
	for _, tt := range tests {
		got, ok := c.MatchStyle(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got.Name, tt.in)
	}
}

func TestRandomSuggestions(t *testing.T) {
	c := Default()
	rng := rand.New(rand.NewSource(1))

	got := c.RandomSuggestions(4, rng)
	assert.Len(t, got, 4)
	seen := map[string]bool{}
	for _, s := range got {
		assert.False(t, seen[s])
		seen[s] = true
	}
	assert.Len(t, c.RandomSuggestions(1000, rng), len(c.Suggestions))
	assert.Nil(t, c.RandomSuggestions(0, rng))
}

func ringIndex(ring []core.Color, c core.Color) int {
	for i, r := range ring {
		if r == c {
			return i
		}
	}
	return -1
}

func TestAssignColors_MaxMinSpacing(t *testing.T) {
	palette := Default().Palette
	ring := SortByHue(palette)
	size := len(ring)

	for seed := int64(0); seed < 20; seed++ {
		for n := 2; n <= size; n++ {
			colors := AssignColors(palette, n, rand.New(rand.NewSource(seed)))
			require.Len(t, colors, n)

			minDist := size
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					assert.NotEqual(t, colors[i], colors[j])
					d := RingDistance(ringIndex(ring, colors[i]), ringIndex(ring, colors[j]), size)
					minDist = min(minDist, d)
				}
			}
			assert.Equal(t, size/n, minDist, "seed=%d n=%d", seed, n)
		}
	}
}

func TestAssignColors_Edges(t *testing.T) {
	palette := Default().Palette
	rng := rand.New(rand.NewSource(3))

	assert.Nil(t, AssignColors(palette, 0, rng))
	assert.Nil(t, AssignColors(nil, 3, rng))

	over := AssignColors(palette, 10, rng)
	assert.Len(t, over, 10)
	assert.Equal(t, over[0], over[8])
}

func TestSortByHue(t *testing.T) {
	ring := SortByHue(Default().Palette)
	assert.Equal(t, "orange", ring[0].Name)
	assert.Equal(t, "rose", ring[len(ring)-1].Name)
	assert.Equal(t, 1, RingDistance(0, 7, 8))
	assert.Equal(t, 4, RingDistance(2, 6, 8))
}
