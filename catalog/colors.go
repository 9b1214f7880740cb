package catalog

import (
	"math/rand"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/makeXnow/BrainTrust-AI/core"
)

// SortByHue returns the palette ordered around the hue wheel. Distances
// between colors are measured as steps around this ring.
func SortByHue(palette []core.Color) []core.Color {
	ring := append([]core.Color(nil), palette...)
	hue := func(c core.Color) float64 {
		col, err := colorful.Hex(c.Hex)
		if err != nil {
			return 0
		}
		h, _, _ := col.Hsv()
		return h
	}
	sort.SliceStable(ring, func(i, j int) bool { return hue(ring[i]) < hue(ring[j]) })
	return ring
}

// RingDistance is the cyclic distance between positions a and b on a ring of size n.
func RingDistance(a, b, n int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if n-d < d {
		return n - d
	}
	return d
}

// AssignColors picks n colors by greedy max-min spacing: the first color is
// random, then each next color is the unused one whose minimum ring distance
// to the colors already chosen is largest, ties broken at random. When n
// exceeds the palette size the assignment order repeats.
func AssignColors(palette []core.Color, n int, rng *rand.Rand) []core.Color {
	if n <= 0 || len(palette) == 0 {
		return nil
	}
	ring := SortByHue(palette)
	size := len(ring)

	order := make([]int, 0, size)
	used := make([]bool, size)
	first := rng.Intn(size)
	order = append(order, first)
	used[first] = true

	for len(order) < min(n, size) {
		best := -1
		var ties []int
		for i := 0; i < size; i++ {
			if used[i] {
				continue
			}
			nearest := size
			for _, j := range order {
				nearest = min(nearest, RingDistance(i, j, size))
			}
			switch {
			case nearest > best:
				best = nearest
				ties = []int{i}
			case nearest == best:
				ties = append(ties, i)
			}
		}
		pick := ties[rng.Intn(len(ties))]
		order = append(order, pick)
		used[pick] = true
	}

	out := make([]core.Color, n)
	for i := range out {
		out[i] = ring[order[i%len(order)]]
	}
	return out
}
