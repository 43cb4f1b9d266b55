package simulate

import (
	"math/rand/v2"
)

// weightedCode is a delivery code and its relative frequency.
type weightedCode struct {
	code   string
	weight int
}

// deliveryMix approximates the outcomes of limited overs cricket.
var deliveryMix = []weightedCode{
	{"0", 34},
	{"1", 28},
	{"2", 8},
	{"3", 1},
	{"4", 10},
	{"6", 4},
	{"-1", 4},
	{"-11", 1},
	{"-2", 3},
	{"-21", 1},
	{"-3", 1},
	{"-31", 1},
	{"-4", 1},
	{"-51", 1},
}

// Generator draws delivery codes from a seeded source.
type Generator struct {
	rng   *rand.Rand
	total int
}

// NewGenerator returns a generator; equal seeds give equal sequences.
func NewGenerator(seed uint64) *Generator {
	total := 0
	for _, c := range deliveryMix {
		total += c.weight
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), total: total}
}

// Next returns the code of the next delivery.
func (g *Generator) Next() string {
	n := g.rng.IntN(g.total)
	for _, c := range deliveryMix {
		if n < c.weight {
			return c.code
		}
		n -= c.weight
	}
	return "0"
}

// Chance reports true with probability p.
func (g *Generator) Chance(p float64) bool {
	return p > 0 && g.rng.Float64() < p
}
