// Package deck produces shuffled sequences of unique numbered cards.
package deck

import (
	"errors"
	"math/rand/v2"
)

var ErrEmptyRange = errors.New("deck range is empty")

// Generator shuffles the closed range [Min, Max].
type Generator struct {
	Min  int
	Max  int
	Rand *rand.Rand // nil uses the global source
}

func New(min, max int) Generator {
	return Generator{Min: min, Max: max}
}

// Size is the number of cards a fresh deck holds.
func (g Generator) Size() int {
	if g.Max < g.Min {
		return 0
	}
	return g.Max - g.Min + 1
}

// Contains reports whether v lies inside the deck range.
func (g Generator) Contains(v int) bool {
	return v >= g.Min && v <= g.Max
}

// Shuffled returns every value of the range exactly once in uniformly random order.
func (g Generator) Shuffled() ([]int, error) {
	n := g.Size()
	if n == 0 {
		return nil, ErrEmptyRange
	}
	cards := make([]int, n)
	for i := range cards {
		cards[i] = g.Min + i
	}
	shuffle := rand.Shuffle
	if g.Rand != nil {
		shuffle = g.Rand.Shuffle
	}
	shuffle(n, func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return cards, nil
}
