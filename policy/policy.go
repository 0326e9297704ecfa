package policy

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"polecat/game"
)

// ErrExhausted is returned when a cutoff removes every entry of a distribution.
var ErrExhausted = errors.New("distribution exhausted by cutoff")

// Entry pairs a move with its probability.
type Entry struct {
	Move        game.Move `json:"move"`
	Probability float64   `json:"probability"`
}

// Distribution is an ordered move distribution. Order is significant: ties in
// every consumer are broken by position in the slice.
type Distribution []Entry

// Uniform assigns probability p to every move.
func Uniform(moves []game.Move, p float64) Distribution {
	d := make(Distribution, len(moves))
	for i, move := range moves {
		d[i] = Entry{Move: move, Probability: p}
	}
	return d
}

func (d Distribution) Moves() []game.Move {
	moves := make([]game.Move, len(d))
	for i, e := range d {
		moves[i] = e.Move
	}
	return moves
}

func (d Distribution) Probabilities() []float64 {
	ps := make([]float64, len(d))
	for i, e := range d {
		ps[i] = e.Probability
	}
	return ps
}

func (d Distribution) Sum() float64 {
	return floats.Sum(d.Probabilities())
}

// Simplify drops every entry below cutoff and renormalizes the survivors so
// they sum to one. The input is not modified.
func (d Distribution) Simplify(cutoff float64) (Distribution, error) {
	kept := make(Distribution, 0, len(d))
	for _, e := range d {
		if e.Probability >= cutoff {
			kept = append(kept, e)
		}
	}

	total := kept.Sum()
	if len(kept) == 0 || total <= 0 {
		return nil, errors.Wrapf(ErrExhausted, "cutoff %g over %d entries", cutoff, len(d))
	}

	for i := range kept {
		kept[i].Probability /= total
	}
	return kept, nil
}

// SortDescending returns a copy ordered by decreasing probability. Equal
// probabilities keep their original order.
func (d Distribution) SortDescending() Distribution {
	sorted := make(Distribution, len(d))
	copy(sorted, d)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Probability > sorted[j].Probability
	})
	return sorted
}

// Best returns the first entry with the highest probability.
func (d Distribution) Best() (Entry, bool) {
	if len(d) == 0 {
		return Entry{}, false
	}
	best := d[0]
	for _, e := range d[1:] {
		if e.Probability > best.Probability {
			best = e
		}
	}
	return best, true
}

// Sample walks the distribution subtracting each probability from u until u
// falls below an entry's probability. Floating point drift that leaves no
// entry selected falls back to the first entry.
func (d Distribution) Sample(u float64) (int, bool) {
	if len(d) == 0 {
		return -1, false
	}
	for i, e := range d {
		if u < e.Probability {
			return i, true
		}
		u -= e.Probability
	}
	return 0, true
}
