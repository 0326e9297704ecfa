package searcher

import (
	"io"
	"time"

	"golang.org/x/exp/rand"

	"polecat/game"
)

type Option func(s *settings)

type settings struct {
	nodes          int
	depth          int
	tendrils       int
	ownCutoff      float64
	opponentCutoff float64
	positionCutoff float64
	aggressive     bool
	confidence     float64
	opening        game.Move
	rng            *rand.Rand
	metrics        Collector
	dot            io.Writer
	fallback       Searcher
}

func defaultSettings() settings {
	return settings{ // Default values
		nodes:          2000,
		depth:          4,
		tendrils:       Tendrils,
		ownCutoff:      0.01,
		opponentCutoff: 0.02,
		positionCutoff: 0.01,
		confidence:     0.9,
		opening:        "e2e4",
		rng:            rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		metrics:        NewDummyCollector(),
	}
}

func newSettings(options []Option) settings {
	s := defaultSettings()
	for _, option := range options {
		option(&s)
	}
	return s
}

// WithNodes sets the number of leaf visits a tree search aims for.
func WithNodes(nodes int) Option {
	return func(s *settings) {
		if nodes >= 0 {
			s.nodes = nodes
		}
	}
}

func WithDepth(depth int) Option {
	return func(s *settings) {
		s.depth = depth
	}
}

func WithTendrils(tendrils int) Option {
	return func(s *settings) {
		if tendrils > 0 {
			s.tendrils = tendrils
		}
	}
}

// WithOwnCutoff culls the engine's candidate moves by strong policy. A
// cutoff of 0 searches every legal move.
func WithOwnCutoff(cutoff float64) Option {
	return func(s *settings) {
		if cutoff >= 0 {
			s.ownCutoff = cutoff
		}
	}
}

func WithOpponentCutoff(cutoff float64) Option {
	return func(s *settings) {
		if cutoff >= 0 {
			s.opponentCutoff = cutoff
		}
	}
}

// WithPositionCutoff sets the reachability below which expectimax does not
// create a node.
func WithPositionCutoff(cutoff float64) Option {
	return func(s *settings) {
		if cutoff >= 0 {
			s.positionCutoff = cutoff
		}
	}
}

func WithAggression(aggressive bool) Option {
	return func(s *settings) {
		s.aggressive = aggressive
	}
}

// WithConfidence sets the value above which the blunder search hands the
// position to its fallback searcher.
func WithConfidence(confidence float64) Option {
	return func(s *settings) {
		s.confidence = confidence
	}
}

func WithOpening(move game.Move) Option {
	return func(s *settings) {
		s.opening = move
	}
}

func WithFallback(fallback Searcher) Option {
	return func(s *settings) {
		s.fallback = fallback
	}
}

func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.rng = rand.New(rand.NewSource(uint64(seed)))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(s *settings) {
		if rng != nil {
			s.rng = rng
		}
	}
}

func WithMetrics(collector Collector) Option {
	return func(s *settings) {
		if collector == nil {
			collector = NewCollector()
		}
		s.metrics = collector
	}
}

// WithTreeDump writes the final search tree to w in DOT format.
func WithTreeDump(w io.Writer) Option {
	return func(s *settings) {
		s.dot = w
	}
}
