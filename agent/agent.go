package agent

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"polecat/config"
	"polecat/eval"
	"polecat/game"
	"polecat/searcher"
	"polecat/uci"
)

// Backends are the collaborators every searcher draws from. UCI may be nil
// when no configured engine needs it.
type Backends struct {
	Oracle game.Oracle
	Strong eval.Evaluator
	Weak   eval.Evaluator
	UCI    searcher.Searcher
}

// Connect builds HTTP evaluator clients and, when needUCI is set, starts
// the UCI engine.
func Connect(cfg config.Config, needUCI bool) (Backends, error) {
	b := Backends{
		Oracle: game.NewChessOracle(),
		Strong: eval.NewClient(cfg.Strong.URL, eval.WithMaxBatch(cfg.Strong.MaxBatch), eval.WithTimeout(cfg.Strong.Timeout)),
		Weak:   eval.NewClient(cfg.Weak.URL, eval.WithMaxBatch(cfg.Weak.MaxBatch), eval.WithTimeout(cfg.Weak.Timeout)),
	}
	if needUCI {
		eng, err := uci.New(cfg.UCI.Path, cfg.UCI.Depth)
		if err != nil {
			return Backends{}, err
		}
		b.UCI = eng
	}
	return b, nil
}

// NeedsUCI reports whether any of the named engines uses the UCI engine.
func NeedsUCI(cfg config.Config, names ...string) bool {
	for _, name := range names {
		switch cfg.Engines[name].Kind {
		case config.KindUCI, config.KindBlunder:
			return true
		}
	}
	return false
}

// New returns the searcher configured under name.
func New(cfg config.Config, name string, b Backends, options ...searcher.Option) (searcher.Searcher, error) {
	e, ok := cfg.Engines[name]
	if !ok {
		return nil, errors.Errorf("unknown engine %q", name)
	}

	options = append([]searcher.Option{
		searcher.WithNodes(e.Nodes),
		searcher.WithDepth(e.Depth),
		searcher.WithOwnCutoff(e.OwnCutoff),
		searcher.WithOpponentCutoff(e.OpponentCutoff),
		searcher.WithPositionCutoff(e.PositionCutoff),
	}, options...)
	if cfg.Seed != 0 {
		options = append(options, searcher.WithSeed(cfg.Seed))
	}

	log.Debug().Msgf("engine %s: %+v", name, e)

	switch e.Kind {
	case config.KindUCT:
		return searcher.NewStochasticUCT(b.Oracle, b.Strong, b.Weak, options...), nil
	case config.KindAggroUCT:
		options = append(options, searcher.WithAggression(true))
		return searcher.NewStochasticUCT(b.Oracle, b.Strong, b.Weak, options...), nil
	case config.KindExpectimax:
		return searcher.NewExpectimax(b.Oracle, b.Strong, b.Weak, options...), nil
	case config.KindBlunder:
		options = append(options, searcher.WithConfidence(e.Confidence), searcher.WithOpening(game.Move(e.Opening)))
		if b.UCI != nil {
			options = append(options, searcher.WithFallback(b.UCI))
		}
		return searcher.NewBlunder(b.Oracle, b.Strong, b.Weak, options...), nil
	case config.KindGreedy:
		return searcher.NewGreedy(b.Strong), nil
	case config.KindPlayer:
		return searcher.NewPlayerModel(b.Weak, options...), nil
	case config.KindUCI:
		if b.UCI == nil {
			return nil, errors.Errorf("engine %q needs a uci engine", name)
		}
		return b.UCI, nil
	default:
		return nil, errors.Errorf("engine %q has unknown kind %q", name, e.Kind)
	}
}
