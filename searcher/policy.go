package searcher

import (
	"context"

	"github.com/pkg/errors"

	"polecat/eval"
	"polecat/game"
)

// Greedy plays the strong evaluator's most probable move.
type Greedy struct {
	strong eval.Evaluator
}

func NewGreedy(strong eval.Evaluator) *Greedy {
	return &Greedy{strong: strong}
}

func (g *Greedy) FindMove(ctx context.Context, pos game.Position) (game.Move, error) {
	ev, err := eval.EvaluateOne(ctx, g.strong, pos)
	if err != nil {
		return "", err
	}
	best, ok := ev.Policy.Best()
	if !ok {
		return "", errors.Wrapf(ErrNoMove, "empty policy at %q", pos.Key())
	}
	return best.Move, nil
}

// PlayerModel imitates a human opponent by sampling the weak evaluator's
// policy.
type PlayerModel struct {
	settings
	weak eval.Evaluator
}

func NewPlayerModel(weak eval.Evaluator, options ...Option) *PlayerModel {
	return &PlayerModel{
		settings: newSettings(options),
		weak:     weak,
	}
}

func (p *PlayerModel) FindMove(ctx context.Context, pos game.Position) (game.Move, error) {
	ev, err := eval.EvaluateOne(ctx, p.weak, pos)
	if err != nil {
		return "", err
	}
	i, ok := ev.Policy.Sample(p.rng.Float64())
	if !ok {
		return "", errors.Wrapf(ErrNoMove, "empty policy at %q", pos.Key())
	}
	return ev.Policy[i].Move, nil
}
