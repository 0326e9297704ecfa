package searcher

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"polecat/eval"
	"polecat/game"
)

// StochasticUCT is a Monte-Carlo tree search whose opponent turns are
// chance nodes sampled from the weak evaluator's policy. Leaves are valued
// by the strong evaluator in one batch per iteration.
type StochasticUCT struct {
	settings
	oracle game.Oracle
	strong eval.Evaluator
	weak   eval.Evaluator
}

func NewStochasticUCT(oracle game.Oracle, strong, weak eval.Evaluator, options ...Option) *StochasticUCT {
	return &StochasticUCT{
		settings: newSettings(options),
		oracle:   oracle,
		strong:   strong,
		weak:     weak,
	}
}

func (u *StochasticUCT) name() string {
	if u.aggressive {
		return "aggressive uct"
	}
	return "stochastic uct"
}

func (u *StochasticUCT) FindMove(ctx context.Context, pos game.Position) (game.Move, error) {
	s := newSearch(u.settings, u.oracle, u.strong, u.weak, pos)
	s.metrics.Start(u.name())

	terminal, err := s.isTerminal(pos)
	if err != nil {
		return "", err
	}
	if terminal {
		return "", errors.Wrapf(ErrNoMove, "game over at %q", pos.Key())
	}

	if s.aggressive {
		if err := s.baseline(ctx); err != nil {
			return "", err
		}
	}

	t := newTree(pos)
	iterations := s.nodes / s.tendrils
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrapf(err, "stopped after %d iterations", i)
		}
		if err := s.iterate(ctx, t); err != nil {
			return "", err
		}
		s.metrics.AddIteration()
	}

	if s.dot != nil {
		if err := writeDot(s.dot, t); err != nil {
			log.Warn().Err(err).Msg("failed to write search tree")
		}
	}

	var move game.Move
	if best := t.bestChild(); best != nilNode {
		move = t.position(best).Last()
	} else {
		log.Warn().Msgf("no visited root child after %d iterations, using best policy move", iterations)
		if move, err = s.bestPolicyMove(ctx, pos); err != nil {
			return "", err
		}
	}

	s.complete(u.name(), t.size(), move)
	return move, nil
}

// iterate runs one round of selection, expansion, rollout and backup over a
// batch of tendrils.
func (s *search) iterate(ctx context.Context, t *tree) error {
	leaves := s.selectLeaves(t)
	s.metrics.AddLeaves(len(leaves))

	// The node rolled out for a leaf may be the child chosen right after
	// expanding it.
	targets := make([]nodeID, len(leaves))
	copy(targets, leaves)

	var chance []int
	for i, leaf := range leaves {
		pos := t.position(leaf)
		terminal, err := s.isTerminal(pos)
		if err != nil {
			return err
		}
		if terminal || t.nodes[leaf].visits <= 0 {
			continue
		}

		if s.isOwnMove(pos) {
			child, err := s.expandOwn(ctx, t, leaf)
			if err != nil {
				return err
			}
			targets[i] = child
		} else {
			chance = append(chance, i)
		}
	}

	if err := s.expandChance(ctx, t, leaves, targets, chance); err != nil {
		return err
	}

	values, err := s.rollout(ctx, t, targets)
	if err != nil {
		return err
	}

	for i, target := range targets {
		t.backup(target, values[i])
	}
	return nil
}

// selectLeaves descends once per tendril and drops repeated leaves,
// keeping first-seen order.
func (s *search) selectLeaves(t *tree) []nodeID {
	seen := make(map[nodeID]bool, s.tendrils)
	leaves := make([]nodeID, 0, s.tendrils)
	for i := 0; i < s.tendrils; i++ {
		leaf := t.descend(s.asWhite, s.rng)
		if seen[leaf] {
			continue
		}
		seen[leaf] = true
		leaves = append(leaves, leaf)
	}
	return leaves
}

// rollout values every target from the engine's perspective. Terminal
// targets use the game result, the rest share one strong evaluator call.
func (s *search) rollout(ctx context.Context, t *tree, targets []nodeID) ([]float64, error) {
	values := make([]float64, len(targets))

	var pending []game.Position
	var indices []int
	for i, target := range targets {
		pos := t.position(target)
		terminal, err := s.isTerminal(pos)
		if err != nil {
			return nil, err
		}
		if !terminal {
			pending = append(pending, pos)
			indices = append(indices, i)
			continue
		}

		result, err := s.result(pos)
		if err != nil {
			return nil, err
		}
		if s.aggressive {
			result *= MateBonus
		}
		values[i] = result
	}

	if len(pending) == 0 {
		return values, nil
	}

	evals, err := s.evaluate(ctx, s.strong, pending)
	if err != nil {
		return nil, errors.WithMessage(err, "rollout")
	}
	for j, ev := range evals {
		pos := pending[j]
		value := eval.Score(pos, ev.Value, s.asWhite)
		if s.aggressive {
			value = s.rescale(pos, value)
		}
		values[indices[j]] = value
	}
	return values, nil
}

// baseline stores the strong value of the root from the engine's side, the
// reference every aggressive rollout is measured against.
func (s *search) baseline(ctx context.Context) error {
	ev, err := s.evaluateOne(ctx, s.strong, s.root)
	if err != nil {
		return errors.WithMessage(err, "root baseline")
	}
	s.rootValue = eval.Score(s.root, ev.Value, s.asWhite)
	return nil
}

// rescale turns a value into gain over the root per full move.
func (s *search) rescale(pos game.Position, value float64) float64 {
	plies := len(pos) - len(s.root)
	if plies == 0 {
		return value
	}
	return (value - s.rootValue) / (float64(plies) / 2.0)
}
