package searcher

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"polecat/eval"
	"polecat/game"
	"polecat/policy"
)

// Blunder is a one-ply expectimax that looks for moves whose likely
// replies, as predicted by the weak evaluator, are mistakes. Positions that
// are already won go to a deterministic fallback searcher.
type Blunder struct {
	settings
	oracle game.Oracle
	strong eval.Evaluator
	weak   eval.Evaluator
}

func NewBlunder(oracle game.Oracle, strong, weak eval.Evaluator, options ...Option) *Blunder {
	return &Blunder{
		settings: newSettings(options),
		oracle:   oracle,
		strong:   strong,
		weak:     weak,
	}
}

func (b *Blunder) FindMove(ctx context.Context, pos game.Position) (game.Move, error) {
	if len(pos) == 0 && b.opening != "" {
		return b.opening, nil
	}

	s := newSearch(b.settings, b.oracle, b.strong, b.weak, pos)
	s.metrics.Start("blunder")

	terminal, err := s.isTerminal(pos)
	if err != nil {
		return "", err
	}
	if terminal {
		return "", errors.Wrapf(ErrNoMove, "game over at %q", pos.Key())
	}

	current, err := s.heuristic(ctx, pos)
	if err != nil {
		return "", err
	}
	if current > s.confidence && s.fallback != nil {
		log.Debug().Msgf("value %.3f above %.2f, deferring to fallback", current, s.confidence)
		move, err := s.fallback.FindMove(ctx, pos)
		if err != nil {
			return "", errors.WithMessage(err, "fallback")
		}
		s.complete("blunder", 0, move)
		return move, nil
	}

	t := newTree(pos)
	moves, err := s.candidateMoves(ctx, pos, false)
	if err != nil {
		return "", err
	}
	if len(moves) == 0 {
		return "", errors.Wrapf(ErrNoMove, "no candidate moves at %q", pos.Key())
	}
	t.expand(rootNode, policy.Uniform(moves, 1.0))
	children := t.nodes[rootNode].children

	if err := s.expandReplies(ctx, t, children); err != nil {
		return "", err
	}
	if err := s.valueReplies(ctx, t, children); err != nil {
		return "", err
	}

	best := children[0]
	for _, child := range children[1:] {
		if t.nodes[child].total > t.nodes[best].total {
			best = child
		}
	}

	move := t.position(best).Last()
	s.complete("blunder", t.size(), move)
	return move, nil
}

// expandReplies gives every non-terminal candidate its opponent replies from
// a single weak evaluator call. Terminal candidates are scored on the spot,
// a win becoming ForcedWin.
func (s *search) expandReplies(ctx context.Context, t *tree, children []nodeID) error {
	var positions []game.Position
	var open []nodeID
	for _, child := range children {
		pos := t.position(child)
		terminal, err := s.isTerminal(pos)
		if err != nil {
			return err
		}
		if !terminal {
			positions = append(positions, pos)
			open = append(open, child)
			continue
		}

		result, err := s.result(pos)
		if err != nil {
			return err
		}
		if result >= game.Win {
			result = ForcedWin
		}
		t.nodes[child].total = result
	}

	if len(open) == 0 {
		return nil
	}
	evals, err := s.evaluate(ctx, s.weak, positions)
	if err != nil {
		return errors.WithMessage(err, "opponent policy")
	}
	for j, child := range open {
		t.expand(child, s.opponentPolicy(positions[j], evals[j].Policy))
	}
	return nil
}

// valueReplies adds value times probability of each reply to its parent.
// Non-terminal replies share one strong evaluator call.
func (s *search) valueReplies(ctx context.Context, t *tree, children []nodeID) error {
	var positions []game.Position
	var pending []nodeID
	for _, child := range children {
		for _, reply := range t.nodes[child].children {
			pos := t.position(reply)
			terminal, err := s.isTerminal(pos)
			if err != nil {
				return err
			}
			if !terminal {
				positions = append(positions, pos)
				pending = append(pending, reply)
				continue
			}
			result, err := s.result(pos)
			if err != nil {
				return err
			}
			s.credit(t, reply, result)
		}
	}

	if len(pending) == 0 {
		return nil
	}
	evals, err := s.evaluate(ctx, s.strong, positions)
	if err != nil {
		return errors.WithMessage(err, "reply values")
	}
	for j, reply := range pending {
		s.credit(t, reply, eval.Score(positions[j], evals[j].Value, s.asWhite))
	}
	return nil
}

func (s *search) credit(t *tree, reply nodeID, value float64) {
	n := &t.nodes[reply]
	n.total = value
	t.nodes[n.parent].total += value * n.probability
}
