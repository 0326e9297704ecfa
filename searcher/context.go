package searcher

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"polecat/eval"
	"polecat/game"
	"polecat/policy"
)

// search is the read-only context shared by every step of one FindMove call.
type search struct {
	settings
	oracle    game.Oracle
	strong    eval.Evaluator
	weak      eval.Evaluator
	root      game.Position
	asWhite   bool
	rootValue float64
}

func newSearch(s settings, oracle game.Oracle, strong, weak eval.Evaluator, root game.Position) *search {
	return &search{
		settings: s,
		oracle:   oracle,
		strong:   strong,
		weak:     weak,
		root:     root,
		asWhite:  root.WhiteToMove(),
	}
}

func (s *search) isOwnMove(pos game.Position) bool {
	return pos.WhiteToMove() == s.asWhite
}

func (s *search) isTerminal(pos game.Position) (bool, error) {
	terminal, err := s.oracle.IsTerminal(pos)
	return terminal, errors.WithMessage(err, "terminal check")
}

func (s *search) result(pos game.Position) (float64, error) {
	result, err := s.oracle.Result(pos, s.asWhite)
	return result, errors.WithMessage(err, "terminal result")
}

func (s *search) evaluate(ctx context.Context, e eval.Evaluator, positions []game.Position) ([]eval.Evaluation, error) {
	s.metrics.AddEvaluation(len(positions))
	evals, err := e.Evaluate(ctx, positions)
	if err != nil {
		return nil, errors.WithMessagef(err, "evaluate %d positions", len(positions))
	}
	if len(evals) != len(positions) {
		return nil, errors.Wrapf(eval.ErrUnavailable, "asked for %d evaluations, got %d", len(positions), len(evals))
	}
	return evals, nil
}

func (s *search) evaluateOne(ctx context.Context, e eval.Evaluator, pos game.Position) (eval.Evaluation, error) {
	evals, err := s.evaluate(ctx, e, []game.Position{pos})
	if err != nil {
		return eval.Evaluation{}, err
	}
	return evals[0], nil
}

// heuristic scores pos in [0, 1] for the engine: the game result when the
// game is over, otherwise the strong evaluator's estimate.
func (s *search) heuristic(ctx context.Context, pos game.Position) (float64, error) {
	terminal, err := s.isTerminal(pos)
	if err != nil {
		return 0, err
	}
	if terminal {
		return s.result(pos)
	}
	ev, err := s.evaluateOne(ctx, s.strong, pos)
	if err != nil {
		return 0, err
	}
	return eval.Score(pos, ev.Value, s.asWhite), nil
}

// candidateMoves lists the moves the engine considers at pos. With a
// positive own cutoff these are the strong policy's surviving moves, in
// descending order when sorted is set. Otherwise every legal move.
func (s *search) candidateMoves(ctx context.Context, pos game.Position, sorted bool) ([]game.Move, error) {
	if s.ownCutoff > 0 {
		ev, err := s.evaluateOne(ctx, s.strong, pos)
		if err != nil {
			return nil, err
		}
		culled, err := ev.Policy.Simplify(s.ownCutoff)
		if err == nil {
			if sorted {
				culled = culled.SortDescending()
			}
			return culled.Moves(), nil
		}
		if !errors.Is(err, policy.ErrExhausted) {
			return nil, err
		}
		log.Warn().Msgf("own cutoff %g left no candidates at %q, using legal moves", s.ownCutoff, pos.Key())
	}

	moves, err := s.oracle.LegalMoves(pos)
	return moves, errors.WithMessage(err, "legal moves")
}

// opponentPolicy culls an opponent distribution, falling back to the full
// renormalized distribution when the cutoff removes everything. The result
// is empty only if the input carries no probability mass.
func (s *search) opponentPolicy(pos game.Position, d policy.Distribution) policy.Distribution {
	culled, err := d.Simplify(s.opponentCutoff)
	if err == nil {
		return culled
	}
	log.Warn().Msgf("opponent cutoff %g exhausted the policy at %q", s.opponentCutoff, pos.Key())
	culled, err = d.Simplify(0)
	if err != nil {
		return nil
	}
	return culled
}

// bestPolicyMove returns the strong evaluator's favourite move at pos.
func (s *search) bestPolicyMove(ctx context.Context, pos game.Position) (game.Move, error) {
	ev, err := s.evaluateOne(ctx, s.strong, pos)
	if err != nil {
		return "", err
	}
	best, ok := ev.Policy.Best()
	if !ok {
		return "", errors.Wrapf(ErrNoMove, "empty policy at %q", pos.Key())
	}
	return best.Move, nil
}

func (s *search) complete(engine string, treeSize int, move game.Move) {
	metric := s.metrics.Complete(treeSize)
	log.Debug().Msgf("%s chose %s after %d iterations, %d evaluator calls, %d nodes in %v",
		engine, move, metric.Iterations, metric.Evaluations, metric.TreeSize, metric.Duration)
}
