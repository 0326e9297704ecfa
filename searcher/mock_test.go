package searcher

import (
	"context"

	"github.com/pkg/errors"

	"polecat/eval"
	"polecat/game"
	"polecat/policy"
)

// mockOracle is a scripted game. Positions missing from moves have no
// legal moves; positions in results are over.
type mockOracle struct {
	moves   map[string][]game.Move
	results map[string]float64 // White's result
}

func (o *mockOracle) IsTerminal(pos game.Position) (bool, error) {
	_, ok := o.results[pos.Key()]
	return ok, nil
}

func (o *mockOracle) Result(pos game.Position, asWhite bool) (float64, error) {
	result, ok := o.results[pos.Key()]
	if !ok {
		return 0, errors.New("not terminal")
	}
	if !asWhite {
		result = 1 - result
	}
	return result, nil
}

func (o *mockOracle) LegalMoves(pos game.Position) ([]game.Move, error) {
	return o.moves[pos.Key()], nil
}

// mockEvaluator counts calls and answers from maps keyed by position.
// Unknown positions get value 0 and an empty policy.
type mockEvaluator struct {
	calls     int
	positions int
	values    map[string]float64
	policies  map[string]policy.Distribution
	policyFn  func(pos game.Position) policy.Distribution
	err       error
}

func (e *mockEvaluator) Evaluate(ctx context.Context, positions []game.Position) ([]eval.Evaluation, error) {
	e.calls++
	e.positions += len(positions)
	if e.err != nil {
		return nil, e.err
	}
	evals := make([]eval.Evaluation, len(positions))
	for i, pos := range positions {
		evals[i].Value = e.values[pos.Key()]
		if e.policyFn != nil {
			evals[i].Policy = e.policyFn(pos)
		} else {
			evals[i].Policy = e.policies[pos.Key()]
		}
	}
	return evals, nil
}

// legalPolicy spreads probability evenly over the oracle's legal moves.
func legalPolicy(oracle game.Oracle) func(pos game.Position) policy.Distribution {
	return func(pos game.Position) policy.Distribution {
		moves, err := oracle.LegalMoves(pos)
		if err != nil || len(moves) == 0 {
			return nil
		}
		return policy.Uniform(moves, 1.0/float64(len(moves)))
	}
}

type mockSearcher struct {
	move  game.Move
	calls int
}

func (m *mockSearcher) FindMove(ctx context.Context, pos game.Position) (game.Move, error) {
	m.calls++
	return m.move, nil
}

// scholarsMate is white to move with h5f7 mating.
var scholarsMate = game.NewPosition("e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6")
