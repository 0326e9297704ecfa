package eval

import (
	"context"

	"github.com/pkg/errors"

	"polecat/game"
	"polecat/policy"
)

// ErrUnavailable wraps every failure of an evaluator backend.
var ErrUnavailable = errors.New("evaluator unavailable")

// Evaluation is the output of an evaluator for one position. Value is the
// expected outcome in [-1, 1] from the side to move.
type Evaluation struct {
	Value  float64             `json:"value"`
	Policy policy.Distribution `json:"policy"`
}

// Evaluator scores positions in batches. Results are returned in input order.
type Evaluator interface {
	Evaluate(ctx context.Context, positions []game.Position) ([]Evaluation, error)
}

// Func adapts a plain function to the Evaluator interface.
type Func func(ctx context.Context, positions []game.Position) ([]Evaluation, error)

func (f Func) Evaluate(ctx context.Context, positions []game.Position) ([]Evaluation, error) {
	return f(ctx, positions)
}

// EvaluateOne evaluates a single position.
func EvaluateOne(ctx context.Context, e Evaluator, pos game.Position) (Evaluation, error) {
	evals, err := e.Evaluate(ctx, []game.Position{pos})
	if err != nil {
		return Evaluation{}, err
	}
	if len(evals) != 1 {
		return Evaluation{}, errors.Wrapf(ErrUnavailable, "expected 1 evaluation, got %d", len(evals))
	}
	return evals[0], nil
}

// Score maps an evaluator value for pos to [0, 1] from one side's perspective.
func Score(pos game.Position, value float64, asWhite bool) float64 {
	if !pos.WhiteToMove() {
		value = -value
	}
	score := (value + 1) / 2
	if !asWhite {
		score = 1 - score
	}
	return score
}
