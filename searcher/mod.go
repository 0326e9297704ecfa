package searcher

import (
	"context"

	"github.com/pkg/errors"

	"polecat/game"
)

// ErrNoMove is returned when a position has no move to play.
var ErrNoMove = errors.New("no move available")

// Searcher picks a move for the side to move in pos.
type Searcher interface {
	FindMove(ctx context.Context, pos game.Position) (game.Move, error)
}

// Hyperparameters

const CExploration = 2.0 // Exploration constant

const Tendrils = 16 // Leaves selected per iteration

const MateBonus = 10.0 // Terminal multiplier in aggressive mode

const ForcedWin = 100.0 // Value of a candidate move that wins on the spot
