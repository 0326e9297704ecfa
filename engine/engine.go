package engine

import (
	"context"
	"time"

	"polecat/game"
)

const MaxMoves = 500

// Outcomes in PGN notation.
const (
	WhiteWon   = "1-0"
	BlackWon   = "0-1"
	Drawn      = "1/2-1/2"
	Unfinished = "*"
)

type Record struct {
	Moves    game.Position
	Outcome  string
	Result   float64 // White's score, meaningless when unfinished
	Duration time.Duration
}

type Engine interface {
	// Run plays a game until it is over or the move cap is reached
	Run(ctx context.Context) (Record, error)
}

func outcome(result float64) string {
	switch result {
	case game.Win:
		return WhiteWon
	case game.Loss:
		return BlackWon
	default:
		return Drawn
	}
}
