package game

import "strings"

// Move is a move in long algebraic (UCI) notation, e.g. "e2e4" or "e7e8q".
type Move string

// Position is the ordered list of moves played from the start position.
// Positions are values: Append never mutates the receiver.
type Position []Move

// NewPosition builds a position from UCI strings.
func NewPosition(moves ...string) Position {
	pos := make(Position, len(moves))
	for i, m := range moves {
		pos[i] = Move(m)
	}
	return pos
}

// Append returns a new position with move played after p.
func (p Position) Append(move Move) Position {
	next := make(Position, len(p)+1)
	copy(next, p)
	next[len(p)] = move
	return next
}

// WhiteToMove reports whether white is the side to move.
func (p Position) WhiteToMove() bool {
	return len(p)%2 == 0
}

// Last returns the most recently played move, or "" for the start position.
func (p Position) Last() Move {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Key is a string form of the position usable as a map key.
func (p Position) Key() string {
	return strings.Join(p.Strings(), " ")
}

func (p Position) Strings() []string {
	out := make([]string, len(p))
	for i, m := range p {
		out[i] = string(m)
	}
	return out
}

// Result scores of a finished game from one side's perspective.
const (
	Loss = 0.0
	Draw = 0.5
	Win  = 1.0
)

// Oracle answers rules questions about a position. Any game that aims to be
// searched by the engines in this module should implement it.
type Oracle interface {
	// IsTerminal reports whether the game is over, including claimable draws.
	IsTerminal(pos Position) (bool, error)
	// Result returns Win, Draw or Loss for the given side of a terminal position.
	Result(pos Position, asWhite bool) (float64, error)
	// LegalMoves lists the moves playable from pos in a stable order.
	LegalMoves(pos Position) ([]Move, error)
}
