package game

import (
	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// ChessOracle is an Oracle for standard chess backed by notnil/chess.
// Positions are replayed from the start position on every call.
type ChessOracle struct{}

func NewChessOracle() *ChessOracle {
	return &ChessOracle{}
}

// Replay plays pos from the initial position and returns the resulting game.
func (o *ChessOracle) Replay(pos Position) (*chess.Game, error) {
	g := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	for i, move := range pos {
		if err := g.MoveStr(string(move)); err != nil {
			return nil, errors.Wrapf(err, "illegal move %q at ply %d", move, i+1)
		}
	}
	return g, nil
}

func (o *ChessOracle) IsTerminal(pos Position) (bool, error) {
	g, err := o.Replay(pos)
	if err != nil {
		return false, err
	}
	return g.Outcome() != chess.NoOutcome || claimableDraw(g), nil
}

func (o *ChessOracle) Result(pos Position, asWhite bool) (float64, error) {
	g, err := o.Replay(pos)
	if err != nil {
		return 0, err
	}

	var result float64
	switch g.Outcome() {
	case chess.WhiteWon:
		result = Win
	case chess.BlackWon:
		result = Loss
	case chess.Draw:
		result = Draw
	default:
		if !claimableDraw(g) {
			return 0, errors.Errorf("position %q is not terminal", pos.Key())
		}
		result = Draw
	}

	if !asWhite {
		result = 1.0 - result
	}
	return result, nil
}

func (o *ChessOracle) LegalMoves(pos Position) ([]Move, error) {
	g, err := o.Replay(pos)
	if err != nil {
		return nil, err
	}
	var notation chess.UCINotation
	valid := g.ValidMoves()
	moves := make([]Move, len(valid))
	for i, m := range valid {
		moves[i] = Move(notation.Encode(g.Position(), m))
	}
	return moves, nil
}

// claimableDraw reports draws a player may claim without the opponent's
// consent: threefold repetition and the fifty-move rule.
func claimableDraw(g *chess.Game) bool {
	for _, method := range g.EligibleDraws() {
		if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
			return true
		}
	}
	return false
}
