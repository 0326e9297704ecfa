package engine

import (
	"context"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"polecat/game"
	"polecat/searcher"
)

type Option func(l *Local)

// WithMaxMoves caps the game length in plies.
func WithMaxMoves(moves int) Option {
	return func(l *Local) {
		if moves > 0 {
			l.maxMoves = moves
		}
	}
}

// WithOpening starts the game after the given moves.
func WithOpening(pos game.Position) Option {
	return func(l *Local) {
		l.opening = pos
	}
}

// Local plays two searchers against each other in process.
type Local struct {
	white    searcher.Searcher
	black    searcher.Searcher
	oracle   game.Oracle
	maxMoves int
	opening  game.Position
}

func NewLocal(white, black searcher.Searcher, oracle game.Oracle, options ...Option) *Local {
	l := &Local{
		white:    white,
		black:    black,
		oracle:   oracle,
		maxMoves: MaxMoves,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Run executes the entire game loop until the oracle reports a result.
func (l *Local) Run(ctx context.Context) (Record, error) {
	start := time.Now()
	pos := l.opening

	log.Info().Msgf("game starting after %d opening plies", len(pos))

	for {
		terminal, err := l.oracle.IsTerminal(pos)
		if err != nil {
			return Record{}, err
		}
		if terminal {
			result, err := l.oracle.Result(pos, true)
			if err != nil {
				return Record{}, err
			}
			log.Info().Msgf("game over after %d plies: %s", len(pos), outcome(result))
			return Record{Moves: pos, Outcome: outcome(result), Result: result, Duration: time.Since(start)}, nil
		}
		if len(pos) >= l.maxMoves {
			break
		}

		player, side := l.white, "white"
		if !pos.WhiteToMove() {
			player, side = l.black, "black"
		}

		move, err := player.FindMove(ctx, pos)
		if err != nil {
			return Record{}, errors.WithMessagef(err, "%s at ply %d", side, len(pos)+1)
		}

		legal, err := l.oracle.LegalMoves(pos)
		if err != nil {
			return Record{}, err
		}
		if len(legal) == 0 {
			return Record{}, errors.Wrapf(searcher.ErrNoMove, "no legal moves at ply %d", len(pos)+1)
		}
		if !slices.Contains(legal, move) {
			log.Warn().Msgf("%s returned illegal move %q, playing %s", side, move, legal[0])
			move = legal[0]
		}

		log.Info().Msgf("ply %d: %s plays %s", len(pos)+1, side, move)
		pos = pos.Append(move)
	}

	log.Info().Msgf("stopped after %d plies without a result", len(pos))
	return Record{Moves: pos, Outcome: Unfinished, Duration: time.Since(start)}, nil
}
