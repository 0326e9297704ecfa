package uci

import (
	"context"
	"sync"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"polecat/game"
)

// Engine is a deterministic searcher backed by an external UCI engine such
// as Stockfish, searching every position to a fixed depth.
type Engine struct {
	mu     sync.Mutex
	engine *uci.Engine
	oracle *game.ChessOracle
	depth  int
}

// New starts the engine binary at path and performs the UCI handshake.
func New(path string, depth int) (*Engine, error) {
	eng, err := uci.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "start uci engine %q", path)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		eng.Close()
		return nil, errors.Wrap(err, "uci handshake")
	}
	log.Info().Msgf("uci engine %s ready at depth %d", path, depth)

	return &Engine{
		engine: eng,
		oracle: game.NewChessOracle(),
		depth:  depth,
	}, nil
}

func (e *Engine) FindMove(ctx context.Context, pos game.Position) (game.Move, error) {
	g, err := e.oracle.Replay(pos)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cmdPos := uci.CmdPosition{Position: g.Position()}
	cmdGo := uci.CmdGo{Depth: e.depth}
	if err := e.engine.Run(cmdPos, cmdGo); err != nil {
		return "", errors.Wrap(err, "uci search")
	}

	best := e.engine.SearchResults().BestMove
	if best == nil {
		return "", errors.Errorf("uci engine found no move at %q", pos.Key())
	}
	return game.Move(chess.UCINotation{}.Encode(g.Position(), best)), nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.engine.Close()
}
