package uci

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"polecat/game"
)

func TestEngine(t *testing.T) {
	path, err := exec.LookPath("stockfish")
	if err != nil {
		t.Skip("stockfish not installed")
	}

	eng, err := New(path, 8)
	require.NoError(t, err)
	defer eng.Close()

	t.Run("plays a legal move", func(t *testing.T) {
		pos := game.NewPosition("e2e4", "e7e5")
		move, err := eng.FindMove(context.Background(), pos)
		require.NoError(t, err)

		legal, err := game.NewChessOracle().LegalMoves(pos)
		require.NoError(t, err)
		require.Contains(t, legal, move)
	})

	t.Run("finds mate in one", func(t *testing.T) {
		pos := game.NewPosition("e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6")
		move, err := eng.FindMove(context.Background(), pos)
		require.NoError(t, err)
		require.Equal(t, game.Move("h5f7"), move)
	})
}

func TestNewMissingBinary(t *testing.T) {
	_, err := New("/nonexistent/stockfish", 8)
	require.Error(t, err)
}
