package experiments

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"polecat/experiments/metrics"
	"polecat/game"
	"polecat/searcher"
)

// foolsMate loses as white and wins as black, whatever the opponent.
type foolsMate struct{}

func (foolsMate) FindMove(ctx context.Context, pos game.Position) (game.Move, error) {
	line := game.NewPosition("f2f3", "e7e5", "g2g4", "d8h4")
	if len(pos) >= len(line) {
		return "", errors.New("line exhausted")
	}
	return line[len(pos)], nil
}

func TestRun(t *testing.T) {
	newPlayer := func(name string) (searcher.Searcher, error) {
		return foolsMate{}, nil
	}

	w, err := metrics.NewWriter(t.TempDir(), "fools")
	require.NoError(t, err)

	trial := Trial{Name: "fools", Engine: "a", Opponent: "b", Games: 4, MaxMoves: 10}
	summary, err := Run(context.Background(), trial, newPlayer, game.NewChessOracle(), w)
	require.NoError(t, err)

	require.Equal(t, 4, summary.Games)
	require.Equal(t, 2, summary.Wins, "Engine wins every game it plays black")
	require.Equal(t, 2, summary.Losses)
	require.Equal(t, 4.0, summary.AverageHalfMoves)

	data, err := os.ReadFile(filepath.Join(w.Dir(), "game_records.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	require.True(t, strings.HasPrefix(lines[1], "1,a,b,0-1,4,"))
	require.True(t, strings.HasPrefix(lines[2], "2,b,a,0-1,4,"))
}

func TestRunPlayerError(t *testing.T) {
	newPlayer := func(name string) (searcher.Searcher, error) {
		return nil, errors.Errorf("unknown engine %q", name)
	}
	_, err := Run(context.Background(), Trial{Games: 1, Engine: "x"}, newPlayer, game.NewChessOracle(), nil)
	require.ErrorContains(t, err, "x")
}
