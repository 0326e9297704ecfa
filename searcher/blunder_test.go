package searcher

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"polecat/game"
	"polecat/policy"
)

// blunderFixture is white to move after "p q" with candidates a and b.
// After a the opponent usually errs, after b it rarely does.
func blunderFixture() (*mockOracle, *mockEvaluator, *mockEvaluator) {
	oracle := &mockOracle{
		moves:   map[string][]game.Move{"p q": {"a", "b"}},
		results: map[string]float64{},
	}
	strong := &mockEvaluator{values: map[string]float64{
		"p q a x": 0.2, "p q a y": 1, // 0.9*0.6 + 0.1*1.0 = 0.64
		"p q b x": 0.6, "p q b y": -1, // 0.5*0.8 + 0.5*0.0 = 0.4
	}}
	weak := &mockEvaluator{policies: map[string]policy.Distribution{
		"p q a": {{Move: "x", Probability: 0.9}, {Move: "y", Probability: 0.1}},
		"p q b": {{Move: "x", Probability: 0.5}, {Move: "y", Probability: 0.5}},
	}}
	return oracle, strong, weak
}

func TestBlunderFindMove(t *testing.T) {
	root := game.NewPosition("p", "q")

	t.Run("empty position plays the opening move", func(t *testing.T) {
		strong, weak := &mockEvaluator{}, &mockEvaluator{}
		move, err := NewBlunder(&mockOracle{}, strong, weak).FindMove(context.Background(), game.Position{})
		require.NoError(t, err)
		require.Equal(t, game.Move("e2e4"), move)
		require.Zero(t, strong.calls+weak.calls, "No evaluator should be called")
	})

	t.Run("prefers the move that invites mistakes", func(t *testing.T) {
		oracle, strong, weak := blunderFixture()
		b := NewBlunder(oracle, strong, weak, WithOwnCutoff(0), WithOpponentCutoff(0))

		move, err := b.FindMove(context.Background(), root)
		require.NoError(t, err)
		require.Equal(t, game.Move("a"), move)
		require.Equal(t, 2, strong.calls, "Root value and one batch of replies")
		require.Equal(t, 1, weak.calls, "One batch of opponent policies")
		require.Equal(t, 2, weak.positions, "Both candidates")
		require.Equal(t, 5, strong.positions, "Root and four replies")
	})

	t.Run("immediate win beats any expectation", func(t *testing.T) {
		oracle, strong, weak := blunderFixture()
		oracle.results["p q b"] = game.Win
		b := NewBlunder(oracle, strong, weak, WithOwnCutoff(0), WithOpponentCutoff(0))

		move, err := b.FindMove(context.Background(), root)
		require.NoError(t, err)
		require.Equal(t, game.Move("b"), move)
		require.Equal(t, 1, weak.positions, "Terminal candidate needs no replies")
	})

	t.Run("won position goes to the fallback", func(t *testing.T) {
		oracle, strong, weak := blunderFixture()
		strong.values["p q"] = 0.95 // 0.975 for white
		fallback := &mockSearcher{move: "f"}
		b := NewBlunder(oracle, strong, weak, WithFallback(fallback), WithConfidence(0.9))

		move, err := b.FindMove(context.Background(), root)
		require.NoError(t, err)
		require.Equal(t, game.Move("f"), move)
		require.Equal(t, 1, fallback.calls)
		require.Zero(t, weak.calls)
	})

	t.Run("terminal position has no move", func(t *testing.T) {
		oracle, strong, weak := blunderFixture()
		oracle.results["p q"] = game.Draw

		_, err := NewBlunder(oracle, strong, weak).FindMove(context.Background(), root)
		require.True(t, errors.Is(err, ErrNoMove))
	})
}
