package searcher

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"polecat/game"
	"polecat/policy"
)

// opponentFixture is a white engine facing a black node "a" with three
// replies. Reply x is lost for white, y and z are won.
func opponentFixture(options ...Option) (*search, *mockEvaluator, *mockEvaluator) {
	oracle := &mockOracle{}
	strong := &mockEvaluator{values: map[string]float64{"a x": -1, "a y": 1, "a z": 1}}
	weak := &mockEvaluator{policies: map[string]policy.Distribution{
		"a": {{Move: "z", Probability: 0.2}, {Move: "x", Probability: 0.5}, {Move: "y", Probability: 0.3}},
	}}
	options = append([]Option{WithPositionCutoff(0), WithOpponentCutoff(0), WithOwnCutoff(0)}, options...)
	return newSearch(newSettings(options), oracle, strong, weak, game.Position{}), strong, weak
}

func TestExpectimaxChanceNode(t *testing.T) {
	t.Run("perfect sibling prunes without evaluating", func(t *testing.T) {
		s, strong, weak := opponentFixture()
		tr := newExTree(game.NewPosition("a"))

		value, err := s.expectimax(context.Background(), tr, rootNode, 2, 1.0)
		require.NoError(t, err)
		require.Zero(t, value)
		require.Zero(t, strong.calls+weak.calls, "No evaluator should be called")
		require.Empty(t, tr.children(rootNode), "Node should not be expanded")
	})

	t.Run("expectation over sorted replies", func(t *testing.T) {
		s, strong, weak := opponentFixture()
		tr := newExTree(game.NewPosition("a"))

		value, err := s.expectimax(context.Background(), tr, rootNode, 1, 0)
		require.NoError(t, err)
		require.InDelta(t, 0.5, value, 1e-12)
		require.Equal(t, 1, weak.calls)
		require.Equal(t, 3, strong.calls)

		var moves []game.Move
		for _, child := range tr.children(rootNode) {
			moves = append(moves, tr.nodes[child].position.Last())
		}
		require.Equal(t, []game.Move{"x", "y", "z"}, moves, "Replies should be visited most likely first")
	})

	t.Run("remaining mass below the sibling prunes", func(t *testing.T) {
		s, strong, _ := opponentFixture()
		tr := newExTree(game.NewPosition("a"))

		value, err := s.expectimax(context.Background(), tr, rootNode, 1, 0.6)
		require.NoError(t, err)
		require.Zero(t, value)
		require.Equal(t, 1, strong.calls, "Only the most likely reply should be valued")
	})

	t.Run("position cutoff drops unlikely replies", func(t *testing.T) {
		s, _, _ := opponentFixture(WithPositionCutoff(0.25))
		tr := newExTree(game.NewPosition("a"))

		value, err := s.expectimax(context.Background(), tr, rootNode, 1, 0)
		require.NoError(t, err)
		require.Len(t, tr.children(rootNode), 2)
		require.InDelta(t, 0.3, value, 1e-12, "Kept replies are not renormalized")
	})

	t.Run("no surviving replies returns the heuristic", func(t *testing.T) {
		s, strong, _ := opponentFixture(WithPositionCutoff(0.9))
		strong.values["a"] = 0.5 // Black to move, so 0.25 for white
		tr := newExTree(game.NewPosition("a"))

		value, err := s.expectimax(context.Background(), tr, rootNode, 1, 0)
		require.NoError(t, err)
		require.InDelta(t, 0.25, value, 1e-12)
	})
}

func TestExpectimaxReach(t *testing.T) {
	tr := newExTree(game.Position{})
	tr.expand(rootNode, policy.Uniform([]game.Move{"a"}, 1.0), 0)
	a := tr.children(rootNode)[0]
	tr.expand(a, policy.Distribution{{Move: "x", Probability: 0.5}, {Move: "y", Probability: 0.5}}, 0)
	x := tr.children(a)[0]
	tr.expand(x, policy.Uniform([]game.Move{"b"}, 1.0), 0)
	b := tr.children(x)[0]
	tr.expand(b, policy.Distribution{{Move: "p", Probability: 0.4}, {Move: "q", Probability: 0.6}}, 0.25)

	require.Equal(t, 0.5, tr.nodes[x].reach)
	require.Equal(t, 0.5, tr.nodes[b].reach)
	require.Len(t, tr.children(b), 1, "0.4 of 0.5 is below the cutoff")
	q := tr.children(b)[0]
	require.InDelta(t, 0.3, tr.nodes[q].reach, 1e-12)
	require.Equal(t, 0.6, tr.nodes[q].local)
}

func TestExpectimaxFindMove(t *testing.T) {
	t.Run("finds mate in one", func(t *testing.T) {
		oracle, strong, weak := chessEvaluators()
		x := NewExpectimax(oracle, strong, weak,
			WithDepth(2),
			WithOwnCutoff(0),
			WithPositionCutoff(0.05),
		)

		move, err := x.FindMove(context.Background(), scholarsMate)
		require.NoError(t, err)
		require.Equal(t, game.Move("h5f7"), move)
	})

	t.Run("zero depth plays the best policy move", func(t *testing.T) {
		oracle := &mockOracle{}
		strong := &mockEvaluator{policies: map[string]policy.Distribution{
			"": {{Move: "a", Probability: 0.2}, {Move: "b", Probability: 0.8}},
		}}
		weak := &mockEvaluator{}

		move, err := NewExpectimax(oracle, strong, weak, WithDepth(0)).FindMove(context.Background(), game.Position{})
		require.NoError(t, err)
		require.Equal(t, game.Move("b"), move)
		require.Zero(t, weak.calls)
	})

	t.Run("terminal root has no move", func(t *testing.T) {
		oracle, strong, weak := chessEvaluators()
		_, err := NewExpectimax(oracle, strong, weak).FindMove(context.Background(), game.NewPosition("f2f3", "e7e5", "g2g4", "d8h4"))
		require.True(t, errors.Is(err, ErrNoMove))
		require.Zero(t, strong.calls+weak.calls)
	})

	t.Run("picks the move with the best expectation", func(t *testing.T) {
		oracle := &mockOracle{moves: map[string][]game.Move{"": {"a", "b"}}}
		strong := &mockEvaluator{values: map[string]float64{
			"a x": 1, "a y": -1, // 0.9*1 + 0.1*0 = 0.9
			"b x": 0.6, "b y": 0.6, // 0.8
		}}
		weak := &mockEvaluator{policies: map[string]policy.Distribution{
			"a": {{Move: "x", Probability: 0.9}, {Move: "y", Probability: 0.1}},
			"b": {{Move: "x", Probability: 0.5}, {Move: "y", Probability: 0.5}},
		}}

		x := NewExpectimax(oracle, strong, weak, WithDepth(2), WithOwnCutoff(0), WithOpponentCutoff(0), WithPositionCutoff(0))
		move, err := x.FindMove(context.Background(), game.Position{})
		require.NoError(t, err)
		require.Equal(t, game.Move("a"), move)
	})
}
