package searcher

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"polecat/eval"
	"polecat/game"
	"polecat/policy"
)

// exNode is an expectimax node. reach is the product of local
// probabilities from the root.
type exNode struct {
	position game.Position
	local    float64
	reach    float64
	parent   nodeID
	children []nodeID
}

type exTree struct {
	nodes []exNode
}

func newExTree(root game.Position) *exTree {
	return &exTree{
		nodes: []exNode{{position: root, local: 1.0, reach: 1.0, parent: nilNode}},
	}
}

// expand adds a child per entry whose reach stays at or above cutoff.
func (t *exTree) expand(id nodeID, d policy.Distribution, cutoff float64) {
	pos, reach := t.nodes[id].position, t.nodes[id].reach
	for _, e := range d {
		if e.Probability*reach < cutoff {
			continue
		}
		child := nodeID(len(t.nodes))
		t.nodes = append(t.nodes, exNode{
			position: pos.Append(e.Move),
			local:    e.Probability,
			reach:    e.Probability * reach,
			parent:   id,
		})
		t.nodes[id].children = append(t.nodes[id].children, child)
	}
}

func (t *exTree) children(id nodeID) []nodeID {
	return t.nodes[id].children
}

// Expectimax is a depth-limited expectiminimax search. Opponent nodes take
// the expectation over the weak evaluator's policy and are cut off as soon
// as their remaining probability mass cannot beat the best sibling.
type Expectimax struct {
	settings
	oracle game.Oracle
	strong eval.Evaluator
	weak   eval.Evaluator
}

func NewExpectimax(oracle game.Oracle, strong, weak eval.Evaluator, options ...Option) *Expectimax {
	return &Expectimax{
		settings: newSettings(options),
		oracle:   oracle,
		strong:   strong,
		weak:     weak,
	}
}

func (x *Expectimax) FindMove(ctx context.Context, pos game.Position) (game.Move, error) {
	s := newSearch(x.settings, x.oracle, x.strong, x.weak, pos)
	s.metrics.Start("expectimax")

	terminal, err := s.isTerminal(pos)
	if err != nil {
		return "", err
	}
	if terminal {
		return "", errors.Wrapf(ErrNoMove, "game over at %q", pos.Key())
	}
	if s.depth <= 0 {
		move, err := s.bestPolicyMove(ctx, pos)
		if err != nil {
			return "", err
		}
		s.complete("expectimax", 0, move)
		return move, nil
	}

	t := newExTree(pos)
	moves, err := s.candidateMoves(ctx, pos, true)
	if err != nil {
		return "", err
	}
	t.expand(rootNode, policy.Uniform(moves, 1.0), s.positionCutoff)
	if len(t.children(rootNode)) == 0 {
		log.Warn().Msgf("position cutoff %g removed every root move", s.positionCutoff)
		move, err := s.bestPolicyMove(ctx, pos)
		if err != nil {
			return "", err
		}
		s.complete("expectimax", len(t.nodes), move)
		return move, nil
	}

	best := nilNode
	bestValue := math.Inf(-1)
	for _, child := range t.children(rootNode) {
		value, err := s.expectimax(ctx, t, child, s.depth-1, bestValue)
		if err != nil {
			return "", err
		}
		if value > bestValue {
			bestValue = value
			best = child
		}
	}

	move := t.nodes[best].position.Last()
	s.complete("expectimax", len(t.nodes), move)
	return move, nil
}

// expectimax values node id for the engine. toBeat is the best value a
// sibling already reached; opponent nodes that cannot exceed it return 0.
func (s *search) expectimax(ctx context.Context, t *exTree, id nodeID, depth int, toBeat float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	pos := t.nodes[id].position
	terminal, err := s.isTerminal(pos)
	if err != nil {
		return 0, err
	}
	if terminal || depth <= 0 {
		return s.heuristic(ctx, pos)
	}

	if s.isOwnMove(pos) {
		return s.maxNode(ctx, t, id, depth)
	}
	return s.chanceNode(ctx, t, id, depth, toBeat)
}

func (s *search) maxNode(ctx context.Context, t *exTree, id nodeID, depth int) (float64, error) {
	pos := t.nodes[id].position
	moves, err := s.candidateMoves(ctx, pos, true)
	if err != nil {
		return 0, err
	}
	t.expand(id, policy.Uniform(moves, 1.0), s.positionCutoff)
	if len(t.children(id)) == 0 {
		return s.heuristic(ctx, pos)
	}

	best := math.Inf(-1)
	for _, child := range t.children(id) {
		value, err := s.expectimax(ctx, t, child, depth-1, best)
		if err != nil {
			return 0, err
		}
		best = math.Max(best, value)
	}
	return best, nil
}

func (s *search) chanceNode(ctx context.Context, t *exTree, id nodeID, depth int, toBeat float64) (float64, error) {
	if toBeat >= 1.0 { // Sibling already wins outright
		return 0, nil
	}

	pos := t.nodes[id].position
	ev, err := s.evaluateOne(ctx, s.weak, pos)
	if err != nil {
		return 0, errors.WithMessage(err, "opponent policy")
	}
	d := s.opponentPolicy(pos, ev.Policy).SortDescending()
	t.expand(id, d, s.positionCutoff)
	if len(t.children(id)) == 0 {
		return s.heuristic(ctx, pos)
	}

	expected, remaining := 0.0, 1.0
	for _, child := range t.children(id) {
		if expected+remaining <= toBeat {
			return 0, nil
		}
		value, err := s.expectimax(ctx, t, child, depth-1, 0)
		if err != nil {
			return 0, err
		}
		local := t.nodes[child].local
		expected += local * value
		remaining -= local
	}
	return expected, nil
}
