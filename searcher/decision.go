package searcher

import (
	"context"

	"polecat/policy"
)

// expandOwn gives an engine-to-move leaf one child per candidate move, all
// with prior 1.0, and returns the child UCT picks next. A leaf without
// candidates is returned unchanged.
func (s *search) expandOwn(ctx context.Context, t *tree, leaf nodeID) (nodeID, error) {
	moves, err := s.candidateMoves(ctx, t.position(leaf), false)
	if err != nil {
		return nilNode, err
	}
	if len(moves) == 0 {
		return leaf, nil
	}
	t.expand(leaf, policy.Uniform(moves, 1.0))
	return t.highestUCT(leaf), nil
}
