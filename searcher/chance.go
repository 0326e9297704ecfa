package searcher

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"polecat/game"
)

// expandChance expands the opponent-to-move leaves selected by indices with
// one weak evaluator call, then samples one reply for each. targets is
// updated in place.
func (s *search) expandChance(ctx context.Context, t *tree, leaves, targets []nodeID, indices []int) error {
	if len(indices) == 0 {
		return nil
	}

	positions := make([]game.Position, len(indices))
	for j, i := range indices {
		positions[j] = t.position(leaves[i])
	}

	evals, err := s.evaluate(ctx, s.weak, positions)
	if err != nil {
		return errors.WithMessage(err, "opponent policy")
	}

	for j, i := range indices {
		leaf := leaves[i]
		d := s.opponentPolicy(positions[j], evals[j].Policy)
		if len(d) == 0 {
			log.Warn().Msgf("no opponent replies at %q", positions[j].Key())
			continue
		}
		t.expand(leaf, d)
		targets[i] = t.randomChild(leaf, s.rng.Float64())
	}
	return nil
}
