package experiments

import (
	"context"

	"github.com/rs/zerolog/log"

	"polecat/engine"
	"polecat/experiments/metrics"
	"polecat/game"
	"polecat/searcher"
)

// Trial pits one engine against an opponent over several games. The
// engine takes white in even-numbered games.
type Trial struct {
	Name     string
	Engine   string
	Opponent string
	Games    int
	MaxMoves int
}

type Summary struct {
	Games            int
	Wins             int
	Draws            int
	Losses           int
	Unfinished       int
	AverageHalfMoves float64
}

// Run plays the trial. newPlayer builds a fresh searcher for an engine name.
// Records are written when w is not nil.
func Run(ctx context.Context, trial Trial, newPlayer func(name string) (searcher.Searcher, error), oracle game.Oracle, w *metrics.Writer) (Summary, error) {
	var summary Summary
	var records []metrics.GameRecord
	totalPlies := 0

	log.Info().Msgf("starting %s trial: %s vs %s over %d games", trial.Name, trial.Engine, trial.Opponent, trial.Games)

	for i := 0; i < trial.Games; i++ {
		engineWhite := i%2 == 0
		whiteName, blackName := trial.Engine, trial.Opponent
		if !engineWhite {
			whiteName, blackName = blackName, whiteName
		}

		white, err := newPlayer(whiteName)
		if err != nil {
			return summary, err
		}
		black, err := newPlayer(blackName)
		if err != nil {
			return summary, err
		}

		record, err := engine.NewLocal(white, black, oracle, engine.WithMaxMoves(trial.MaxMoves)).Run(ctx)
		if err != nil {
			return summary, err
		}

		summary.Games++
		totalPlies += len(record.Moves)
		tally(&summary, record, engineWhite)
		records = append(records, metrics.GameRecord{
			ID:       i + 1,
			White:    whiteName,
			Black:    blackName,
			Outcome:  record.Outcome,
			Plies:    len(record.Moves),
			Duration: record.Duration,
			Moves:    record.Moves.Key(),
		})

		log.Info().Msgf("completed game %d of %d: %s after %d plies", i+1, trial.Games, record.Outcome, len(record.Moves))
	}

	if summary.Games > 0 {
		summary.AverageHalfMoves = float64(totalPlies) / float64(summary.Games)
	}
	log.Info().Msgf("completed %s trial with average half-move count of %.1f", trial.Name, summary.AverageHalfMoves)

	if w != nil {
		if err := w.WriteGameRecords(records); err != nil {
			return summary, err
		}
		log.Info().Msgf("stored game records in %s", w.Dir())
	}
	return summary, nil
}

func tally(summary *Summary, record engine.Record, engineWhite bool) {
	if record.Outcome == engine.Unfinished {
		summary.Unfinished++
		return
	}
	result := record.Result
	if !engineWhite {
		result = 1 - result
	}
	switch result {
	case game.Win:
		summary.Wins++
	case game.Loss:
		summary.Losses++
	default:
		summary.Draws++
	}
}
