package eval

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"polecat/game"
)

// NewHandler exposes an Evaluator on POST /evaluate, the endpoint Client talks to.
func NewHandler(e Evaluator) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/evaluate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}

		positions := make([]game.Position, len(req.Positions))
		for i, moves := range req.Positions {
			positions[i] = game.NewPosition(moves...)
		}

		evals, err := e.Evaluate(r.Context(), positions)
		if err != nil {
			log.Error().Err(err).Msg("evaluation failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response{Evaluations: evals}); err != nil {
			http.Error(w, "failed to encode evaluations: "+err.Error(), http.StatusInternalServerError)
		}
	})
	return mux
}
