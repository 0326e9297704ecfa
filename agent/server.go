package agent

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"polecat/game"
	"polecat/searcher"
)

type moveRequest struct {
	Moves []string `json:"moves"`
}

type moveResponse struct {
	Move string `json:"move"`
}

// NewHandler serves POST /findmove: the request lists the moves played so
// far and the response carries the searcher's reply. Searches run one at a
// time since a searcher owns a single RNG and metrics collector.
func NewHandler(s searcher.Searcher) http.Handler {
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/findmove", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var payload moveRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}

		pos := game.NewPosition(payload.Moves...)
		mu.Lock()
		move, err := s.FindMove(r.Context(), pos)
		mu.Unlock()
		switch {
		case errors.Is(err, searcher.ErrNoMove):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		case err != nil:
			log.Error().Err(err).Msgf("search failed at %q", pos.Key())
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Info().Msgf("played %s after %d plies", move, len(pos))
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(moveResponse{Move: string(move)}); err != nil {
			http.Error(w, "failed to encode move: "+err.Error(), http.StatusInternalServerError)
		}
	})
	return mux
}
