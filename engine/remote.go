package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"polecat/game"
)

// Remote is a searcher living behind an agent server's /findmove endpoint,
// so games can mix local and remote players.
type Remote struct {
	url  string
	http *http.Client
}

func NewRemote(url string, timeout time.Duration) *Remote {
	return &Remote{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

func (r *Remote) FindMove(ctx context.Context, pos game.Position) (game.Move, error) {
	data, err := json.Marshal(struct {
		Moves []string `json:"moves"`
	}{Moves: pos.Strings()})
	if err != nil {
		return "", errors.Wrap(err, "encode move request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+"/findmove", bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "build move request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "ask %s for a move", r.url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("%s answered status %d", r.url, resp.StatusCode)
	}

	var body struct {
		Move string `json:"move"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "decode move response")
	}
	return game.Move(body.Move), nil
}
