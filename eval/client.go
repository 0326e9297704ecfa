package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"polecat/game"
)

type request struct {
	Positions [][]string `json:"positions"`
}

type response struct {
	Evaluations []Evaluation `json:"evaluations"`
}

type ClientOption func(c *Client)

// WithMaxBatch splits larger requests into chunks of at most n positions.
func WithMaxBatch(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBatch = n
		}
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// Client is an Evaluator served over HTTP by a Handler or a compatible backend.
type Client struct {
	url      string
	maxBatch int
	http     *http.Client
}

// NewClient initializes and returns a new Client posting to serverURL.
func NewClient(serverURL string, options ...ClientOption) *Client {
	c := &Client{
		url:      serverURL,
		maxBatch: 256,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) Evaluate(ctx context.Context, positions []game.Position) ([]Evaluation, error) {
	results := make([]Evaluation, len(positions))
	if len(positions) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(positions); start += c.maxBatch {
		start := start
		end := min(start+c.maxBatch, len(positions))
		g.Go(func() error {
			evals, err := c.post(ctx, positions[start:end])
			if err != nil {
				return err
			}
			copy(results[start:end], evals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Msgf("evaluated %d positions at %s", len(positions), c.url)
	return results, nil
}

func (c *Client) post(ctx context.Context, positions []game.Position) ([]Evaluation, error) {
	req := request{Positions: make([][]string, len(positions))}
	for i, pos := range positions {
		req.Positions[i] = pos.Strings()
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode evaluation request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/evaluate", bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "build evaluation request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(ErrUnavailable, fmt.Sprintf("%s: status %d", c.url, resp.StatusCode))
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(ErrUnavailable, "decode evaluation response: "+err.Error())
	}
	if len(body.Evaluations) != len(positions) {
		return nil, errors.Wrapf(ErrUnavailable, "asked for %d evaluations, got %d", len(positions), len(body.Evaluations))
	}
	return body.Evaluations, nil
}
