package eval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"polecat/game"
	"polecat/policy"
)

// lengthEvaluator values a position by its length so order can be checked.
func lengthEvaluator(calls *atomic.Int32) Evaluator {
	return Func(func(ctx context.Context, positions []game.Position) ([]Evaluation, error) {
		calls.Add(1)
		evals := make([]Evaluation, len(positions))
		for i, pos := range positions {
			evals[i] = Evaluation{
				Value:  float64(len(pos)) / 100,
				Policy: policy.Distribution{{Move: "e2e4", Probability: 1}},
			}
		}
		return evals, nil
	})
}

func TestScore(t *testing.T) {
	t.Run("white to move", func(t *testing.T) {
		pos := game.Position{}
		require.InDelta(t, 1.0, Score(pos, 1, true), 1e-12)
		require.InDelta(t, 0.0, Score(pos, 1, false), 1e-12)
		require.InDelta(t, 0.75, Score(pos, 0.5, true), 1e-12)
	})

	t.Run("black to move", func(t *testing.T) {
		pos := game.NewPosition("e2e4")
		require.InDelta(t, 0.0, Score(pos, 1, true), 1e-12)
		require.InDelta(t, 1.0, Score(pos, 1, false), 1e-12)
		require.InDelta(t, 0.5, Score(pos, 0, false), 1e-12)
	})
}

func TestEvaluateOne(t *testing.T) {
	var calls atomic.Int32
	ev, err := EvaluateOne(context.Background(), lengthEvaluator(&calls), game.NewPosition("e2e4", "e7e5"))
	require.NoError(t, err)
	require.InDelta(t, 0.02, ev.Value, 1e-12)
	require.EqualValues(t, 1, calls.Load())
}

func TestClient(t *testing.T) {
	t.Run("round trip keeps order across chunks", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(NewHandler(lengthEvaluator(&calls)))
		defer server.Close()

		client := NewClient(server.URL, WithMaxBatch(2))
		positions := []game.Position{
			game.NewPosition(),
			game.NewPosition("e2e4"),
			game.NewPosition("e2e4", "e7e5"),
			game.NewPosition("e2e4", "e7e5", "g1f3"),
			game.NewPosition("e2e4", "e7e5", "g1f3", "b8c6"),
		}

		evals, err := client.Evaluate(context.Background(), positions)
		require.NoError(t, err)
		require.Len(t, evals, len(positions))
		for i, ev := range evals {
			require.InDelta(t, float64(i)/100, ev.Value, 1e-12)
			require.Equal(t, game.Move("e2e4"), ev.Policy[0].Move)
		}
		require.EqualValues(t, 3, calls.Load())
	})

	t.Run("empty batch makes no request", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:0")
		evals, err := client.Evaluate(context.Background(), nil)
		require.NoError(t, err)
		require.Empty(t, evals)
	})

	t.Run("backend failure is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := NewClient(server.URL).Evaluate(context.Background(), []game.Position{{}})
		require.True(t, errors.Is(err, ErrUnavailable))
	})

	t.Run("handler rejects bad payload", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(NewHandler(lengthEvaluator(&calls)))
		defer server.Close()

		resp, err := http.Post(server.URL+"/evaluate", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Zero(t, calls.Load())
	})
}
