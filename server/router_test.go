package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchup-arena/server/evaluator"
	"matchup-arena/server/rating"
	"matchup-arena/server/results"
)

func getJSON(t *testing.T, h http.Handler, path string, v any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if v != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
	}
	return rec.Code
}

func TestRouterWithoutRun(t *testing.T) {
	h := Router(&api{results: func(context.Context) ([]results.Result, error) { return nil, nil }})

	var health map[string]bool
	assert.Equal(t, http.StatusOK, getJSON(t, h, "/api/health", &health))
	assert.True(t, health["ok"])

	assert.Equal(t, http.StatusNotFound, getJSON(t, h, "/api/progress", nil))

	var rs []results.Result
	assert.Equal(t, http.StatusOK, getJSON(t, h, "/api/results", &rs))
	assert.Empty(t, rs)

	assert.Equal(t, http.StatusNotFound, getJSON(t, h, "/api/stream", nil))
}

func TestRouterDuringRun(t *testing.T) {
	collector := &results.Collector{}
	require.NoError(t, collector.Emit(context.Background(), []results.Result{
		{AgentA: "a", AgentB: "b", SeatWins: [2]int{2, 0}, Games: 2},
		{AgentA: "b", AgentB: "a", SeatWins: [2]int{1, 1}, Games: 2},
	}))
	require.NoError(t, collector.Emit(context.Background(), []results.Result{
		{AgentA: "a", AgentB: "b", SeatWins: [2]int{1, 1}, Games: 2},
	}))
	h := Router(&api{
		names: []string{"a", "b"},
		progress: func() []evaluator.Report {
			return []evaluator.Report{{Done: 3, Remaining: 1}, {Done: 2, Remaining: 2}}
		},
		results: func(context.Context) ([]results.Result, error) { return collector.Results(), nil },
	})

	var prog struct {
		Done      int                `json:"done"`
		Remaining int                `json:"remaining"`
		Shards    []evaluator.Report `json:"shards"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, h, "/api/progress", &prog))
	assert.Equal(t, 5, prog.Done)
	assert.Equal(t, 3, prog.Remaining)
	assert.Len(t, prog.Shards, 2)

	var rs []results.Result
	assert.Equal(t, http.StatusOK, getJSON(t, h, "/api/results", &rs))
	require.Len(t, rs, 2)
	assert.Equal(t, 4, rs[0].Games)
	assert.Equal(t, [2]int{3, 1}, rs[0].SeatWins)

	var board []rating.Standing
	assert.Equal(t, http.StatusOK, getJSON(t, h, "/api/ratings", &board))
	require.Len(t, board, 2)
	assert.Equal(t, "a", board[0].Name)
}

func TestRouterReportsSourceErrors(t *testing.T) {
	h := Router(&api{results: func(context.Context) ([]results.Result, error) { return nil, assert.AnError }})
	var body map[string]string
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, h, "/api/ratings", &body))
	assert.Equal(t, assert.AnError.Error(), body["error"])
}

func TestStreamDeliversEmittedResults(t *testing.T) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	stream := newHub(4, logrus.NewEntry(log))
	srv := httptest.NewServer(Router(&api{
		results: func(context.Context) ([]results.Result, error) { return nil, nil },
		stream:  stream,
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/stream", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return stream.subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	want := []results.Result{{AgentA: "a", AgentB: "b", Games: 1, SeatWins: [2]int{1, 0}}}
	require.NoError(t, stream.Emit(ctx, want))

	typ, msg, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)
	var got []results.Result
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, want, got)
}

func TestHubDropsForLaggingSubscribers(t *testing.T) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	h := newHub(1, logrus.NewEntry(log))
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	rs := []results.Result{{AgentA: "a", AgentB: "b"}}
	require.NoError(t, h.Emit(context.Background(), rs))
	require.NoError(t, h.Emit(context.Background(), rs))
	assert.Len(t, ch, 1)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("ARENA_AGENTS", "x=caller,y=random:0.1")
	t.Setenv("ARENA_TARGET", "8")
	t.Setenv("ARENA_SEED", "42")
	t.Setenv("ARENA_SHARDS", "2")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NO_COLOR", "1")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Target)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 2, cfg.Shards)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.False(t, cfg.UseColor)

	t.Setenv("ARENA_TARGET", "-1")
	_, err = loadConfig()
	assert.Error(t, err)

	t.Setenv("ARENA_TARGET", "8")
	t.Setenv("ARENA_SEED", "nope")
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestEnvHelpers(t *testing.T) {
	assert.Equal(t, 7, atoiDef("", 7))
	assert.Equal(t, 7, atoiDef("x", 7))
	assert.Equal(t, 3, atoiDef("3", 7))
	assert.True(t, asBool(" Yes "))
	assert.False(t, asBool("0"))
}
