package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"matchup-arena/server/evaluator"
	"matchup-arena/server/rating"
	"matchup-arena/server/results"
)

// api is what the HTTP layer can see. progress is nil when no run is live.
type api struct {
	names    []string
	progress func() []evaluator.Report
	results  func(ctx context.Context) ([]results.Result, error)
	stream   http.Handler
}

func Router(a *api) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Get("/api/progress", func(w http.ResponseWriter, r *http.Request) {
		if a.progress == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "no run in progress"})
			return
		}
		shards := a.progress()
		out := map[string]any{"shards": shards}
		var done, remaining int
		for _, s := range shards {
			done += s.Done
			remaining += s.Remaining
		}
		out["done"], out["remaining"] = done, remaining
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/api/results", func(w http.ResponseWriter, r *http.Request) {
		rs, err := a.loadResults(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, rs)
	})

	r.Get("/api/ratings", func(w http.ResponseWriter, r *http.Request) {
		rs, err := a.loadResults(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, rating.Leaderboard(rs, a.names))
	})

	if a.stream != nil {
		r.Get("/api/stream", a.stream.ServeHTTP)
	}
	return r
}

func (a *api) loadResults(ctx context.Context) ([]results.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	rs, err := a.results(ctx)
	if err != nil {
		return nil, err
	}
	return results.Merge(rs), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
