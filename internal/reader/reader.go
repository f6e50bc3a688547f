// Package reader serves read-only snapshots of the aggregate store to the
// dashboard. It never writes application state; its only side effect is a
// short-lived Redis cache so a fleet of dashboard pollers costs one Postgres
// query per interval.
package reader

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"stream-scorer/internal/event"
	"stream-scorer/internal/scoring"
	"stream-scorer/internal/store"
)

// recentLimit matches what the live display renders.
const recentLimit = 100

// cacheTTL tracks the dashboard poll cadence.
const cacheTTL = 2 * time.Second

// Source is the slice of the store the reader queries.
type Source interface {
	ListAggregates(ctx context.Context, dim event.Dimension) ([]store.Aggregate, error)
	ListRecentEvents(ctx context.Context, limit int) ([]event.Record, error)
	ListRecentScores(ctx context.Context, limit int) ([]scoring.Score, error)
	Ping(ctx context.Context) error
}

type Server struct {
	source Source
	cache  *redis.Client // nil disables caching
}

func NewServer(source Source, cache *redis.Client) *Server {
	return &Server{source: source, cache: cache}
}

// Handler builds the HTTP mux for the reader endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", s.getEvents)
	mux.HandleFunc("GET /scores", s.getScores)
	mux.HandleFunc("GET /aggregates/{dimension}", s.getAggregates)
	mux.HandleFunc("GET /healthcheck", s.healthcheck)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.source.ListRecentEvents(r.Context(), recentLimit)
	if err != nil {
		slog.Error("list events failed", "err", err)
		http.Error(w, `{"error": "storage unavailable"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func (s *Server) getScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.source.ListRecentScores(r.Context(), recentLimit)
	if err != nil {
		slog.Error("list scores failed", "err", err)
		http.Error(w, `{"error": "storage unavailable"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, scores)
}

func (s *Server) getAggregates(w http.ResponseWriter, r *http.Request) {
	dim, ok := event.KnownDimension(r.PathValue("dimension"))
	if !ok {
		http.Error(w, `{"error": "unknown dimension"}`, http.StatusNotFound)
		return
	}

	if body, ok := s.cachedAggregates(r.Context(), dim); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	aggs, err := s.source.ListAggregates(r.Context(), dim)
	if err != nil {
		slog.Error("list aggregates failed", "dimension", dim, "err", err)
		http.Error(w, `{"error": "storage unavailable"}`, http.StatusInternalServerError)
		return
	}
	if aggs == nil {
		aggs = []store.Aggregate{}
	}

	body, err := json.Marshal(aggs)
	if err != nil {
		http.Error(w, `{"error": "encoding failed"}`, http.StatusInternalServerError)
		return
	}
	s.storeAggregates(r.Context(), dim, body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) healthcheck(w http.ResponseWriter, r *http.Request) {
	if err := s.source.Ping(r.Context()); err != nil {
		http.Error(w, `{"status": "degraded"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, `{"status": "ok"}`)
}

func (s *Server) cachedAggregates(ctx context.Context, dim event.Dimension) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	body, err := s.cache.Get(ctx, cacheKey(dim)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("aggregate cache read failed", "dimension", dim, "err", err)
		}
		return nil, false
	}
	return body, true
}

func (s *Server) storeAggregates(ctx context.Context, dim event.Dimension, body []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(dim), body, cacheTTL).Err(); err != nil {
		slog.Warn("aggregate cache write failed", "dimension", dim, "err", err)
	}
}

func cacheKey(dim event.Dimension) string {
	return "agg:" + string(dim)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "err", err)
	}
}
