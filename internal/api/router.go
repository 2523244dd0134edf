// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package api is the thin HTTP surface over the search engine.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/intent"
	"github.com/kinoscope/kinoscope/internal/logging"
	"github.com/kinoscope/kinoscope/internal/media"
	"github.com/kinoscope/kinoscope/internal/metrics"
	"github.com/kinoscope/kinoscope/internal/search"
)

// Router serves the search API.
type Router struct {
	engine   *search.Engine
	validate *validator.Validate
	logger   zerolog.Logger
}

// SearchRequest is the POST /api/v1/search body.
type SearchRequest struct {
	Query           string   `json:"query" validate:"required,min=1,max=500"`
	PreferredGenres []int    `json:"preferred_genres,omitempty" validate:"max=20,dive,gt=0"`
	Region          string   `json:"region,omitempty" validate:"omitempty,iso3166_1_alpha2"`
	Services        []string `json:"services,omitempty" validate:"max=10,dive,min=1,max=50"`
	SessionID       string   `json:"session_id,omitempty" validate:"omitempty,max=128"`
}

// Options maps the request's per-call settings to the engine's form.
func (r *SearchRequest) Options() media.QueryOptions {
	return media.QueryOptions{
		Region:    r.Region,
		Services:  r.Services,
		SessionID: r.SessionID,
	}
}

// SearchResponse is the ranked result list.
type SearchResponse struct {
	Results []media.MergedResult `json:"results"`
	Count   int                  `json:"count"`
}

// IntentResponse exposes the parsed intent for debugging clients.
type IntentResponse struct {
	Intent intent.Intent `json:"intent"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the router.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRouter(engine *search.Engine, logger zerolog.Logger) *Router {
	return &Router{
		engine:   engine,
		validate: validator.New(),
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Handler assembles the chi mux with middleware.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.requestLogger)

	r.Get("/healthz", rt.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(instrument)
		r.Post("/search", rt.handleSearch)
		r.Post("/intent", rt.handleIntent)
	})

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := rt.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	results := rt.engine.Search(r.Context(), req.Query, req.PreferredGenres, req.Options())
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, Count: len(results)})
}

func (rt *Router) handleIntent(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := rt.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, IntentResponse{Intent: rt.engine.ParseIntent(r.Context(), req.Query)})
}

// requestLogger attaches a request-scoped logger with a request id to
// the context and logs each request on completion.
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := logging.GenerateRequestID()
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		rt.logger.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request complete")
	})
}

// instrument records request counts and latency per endpoint.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		metrics.APIRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(ww.Status())).Inc()
		metrics.APIRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
