// Package api provides a stateless HTTP API over the impact engine and the
// profile classifier. The client owns its run state; every request carries
// what it needs and nothing is kept between calls.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/talgya/civicsim/internal/civic"
	"github.com/talgya/civicsim/internal/scenario"
	"github.com/talgya/civicsim/internal/session"
)

const maxBodyBytes = 1 << 20

// Server serves the scenario catalog and the scoring operations over HTTP.
type Server struct {
	Catalog      *scenario.Catalog
	Port         int
	CORSOrigins  []string      // added to the localhost dev origins
	ReplayRate   int           // replay requests per window per client
	ReplayWindow time.Duration
	// Peers whose X-Forwarded-For is believed. Empty keys on the peer only.
	TrustedProxies []netip.Prefix

	metrics *metrics
	limiter *RateLimiter
}

// Handler builds the routed, CORS-wrapped handler. It may be called once per Server.
func (s *Server) Handler() http.Handler {
	s.metrics = newMetrics()
	s.limiter = NewRateLimiter(s.ReplayRate, s.ReplayWindow)

	mux := http.NewServeMux()
	s.handle(mux, "GET /api/v1/status", s.handleStatus)
	s.handle(mux, "GET /api/v1/scenarios", s.handleScenarios)
	s.handle(mux, "GET /api/v1/scenario/{id}", s.handleScenarioDetail)
	s.handle(mux, "GET /api/v1/archetypes", s.handleArchetypes)
	s.handle(mux, "POST /api/v1/impact", s.handleImpact)
	s.handle(mux, "POST /api/v1/profile", s.handleProfile)
	s.handle(mux, "POST /api/v1/replay", RateLimitMiddleware(s.limiter, s.TrustedProxies, s.handleReplay))
	mux.Handle("GET /metrics", s.metrics.handler())

	return corsMiddleware(s.CORSOrigins, mux)
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, s.metrics.instrument(pattern, h))
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	go s.limiter.Run(limiterCtx)

	errc := make(chan error, 1)
	go func() {
		slog.Info("HTTP API starting", "addr", srv.Addr, "scenarios", s.Catalog.Len())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	slog.Info("HTTP API shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name":       "civicsim",
		"scenarios":  s.Catalog.Len(),
		"archetypes": len(civic.Archetypes()),
		"decisions":  s.Catalog.Len(),
	})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Catalog.Scenarios())
}

func (s *Server) handleScenarioDetail(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.Catalog.Scenario(r.PathValue("id"))
	if !ok {
		http.Error(w, "scenario not found", http.StatusNotFound)
		return
	}
	writeJSON(w, sc)
}

func (s *Server) handleArchetypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, civic.Archetypes())
}

// Request state objects are pointers so that an omitted object is told apart
// from a zero state.
type impactRequest struct {
	Metrics    *civic.Metrics      `json:"metrics"`
	WorldState *civic.WorldState   `json:"worldState"`
	Impact     *civic.ChoiceImpact `json:"impact"`
}

type impactResponse struct {
	Metrics    civic.Metrics      `json:"metrics"`
	WorldState civic.WorldState   `json:"worldState"`
	Applied    []civic.FieldDelta `json:"applied"`
}

func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	var req impactRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := requireState(req.Metrics, req.WorldState); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Impact == nil {
		http.Error(w, "impact: "+civic.ErrMissingField.Error(), http.StatusBadRequest)
		return
	}
	m, ws, err := civic.ApplyImpact(*req.Metrics, *req.WorldState, *req.Impact)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, impactResponse{
		Metrics:    m,
		WorldState: ws,
		Applied:    civic.Applied(*req.Metrics, *req.WorldState, m, ws),
	})
}

type profileRequest struct {
	Metrics    *civic.Metrics       `json:"metrics"`
	WorldState *civic.WorldState    `json:"worldState"`
	History    []civic.ChoiceRecord `json:"history"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := requireState(req.Metrics, req.WorldState); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := errors.Join(req.Metrics.Validate(), req.WorldState.Validate()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	profile := civic.DetermineProfile(*req.Metrics, *req.WorldState, req.History)
	s.metrics.observeProfile(profile.Archetype)
	writeJSON(w, profile)
}

// requireState rejects requests that omit either state object. Field-level
// presence is enforced when the objects are decoded.
func requireState(m *civic.Metrics, ws *civic.WorldState) error {
	switch {
	case m == nil:
		return fmt.Errorf("metrics: %w", civic.ErrMissingField)
	case ws == nil:
		return fmt.Errorf("worldState: %w", civic.ErrMissingField)
	}
	return nil
}

type replayRequest struct {
	Choices []string `json:"choices"`
}

type replayResponse struct {
	ID         string               `json:"id"`
	Metrics    civic.Metrics        `json:"metrics"`
	WorldState civic.WorldState     `json:"worldState"`
	History    []civic.ChoiceRecord `json:"history"`
	Profile    civic.CivicProfile   `json:"profile"`
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	var req replayRequest
	if !readJSON(w, r, &req) {
		return
	}
	run, err := session.Replay(s.Catalog, req.Choices)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	profile, err := run.Profile()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.observeProfile(profile.Archetype)
	writeJSON(w, replayResponse{
		ID:         run.ID,
		Metrics:    run.Metrics(),
		WorldState: run.WorldState(),
		History:    run.History(),
		Profile:    profile,
	})
}

// readJSON decodes a strict JSON body into v, writing a 400 on failure.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Warn("write response", "error", err)
	}
}
