// Package api serves read-only observation of the running simulation over
// HTTP, plus the Prometheus metrics endpoint.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/marketsim/internal/agents"
	"github.com/talgya/marketsim/internal/engine"
	"github.com/talgya/marketsim/internal/persistence"
)

// Server serves simulation state over HTTP. All endpoints are read-only.
// The simulation mutates between requests, so every handler takes the
// server's lock that the episode runner also holds while stepping.
type Server struct {
	Port int
	DB   *persistence.DB

	mu  sync.Mutex
	sim *engine.Simulation
}

// NewServer creates a server for the given port.
func NewServer(port int, db *persistence.DB) *Server {
	return &Server{Port: port, DB: db}
}

// Attach points the server at a simulation instance.
func (s *Server) Attach(sim *engine.Simulation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim = sim
}

// Lock is held by the episode runner around Step so observers never see a
// half-applied step.
func (s *Server) Lock()   { s.mu.Lock() }
func (s *Server) Unlock() { s.mu.Unlock() }

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgent)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		http.Error(w, "no simulation attached", http.StatusServiceUnavailable)
		return
	}

	episodes := 0
	if s.DB != nil {
		if n, err := s.DB.EpisodeCount(); err == nil {
			episodes = n
		}
	}

	s.writeJSON(w, map[string]any{
		"step":        s.sim.CurrentStep(),
		"horizon":     s.sim.Config.Horizon,
		"price":       s.sim.Market.Price,
		"pool_left":   s.sim.Market.Pool.StocksLeft,
		"agents":      s.sim.Roster.Len(),
		"eligibility": s.sim.Breaker.State().String(),
		"episodes":    episodes,
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		http.Error(w, "no simulation attached", http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, map[string]any{
		"price":          s.sim.Market.Price,
		"last_volume":    s.sim.Market.LastVolume(),
		"pool_left":      s.sim.Market.Pool.StocksLeft,
		"pool_capacity":  s.sim.Market.Pool.Capacity,
		"planner_reward": s.sim.PlannerReward(),
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		http.Error(w, "no simulation attached", http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, s.sim.Roster.All())
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		http.Error(w, "no simulation attached", http.StatusServiceUnavailable)
		return
	}

	var id uint64
	if _, err := fmt.Sscanf(r.URL.Path, "/api/v1/agent/%d", &id); err != nil {
		http.Error(w, "bad agent id", http.StatusBadRequest)
		return
	}
	obs := s.sim.Observe(agents.AgentID(id))
	if obs == nil {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, obs)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		http.Error(w, "no simulation attached", http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, map[string]any{
		"prices":  s.sim.Market.PriceHistory,
		"volumes": s.sim.Market.VolumeHistory,
	})
}
