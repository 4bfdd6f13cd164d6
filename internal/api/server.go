// Package api provides the HTTP API for observing and steering the city.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-city/internal/agents"
	"github.com/talgya/mini-city/internal/engine"
	"github.com/talgya/mini-city/internal/persistence"
	"github.com/talgya/mini-city/internal/world"
)

// Server serves the city state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // Optional; enables ?source=journal on /events
	Hub      *Hub            // Optional; enables /stream
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// TrafficLimit caps router evaluations per client IP per hour.
	TrafficLimit int
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	limit := s.TrafficLimit
	if limit <= 0 {
		limit = 60
	}
	trafficLimiter := NewLimiter(limit, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/density", s.handleDensity)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/traffic", s.adminOnly(Limit(trafficLimiter, s.handleTraffic)))
	mux.HandleFunc("/api/v1/disaster", s.adminOnly(s.handleDisaster))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "stream", s.Hub != nil)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no CITYSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Eng.Do(func() {
		stats := s.Sim.Snapshot()
		width, height := s.Sim.Map.Size()
		status = map[string]any{
			"name":           "Mini City",
			"tick":           s.Eng.Tick,
			"sim_time":       engine.SimTime(s.Eng.Tick),
			"speed":          s.Eng.Speed,
			"paused":         s.Sim.Paused,
			"disasters":      s.Sim.Config().Disasters,
			"map":            map[string]int{"width": width, "height": height},
			"population":     stats.Population,
			"population_fmt": humanize.Comma(int64(stats.Population)),
			"active_agents":  stats.ActiveAgents,
			"zones":          stats.Zones,
			"traffic_peak":   stats.TrafficPeak,
			"routes":         stats.Routes,
			"notices":        stats.Notices,
		}
	})
	if s.DB != nil {
		status["run_id"] = s.DB.RunID()
	}
	if s.Hub != nil {
		status["stream_clients"] = s.Hub.Clients()
	}
	writeJSON(w, status)
}

// handleAgents lists active agents, optionally filtered by ?type=.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	filter := agents.Type(0)
	if name := r.URL.Query().Get("type"); name != "" {
		t, err := agents.ParseType(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter = t
	}

	// Encode under the lock; agent state is mutated by the tick.
	var body []byte
	var err error
	s.Eng.Do(func() {
		list := make([]*agents.Agent, 0, s.Sim.Agents.Len())
		for a := range s.Sim.Agents.Active() {
			if filter == 0 || a.Type == filter {
				list = append(list, a)
			}
		}
		body, err = json.MarshalIndent(list, "", "  ")
	})
	if err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	if r.URL.Query().Get("source") == "journal" {
		if s.DB == nil {
			http.Error(w, "no journal configured", http.StatusNotFound)
			return
		}
		events, err := s.DB.RecentEvents(limit)
		if err != nil {
			slog.Error("journal read failed", "error", err)
			http.Error(w, "journal read failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, events)
		return
	}

	var events []engine.Event
	s.Eng.Do(func() {
		events = s.Sim.RecentEvents(limit)
	})

	// Optional kind filter.
	if kind := r.URL.Query().Get("kind"); kind != "" {
		var filtered []engine.Event
		for _, e := range events {
			if string(e.Kind) == kind {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	if events == nil {
		events = []engine.Event{}
	}
	writeJSON(w, events)
}

// handleDensity reports the tile and the density cells covering ?x=&y=.
func (s *Server) handleDensity(w http.ResponseWriter, r *http.Request) {
	tile, ok := tileParam(w, r.URL.Query().Get("x"), r.URL.Query().Get("y"))
	if !ok {
		return
	}

	var resp map[string]any
	s.Eng.Do(func() {
		if !s.Sim.Map.Valid(tile) {
			return
		}
		t := s.Sim.Map.Tile(tile)
		resp = map[string]any{
			"tile":      tile,
			"class":     world.TileClassName(t),
			"traffic":   s.Sim.Traffic.Get(s.Sim.Traffic.Cell(tile)),
			"pollution": s.Sim.Pollution.Get(s.Sim.Pollution.Cell(tile)),
			"growth":    s.Sim.Growth.Get(s.Sim.Growth.Cell(tile)),
		}
		if cat, ok := world.CategoryOf(t); ok {
			resp["zone"] = cat.String()
		}
	})
	if resp == nil {
		http.Error(w, "tile out of bounds", http.StatusNotFound)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.Do(func() {
			s.Eng.Speed = req.Speed
			s.Sim.Paused = req.Speed == 0
		})
		slog.Info("speed changed", "speed", req.Speed)
	}

	var speed float64
	var paused bool
	s.Eng.Do(func() {
		speed, paused = s.Eng.Speed, s.Sim.Paused
	})
	writeJSON(w, map[string]any{"speed": speed, "paused": paused})
}

// handleTraffic runs the traffic router once for the zone centered on the
// requested tile.
func (s *Server) handleTraffic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	tile := world.Pt(req.X, req.Y)
	var result string
	var err error
	s.Eng.Do(func() {
		res, e := s.Sim.EvaluateTraffic(tile)
		result, err = res.String(), e
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("traffic evaluated", "tile", tile, "result", result)
	writeJSON(w, map[string]any{"tile": tile, "result": result})
}

func (s *Server) handleDisaster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Kind string `json:"kind"`
		X    int    `json:"x"`
		Y    int    `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	tile := world.Pt(req.X, req.Y)
	var err error
	s.Eng.Do(func() {
		err = s.Sim.TriggerDisaster(req.Kind, tile)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("disaster triggered via API", "kind", req.Kind, "tile", tile)
	writeJSON(w, map[string]any{"kind": req.Kind, "tile": tile, "status": "triggered"})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		http.Error(w, "streaming disabled", http.StatusNotFound)
		return
	}
	s.Hub.serve(w, r)
}

// tileParam parses tile coordinates from query values, writing a 400 on
// failure.
func tileParam(w http.ResponseWriter, xs, ys string) (world.Point, bool) {
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil {
		http.Error(w, "x and y must be integers", http.StatusBadRequest)
		return world.Point{}, false
	}
	return world.Pt(x, y), true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
