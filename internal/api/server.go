// Package api provides the HTTP API for observing and steering a farm.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (the farmer's control plane).
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

	"github.com/talgya/farm-world/internal/catalog"
	"github.com/talgya/farm-world/internal/engine"
	"github.com/talgya/farm-world/internal/farm"
	"github.com/talgya/farm-world/internal/ledger"
)

// Server serves the farm state over HTTP.
type Server struct {
	Game     *engine.Game
	Runner   *engine.Runner
	DB       *ledger.DB // optional run history; nil disables /runs
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// The run history endpoint hits SQLite; keep casual pollers off it.
	runsLimiter := NewRateLimiter(120, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/plot/", s.handlePlotDetail)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/forecast", s.handleForecast)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/crops", s.handleCrops)
	mux.HandleFunc("/api/v1/technologies", s.handleTechnologies)
	mux.HandleFunc("/api/v1/sustainability", s.handleSustainability)
	mux.HandleFunc("/api/v1/runs", RateLimitMiddleware(runsLimiter, s.handleRuns))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/action", s.adminOnly(s.handleAction))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
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
		"http://localhost:4173": true,
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
				http.Error(w, "admin endpoints disabled (no FARMSIM_ADMIN_KEY set)", http.StatusForbidden)
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
	g := s.Game
	climate := g.Climate()

	speed := 0.0
	running := false
	if s.Runner != nil {
		speed = s.Runner.Speed
		running = s.Runner.Running
	}

	status := map[string]any{
		"day":            g.Day(),
		"season":         engine.SeasonName(g.Season()),
		"year":           g.Year(),
		"speed":          speed,
		"running":        running,
		"balance":        g.Balance(),
		"water_reserve":  g.WaterReserve(),
		"farm_health":    g.FarmHealth(),
		"farm_value":     g.FarmValue(),
		"sustainability": g.Sustainability().Score,
		"rows":           g.Rows(),
		"cols":           g.Cols(),
		"climate": map[string]float64{
			"drought_probability":  climate.DroughtProbability,
			"heatwave_probability": climate.HeatwaveProbability,
		},
	}
	writeJSON(w, status)
}

type plotEntry struct {
	Row            int     `json:"row"`
	Col            int     `json:"col"`
	Crop           string  `json:"crop,omitempty"`
	SoilHealth     float64 `json:"soil_health"`
	WaterLevel     float64 `json:"water_level"`
	GrowthProgress float64 `json:"growth_progress,omitempty"`
	ExpectedYield  float64 `json:"expected_yield,omitempty"`
	PestPressure   float64 `json:"pest_pressure,omitempty"`
	HarvestReady   bool    `json:"harvest_ready,omitempty"`
}

func plotSummary(row, col int, p *farm.Plot) plotEntry {
	entry := plotEntry{
		Row:        row,
		Col:        col,
		SoilHealth: p.SoilHealth,
		WaterLevel: p.WaterLevel,
	}
	if !p.Empty() {
		entry.Crop = p.Crop.ID
		entry.GrowthProgress = p.GrowthProgress
		entry.ExpectedYield = p.ExpectedYield
		entry.PestPressure = p.PestPressure
		entry.HarvestReady = p.HarvestReady
	}
	return entry
}

// handleGrid returns every plot in one payload for the grid renderer.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	g := s.Game
	plots := make([]plotEntry, 0, g.Rows()*g.Cols())
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			plots = append(plots, plotSummary(row, col, g.PlotAt(row, col)))
		}
	}
	writeJSON(w, map[string]any{
		"rows":  g.Rows(),
		"cols":  g.Cols(),
		"plots": plots,
	})
}

// handlePlotDetail serves GET /api/v1/plot/:row/:col.
func (s *Server) handlePlotDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/plot/:row/:col -> parts[0]="" [1]="api" [2]="v1" [3]="plot" [4]=row [5]=col
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/plot/:row/:col", http.StatusBadRequest)
		return
	}
	row, err1 := strconv.Atoi(parts[4])
	col, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	p := s.Game.PlotAt(row, col)
	if p == nil {
		http.Error(w, "plot not found", http.StatusNotFound)
		return
	}

	history := make([]map[string]any, 0, len(p.CropHistory))
	for _, rec := range p.CropHistory {
		history = append(history, map[string]any{
			"crop": rec.CropID,
			"days": rec.Days,
		})
	}

	result := map[string]any{
		"row":                   row,
		"col":                   col,
		"soil_health":           p.SoilHealth,
		"water_level":           p.WaterLevel,
		"pest_pressure":         p.PestPressure,
		"fertilized":            p.Fertilized,
		"irrigated":             p.Irrigated,
		"consecutive_plantings": p.ConsecutivePlantings,
		"crop_history":          history,
	}
	if !p.Empty() {
		result["crop"] = p.Crop.ID
		result["crop_name"] = p.Crop.Name
		result["growth_progress"] = p.GrowthProgress
		result["days_since_planting"] = p.DaysSincePlanting
		result["expected_yield"] = p.ExpectedYield
		result["harvest_ready"] = p.HarvestReady
	}
	writeJSON(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	notes := s.Game.Notifications()

	// Optional category filter (harvest, forecast, weather, policy...).
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Notification
		for _, n := range notes {
			if n.Category == category {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}
	if r.URL.Query().Get("alerts") == "true" {
		var filtered []engine.Notification
		for _, n := range notes {
			if n.Alert {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}

	start := 0
	if len(notes) > limit {
		start = len(notes) - limit
	}
	writeJSON(w, notes[start:])
}

// handleForecast returns the scheduled event queue, alerts first.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.PendingEvents())
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	g := s.Game

	type marketEntry struct {
		Crop      string  `json:"crop"`
		Factor    float64 `json:"factor"`
		BasePrice float64 `json:"base_price"`
		Price     float64 `json:"price"`
	}

	var result []marketEntry
	for _, c := range g.Crops().Plantable() {
		factor := g.MarketFactor(c.ID)
		result = append(result, marketEntry{
			Crop:      c.ID,
			Factor:    factor,
			BasePrice: c.BasePrice,
			Price:     c.BasePrice * factor,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleCrops(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.Crops().Plantable())
}

func (s *Server) handleTechnologies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.Technologies())
}

func (s *Server) handleSustainability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.ComputeSustainability())
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "run history not available", http.StatusServiceUnavailable)
		return
	}

	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	runs, err := s.DB.RecentRuns(limit)
	if err != nil {
		slog.Error("run history query failed", "error", err)
		writeJSON(w, []ledger.RunSummary{})
		return
	}
	if runs == nil {
		runs = []ledger.RunSummary{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		http.Error(w, "no simulation loop attached", http.StatusServiceUnavailable)
		return
	}

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
		s.Runner.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Runner.Speed})
}

// handleAction applies a farmer action to the simulation.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type       string `json:"type"`
		Row        int    `json:"row"`
		Col        int    `json:"col"`
		Crop       string `json:"crop,omitempty"`
		Technology string `json:"technology,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	g := s.Game

	switch req.Type {
	case "plant":
		if req.Crop == "" {
			http.Error(w, "crop required for plant type", http.StatusBadRequest)
			return
		}
		ok, reason := g.PlantReason(req.Row, req.Col, req.Crop)
		if !ok && reason == engine.ReasonInvalidCropID {
			s.refuseWithSuggestion(w, reason, g.Crops().SuggestCrop(req.Crop))
			return
		}
		s.writeActionResult(w, ok, reason, fmt.Sprintf("planted %s at (%d,%d)", req.Crop, req.Row, req.Col))

	case "irrigate":
		ok, reason := g.IrrigateReason(req.Row, req.Col)
		s.writeActionResult(w, ok, reason, fmt.Sprintf("irrigated (%d,%d)", req.Row, req.Col))

	case "fertilize":
		ok, reason := g.FertilizeReason(req.Row, req.Col)
		s.writeActionResult(w, ok, reason, fmt.Sprintf("fertilized (%d,%d)", req.Row, req.Col))

	case "harvest":
		res := g.Harvest(req.Row, req.Col)
		if !res.Success {
			writeJSON(w, map[string]any{"success": false, "reason": engine.ReasonPlotNotReady})
			return
		}
		writeJSON(w, map[string]any{
			"success": true,
			"details": fmt.Sprintf("harvested %s for %.0f", res.CropName, res.Income),
			"income":  res.Income,
			"yield":   res.YieldPercentage,
		})

	case "research":
		if req.Technology == "" {
			http.Error(w, "technology required for research type", http.StatusBadRequest)
			return
		}
		ok, reason := g.ResearchReason(req.Technology)
		if !ok && reason == engine.ReasonUnknownTechnology {
			s.refuseWithSuggestion(w, reason, catalog.SuggestTechnology(req.Technology, g.Technologies()))
			return
		}
		s.writeActionResult(w, ok, reason, fmt.Sprintf("researched %s", req.Technology))

	default:
		http.Error(w, "unknown action type (use: plant, irrigate, fertilize, harvest, research)", http.StatusBadRequest)
	}
}

func (s *Server) writeActionResult(w http.ResponseWriter, ok bool, reason engine.Reason, details string) {
	if !ok {
		writeJSON(w, map[string]any{"success": false, "reason": reason})
		return
	}
	writeJSON(w, map[string]any{"success": true, "details": details})
}

func (s *Server) refuseWithSuggestion(w http.ResponseWriter, reason engine.Reason, suggestion string) {
	resp := map[string]any{"success": false, "reason": reason}
	if suggestion != "" {
		resp["did_you_mean"] = suggestion
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
