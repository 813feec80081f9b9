package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/talgya/farm-world/internal/catalog"
	"github.com/talgya/farm-world/internal/engine"
	"github.com/talgya/farm-world/internal/entropy"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.UniformSoil = true
	g := engine.NewGame(cfg, catalog.DefaultCrops(), catalog.DefaultTechnologies(), entropy.NewSeeded(cfg.Seed))
	return &Server{
		Game:     g,
		Runner:   engine.NewRunner(g),
		AdminKey: "test-key",
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.handleStatus(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	body := decodeBody(t, w)
	if body["season"] != "Spring" {
		t.Fatalf("season = %v, want Spring", body["season"])
	}
	if body["balance"].(float64) != 1000 {
		t.Fatalf("balance = %v", body["balance"])
	}
	if body["rows"].(float64) != 10 || body["cols"].(float64) != 10 {
		t.Fatalf("grid dims = %vx%v", body["rows"], body["cols"])
	}
}

func TestGridEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.handleGrid(w, httptest.NewRequest(http.MethodGet, "/api/v1/grid", nil))

	body := decodeBody(t, w)
	plots := body["plots"].([]any)
	if len(plots) != 100 {
		t.Fatalf("got %d plots, want 100", len(plots))
	}
}

func TestPlotDetailEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.Game.Plant(2, 3, "wheat")

	w := httptest.NewRecorder()
	s.handlePlotDetail(w, httptest.NewRequest(http.MethodGet, "/api/v1/plot/2/3", nil))
	body := decodeBody(t, w)
	if body["crop"] != "wheat" {
		t.Fatalf("crop = %v, want wheat", body["crop"])
	}

	w = httptest.NewRecorder()
	s.handlePlotDetail(w, httptest.NewRequest(http.MethodGet, "/api/v1/plot/99/99", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("out-of-bounds plot status = %d, want 404", w.Code)
	}
}

func TestActionRequiresBearerToken(t *testing.T) {
	s := newTestServer(t)
	handler := s.adminOnly(s.handleAction)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/action",
		strings.NewReader(`{"type":"plant","row":0,"col":0,"crop":"wheat"}`))
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated POST status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/action",
		strings.NewReader(`{"type":"plant","row":0,"col":0,"crop":"wheat"}`))
	req.Header.Set("Authorization", "Bearer test-key")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated POST status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Fatalf("plant refused: %v", body)
	}
	if p := s.Game.PlotAt(0, 0); p.Empty() {
		t.Fatal("plot still fallow after plant action")
	}
}

func TestPlantTypoSuggestsCrop(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/action",
		strings.NewReader(`{"type":"plant","row":0,"col":0,"crop":"wheet"}`))
	w := httptest.NewRecorder()
	s.handleAction(w, req)

	body := decodeBody(t, w)
	if body["success"] != false {
		t.Fatal("misspelled crop accepted")
	}
	if body["did_you_mean"] != "wheat" {
		t.Fatalf("did_you_mean = %v, want wheat", body["did_you_mean"])
	}
}

func TestResearchTypoSuggestsTechnology(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/action",
		strings.NewReader(`{"type":"research","technology":"drip_irigation"}`))
	w := httptest.NewRecorder()
	s.handleAction(w, req)

	body := decodeBody(t, w)
	if body["did_you_mean"] != "drip_irrigation" {
		t.Fatalf("did_you_mean = %v, want drip_irrigation", body["did_you_mean"])
	}
}

func TestSpeedEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":5}`))
	req.Header.Set("Authorization", "Bearer test-key")
	w := httptest.NewRecorder()
	s.adminOnly(s.handleSpeed)(w, req)
	if s.Runner.Speed != 5 {
		t.Fatalf("speed = %v, want 5", s.Runner.Speed)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":9999}`))
	req.Header.Set("Authorization", "Bearer test-key")
	w = httptest.NewRecorder()
	s.adminOnly(s.handleSpeed)(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized speed status = %d, want 400", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("requests under the limit refused")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("request over the limit allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("separate client throttled")
	}
	if rl.RetryAfter("1.2.3.4") <= 0 {
		t.Fatal("no retry-after for throttled client")
	}
}

func TestClientIPExtraction(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5123"
	if got := clientIP(r); got != "10.0.0.1" {
		t.Fatalf("clientIP = %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.9" {
		t.Fatalf("forwarded clientIP = %q", got)
	}
}
