package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/talgya/mini-city/internal/agents"
	"github.com/talgya/mini-city/internal/assets"
	"github.com/talgya/mini-city/internal/engine"
	"github.com/talgya/mini-city/internal/entropy"
	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/world"
)

const testKey = "secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m := world.NewMap(48, 36)
	zones := world.PlaceZones(m, 1)
	if len(zones) == 0 {
		t.Fatal("no zones placed")
	}
	sim := engine.NewSimulation(engine.Deps{
		Map:    m,
		Zones:  zones,
		Rand:   entropy.New(3),
		Frames: assets.NewCache(assets.DefaultTable()),
	}, engine.Config{Disasters: true})
	return &Server{Sim: sim, Eng: engine.NewEngine(), AdminKey: testKey, TrafficLimit: 2}
}

func do(t *testing.T, h http.Handler, method, path, body, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestStatus(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/status", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["name"] != "Mini City" {
		t.Errorf("name = %v", body["name"])
	}
	if body["paused"] != false {
		t.Errorf("paused = %v", body["paused"])
	}
	if _, ok := body["zones"].(map[string]any); !ok {
		t.Errorf("zones missing: %v", body["zones"])
	}
}

func TestAdminAuth(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	if rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":2}`, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: code = %d, want 401", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":2}`, "wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: code = %d, want 401", rec.Code)
	}

	s.AdminKey = ""
	if rec := do(t, s.Handler(), http.MethodPost, "/api/v1/speed", `{"speed":2}`, "anything"); rec.Code != http.StatusForbidden {
		t.Errorf("disabled admin: code = %d, want 403", rec.Code)
	}

	// GET stays public.
	if rec := do(t, h, http.MethodGet, "/api/v1/speed", "", ""); rec.Code != http.StatusOK {
		t.Errorf("GET speed: code = %d", rec.Code)
	}
}

func TestSpeedZeroPauses(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":0}`, testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
	}
	if !s.Sim.Paused || s.Eng.Speed != 0 {
		t.Fatalf("paused = %v speed = %v", s.Sim.Paused, s.Eng.Speed)
	}

	do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":5}`, testKey)
	if s.Sim.Paused || s.Eng.Speed != 5 {
		t.Fatalf("after resume paused = %v speed = %v", s.Sim.Paused, s.Eng.Speed)
	}

	if rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":5000}`, testKey); rec.Code != http.StatusBadRequest {
		t.Errorf("out of range: code = %d", rec.Code)
	}
}

func TestDisasterEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/disaster", `{"kind":"tornado"}`, testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
	}
	if _, ok := s.Sim.Agents.Lookup(agents.Tornado); !ok {
		t.Fatal("no tornado spawned")
	}

	rec = do(t, h, http.MethodGet, "/api/v1/agents?type=tornado", "", "")
	var list []map[string]any
	decode(t, rec, &list)
	if len(list) != 1 || list[0]["type"] != "tornado" {
		t.Fatalf("agents = %v", list)
	}

	if rec := do(t, h, http.MethodPost, "/api/v1/disaster", `{"kind":"flood"}`, testKey); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: code = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/agents?type=zeppelin", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown agent type: code = %d", rec.Code)
	}
}

func TestTrafficEndpointRateLimited(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	center := s.Sim.Zones[0].Center
	body := `{"x":` + strconv.Itoa(center.X) + `,"y":` + strconv.Itoa(center.Y) + `}`

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPost, "/api/v1/traffic", body, testKey)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d: %s", i, rec.Code, rec.Body.String())
		}
		var resp struct {
			Result string `json:"result"`
		}
		decode(t, rec, &resp)
		switch resp.Result {
		case "route_found", "route_not_found", "no_transport_nearby":
		default:
			t.Fatalf("result = %q", resp.Result)
		}
	}

	rec := do(t, h, http.MethodPost, "/api/v1/traffic", body, testKey)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: code = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestTrafficEndpointRejectsNonZone(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/api/v1/traffic", `{"x":-1,"y":0}`, testKey)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestDensityAndEvents(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	center := s.Sim.Zones[0].Center

	rec := do(t, h, http.MethodGet, "/api/v1/density?x="+strconv.Itoa(center.X)+"&y="+strconv.Itoa(center.Y), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("density code = %d", rec.Code)
	}
	var d map[string]any
	decode(t, rec, &d)
	if d["zone"] != s.Sim.Zones[0].Category.String() {
		t.Errorf("zone = %v, want %v", d["zone"], s.Sim.Zones[0].Category)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/density?x=999&y=0", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("out of bounds: code = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/density?x=a", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad query: code = %d", rec.Code)
	}

	s.Sim.Dispatch(notify.TornadoReported, world.Pt(3, 4))
	s.Sim.Dispatch(notify.MonsterReported, world.Pt(5, 6))
	rec = do(t, h, http.MethodGet, "/api/v1/events?kind=monster", "", "")
	var events []engine.Event
	decode(t, rec, &events)
	if len(events) != 1 || events[0].At != world.Pt(5, 6) {
		t.Fatalf("events = %+v", events)
	}
}
