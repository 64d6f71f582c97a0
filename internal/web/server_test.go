package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/wanderlist/wanderlist/internal/config"
	gosync "github.com/wanderlist/wanderlist/internal/sync"
)

func newTestServer(t *testing.T) (*Server, *config.Store) {
	t.Helper()
	dir := t.TempDir()

	prefs := config.NewStore(filepath.Join(dir, "wanderlist.json"))
	store := gosync.NewFileStore(filepath.Join(dir, "sync_codes.json"))
	reg, err := gosync.NewRegistry(context.Background(), store, gosync.WithDeviceName("Test Device"))
	if err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard, "", 0)
	return NewServer("test", logger, reg, prefs, 0), prefs
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["status"] != "ok" || resp["version"] != "test" {
		t.Errorf("resp = %v", resp)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("missing security header, got %q", got)
	}
}

func TestSyncCreateAndApply(t *testing.T) {
	srv, prefs := newTestServer(t)
	h := srv.Handler()

	if err := prefs.SaveDestination("tokyo"); err != nil {
		t.Fatal(err)
	}
	if err := prefs.RejectDestination("dubai"); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, h, http.MethodPost, "/api/v1/sync/codes",
		map[string]string{"email": "traveler@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created struct {
		Code      string `json:"code"`
		ExpiresIn string `json:"expires_in"`
	}
	decode(t, w, &created)
	if created.Code == "" {
		t.Fatal("no code in response")
	}
	if created.ExpiresIn != "24h0m0s" {
		t.Errorf("expires_in = %q", created.ExpiresIn)
	}

	// Wipe local prefs, then apply the code to restore them.
	if err := prefs.SetDestinations(nil, nil); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/sync/apply",
		map[string]string{"code": created.Code, "email": "traveler@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("apply status = %d, body = %s", w.Code, w.Body.String())
	}
	var payload gosync.SyncPayload
	decode(t, w, &payload)
	if len(payload.SavedDestinations) != 1 || payload.SavedDestinations[0] != "tokyo" {
		t.Errorf("payload saved = %v", payload.SavedDestinations)
	}

	saved := prefs.SavedDestinations()
	if len(saved) != 1 || saved[0] != "tokyo" {
		t.Errorf("apply should write back to local prefs, saved = %v", saved)
	}
}

func TestSyncApplyStatusCodes(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, http.MethodPost, "/api/v1/sync/codes",
		map[string]string{"email": "traveler@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatal(w.Body.String())
	}
	var created struct {
		Code string `json:"code"`
	}
	decode(t, w, &created)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"invalid email", map[string]string{"code": created.Code, "email": "nope"}, http.StatusBadRequest},
		{"empty code", map[string]string{"code": "  ", "email": "traveler@example.com"}, http.StatusBadRequest},
		{"unknown code", map[string]string{"code": "GOLDEN-TOKYO-1", "email": "traveler@example.com"}, http.StatusNotFound},
		{"wrong email", map[string]string{"code": created.Code, "email": "intruder@example.com"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, "/api/v1/sync/apply", tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestSyncCreateInvalidRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, http.MethodGet, "/api/v1/sync/codes", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/codes",
		bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d", rec.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/sync/codes",
		map[string]string{"email": "not-an-email"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid email status = %d", w.Code)
	}
}

func TestSyncStatsAndClear(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for i := 0; i < 3; i++ {
		w := doJSON(t, h, http.MethodPost, "/api/v1/sync/codes",
			map[string]string{"email": fmt.Sprintf("user%d@example.com", i)})
		if w.Code != http.StatusCreated {
			t.Fatal(w.Body.String())
		}
	}

	w := doJSON(t, h, http.MethodGet, "/api/v1/sync/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatal(w.Body.String())
	}
	var stats gosync.Stats
	decode(t, w, &stats)
	if stats.TotalCodes != 3 || stats.ActiveCodes != 3 {
		t.Errorf("stats = %+v", stats)
	}

	w = doJSON(t, h, http.MethodDelete, "/api/v1/sync", nil)
	if w.Code != http.StatusOK {
		t.Fatal(w.Body.String())
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/sync/stats", nil)
	decode(t, w, &stats)
	if stats.TotalCodes != 0 {
		t.Errorf("stats after clear = %+v", stats)
	}
}

func TestPortSelection(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	prefs := config.NewStore(filepath.Join(t.TempDir(), "wanderlist.json"))
	store := gosync.NewFileStore(filepath.Join(t.TempDir(), "sync_codes.json"))
	reg, err := gosync.NewRegistry(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard, "", 0)

	s := NewServer("test", logger, reg, prefs, 0)
	if s.port != config.DefaultWebPort {
		t.Errorf("port = %d, want default %d", s.port, config.DefaultWebPort)
	}

	s = NewServer("test", logger, reg, prefs, 4242)
	if s.port != 4242 {
		t.Errorf("port = %d, want override 4242", s.port)
	}
}
