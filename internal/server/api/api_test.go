package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handquiz/internal/app"
	"github.com/ayusman/handquiz/internal/detector"
	"github.com/ayusman/handquiz/internal/game"
	"github.com/ayusman/handquiz/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// newTestApp wires an App to a fresh store, a registry with a fixed shuffle
// and a plugin directory holding a single "score-log" manifest.
func newTestApp(t *testing.T) *app.App {
	t.Helper()

	pluginDir := t.TempDir()
	dir := filepath.Join(pluginDir, "score-log")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	manifest := `{"name":"score-log","version":"1.0.0","executable":"score-log","events":["completed"]}`
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	a := app.New(app.Config{
		Store:         newTestStore(t),
		Registry:      game.NewRegistry(game.Config{Seed: 42}),
		PluginDir:     pluginDir,
		PluginTimeout: time.Second,
	})
	a.SetDetector(detector.NewMockDetector())
	if err := a.DiscoverPlugins(); err != nil {
		t.Fatalf("DiscoverPlugins() error = %v", err)
	}
	t.Cleanup(a.Stop)
	return a
}

// mount serves routes under prefix the way the server does.
func mount(prefix string, routes func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Route(prefix, routes)
	return r
}

// do sends a request with an optional JSON body and returns the recorder.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the recorder body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
