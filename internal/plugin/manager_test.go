package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeManifest creates dir/name/plugin.json. A string manifest is written verbatim.
func writeManifest(t *testing.T, dir, name string, manifest any) string {
	t.Helper()

	pluginDir := filepath.Join(dir, name)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	var data []byte
	switch m := manifest.(type) {
	case string:
		data = []byte(m)
	default:
		var err error
		if data, err = json.Marshal(m); err != nil {
			t.Fatalf("failed to marshal manifest: %v", err)
		}
	}

	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	pluginDir := writeManifest(t, tmpDir, "score-log", Manifest{
		Name:        "score-log",
		Version:     "1.0.0",
		Description: "Appends finished quiz scores to a file",
		Executable:  "score-log",
		Events:      []string{"completed"},
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "score-log" {
		t.Errorf("expected plugin name 'score-log', got %q", plugin.Manifest.Name)
	}
	if len(plugin.Manifest.Events) != 1 {
		t.Errorf("expected 1 event, got %d", len(plugin.Manifest.Events))
	}
	if plugin.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, plugin.Path)
	}
	if plugin.Executable != filepath.Join(pluginDir, "score-log") {
		t.Errorf("unexpected executable %q", plugin.Executable)
	}
}

func TestManager_Discover_MultiplePlugins(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"plugin-b", "plugin-a"} {
		writeManifest(t, tmpDir, name, Manifest{Name: name, Version: "1.0.0", Executable: name})
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Manifest.Name != "plugin-a" {
		t.Errorf("List() should be sorted by name, got %q first", plugins[0].Manifest.Name)
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		manifest any
	}{
		{name: "invalid json", manifest: "not valid json"},
		{name: "missing name", manifest: Manifest{Executable: "run"}},
		{name: "missing executable", manifest: Manifest{Name: "no-exec"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeManifest(t, tmpDir, "bad-plugin", tt.manifest)

			manager := NewManager(tmpDir)
			if err := manager.Discover(); err != nil {
				t.Fatalf("Discover() failed unexpectedly: %v", err)
			}
			if n := len(manager.List()); n != 0 {
				t.Fatalf("expected 0 plugins, got %d", n)
			}
		})
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	for _, dir := range []string{"", "/path/that/does/not/exist"} {
		manager := NewManager(dir)
		if err := manager.Discover(); err != nil {
			t.Fatalf("Discover(%q) failed: %v", dir, err)
		}
		if n := len(manager.List()); n != 0 {
			t.Fatalf("expected 0 plugins, got %d", n)
		}
	}
}

func TestManager_Get(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "notify", Manifest{Name: "notify", Version: "2.0.0", Executable: "notify"})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugin, err := manager.Get("notify")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if plugin.Manifest.Version != "2.0.0" {
		t.Errorf("expected version '2.0.0', got %q", plugin.Manifest.Version)
	}

	if _, err := manager.Get("nonexistent-plugin"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_PluginDir(t *testing.T) {
	manager := NewManager("/path/to/plugins")
	if manager.PluginDir() != "/path/to/plugins" {
		t.Errorf("unexpected plugin dir %q", manager.PluginDir())
	}
}

func TestPlugin_Handles(t *testing.T) {
	scoped := &Plugin{Manifest: Manifest{Events: []string{"completed", "question"}}}
	open := &Plugin{}

	if !scoped.Handles("completed") || scoped.Handles("answer_committed") {
		t.Error("scoped plugin should handle only its declared events")
	}
	if !open.Handles("answer_committed") {
		t.Error("plugin without events should handle everything")
	}
}
