package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPlugin_ScoreLog_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pluginDir := findPluginDir("score-log")
	if pluginDir == "" {
		t.Skip("score-log plugin not found")
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.Get("score-log")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := os.Stat(plug.Executable); err != nil {
		t.Skip("score-log plugin not built")
	}

	logPath := filepath.Join(t.TempDir(), "scores.log")
	config, _ := json.Marshal(map[string]string{"path": logPath})

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, &Request{
		Event:   "completed",
		Session: "integration",
		Config:  config,
		Payload: json.RawMessage(`{"summary":{"correct":3,"total":4}}`),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read score log: %v", err)
	}
	if !strings.Contains(string(data), "3 out of 4 correct.") {
		t.Errorf("unexpected log line %q", data)
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			return dir
		}
	}
	return ""
}
