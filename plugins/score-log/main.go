// Package main provides a plugin that appends finished quiz scores to a file.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event   string          `json:"event"`
	Session string          `json:"session"`
	Config  json.RawMessage `json:"config"`
	Payload json.RawMessage `json:"payload"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type config struct {
	Path string `json:"path"`
}

type payload struct {
	Summary *struct {
		Correct int `json:"correct"`
		Total   int `json:"total"`
	} `json:"summary"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Event != "completed" {
		writeErrorResponse(fmt.Sprintf("unsupported event: %s", req.Event))
		return
	}

	var p payload
	if err := json.Unmarshal(req.Payload, &p); err != nil || p.Summary == nil {
		writeErrorResponse("payload has no summary")
		return
	}

	path, err := logPath(req.Config)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	line := fmt.Sprintf("%s\t%s\t%d out of %d correct.\n",
		time.Now().Format(time.RFC3339), req.Session, p.Summary.Correct, p.Summary.Total)

	if err := appendLine(path, line); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to write %s: %v", path, err))
		return
	}

	data, _ := json.Marshal(map[string]string{"path": path})
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}

// logPath returns the configured log file or ~/.handquiz/scores.log.
func logPath(raw json.RawMessage) (string, error) {
	var cfg config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return "", fmt.Errorf("invalid config: %w", err)
		}
	}
	if cfg.Path != "" {
		return cfg.Path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no log path configured: %w", err)
	}
	return filepath.Join(homeDir, ".handquiz", "scores.log"), nil
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(line)
	return err
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}
