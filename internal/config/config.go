// Package config loads handquiz settings from the environment.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the application.
type Config struct {
	Addr      string
	DataDir   string
	WebDir    string
	PluginDir string
	Tray      bool

	Camera    CameraConfig
	Detector  DetectorConfig
	Selection SelectionConfig

	PluginTimeout time.Duration
}

// CameraConfig holds the server-side capture settings.
type CameraConfig struct {
	DeviceID        int
	Selfie          bool
	MotionThreshold float64
}

// DetectorConfig holds the hand landmark model settings.
type DetectorConfig struct {
	MaxHands               int
	MinDetectionConfidence float64
	MinTrackingConfidence  float64
}

// SelectionConfig holds the dwell debouncer settings.
type SelectionConfig struct {
	Dwell         time.Duration
	ResetOnChange bool
}

// DBPath returns the path of the SQLite database inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "handquiz.db")
}

// Load reads an optional .env file, then the HANDQUIZ_ environment
// variables, falling back to defaults for anything unset or unparsable.
func Load(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Addr:      getEnv("HANDQUIZ_ADDR", ":8080"),
		DataDir:   getEnv("HANDQUIZ_DATA_DIR", defaultDataDir()),
		WebDir:    getEnv("HANDQUIZ_WEB_DIR", ""),
		PluginDir: getEnv("HANDQUIZ_PLUGIN_DIR", ""),
		Tray:      getEnvBool("HANDQUIZ_TRAY", false),
		Camera: CameraConfig{
			DeviceID:        getEnvInt("HANDQUIZ_CAMERA_ID", 0),
			Selfie:          getEnvBool("HANDQUIZ_SELFIE", true),
			MotionThreshold: getEnvFloat("HANDQUIZ_MOTION_THRESHOLD", 1.0),
		},
		Detector: DetectorConfig{
			MaxHands:               getEnvInt("HANDQUIZ_MAX_HANDS", 1),
			MinDetectionConfidence: getEnvFloat("HANDQUIZ_MIN_DETECTION_CONFIDENCE", 0.75),
			MinTrackingConfidence:  getEnvFloat("HANDQUIZ_MIN_TRACKING_CONFIDENCE", 0.5),
		},
		Selection: SelectionConfig{
			Dwell:         time.Duration(getEnvInt("HANDQUIZ_DWELL_MS", 3000)) * time.Millisecond,
			ResetOnChange: getEnvBool("HANDQUIZ_RESET_ON_CHANGE", false),
		},
		PluginTimeout: time.Duration(getEnvInt("HANDQUIZ_PLUGIN_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".handquiz"
	}
	return filepath.Join(homeDir, ".handquiz")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}
