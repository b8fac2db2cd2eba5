package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/handquiz/internal/app"
	"github.com/ayusman/handquiz/internal/capture"
	"github.com/ayusman/handquiz/internal/config"
	"github.com/ayusman/handquiz/internal/detector"
	"github.com/ayusman/handquiz/internal/game"
	"github.com/ayusman/handquiz/internal/quiz"
	"github.com/ayusman/handquiz/internal/selection"
	"github.com/ayusman/handquiz/internal/server"
	"github.com/ayusman/handquiz/internal/store"
	"github.com/ayusman/handquiz/internal/tray"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	withTray := flag.Bool("tray", cfg.Tray, "run in the system tray")
	flag.Parse()
	cfg.Addr = *addr
	cfg.Tray = *withTray

	fmt.Println("HandQuiz - answer with your fingers")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	registry := game.NewRegistry(game.Config{
		Selection: selection.Config{
			Threshold:     cfg.Selection.Dwell,
			ResetOnChange: cfg.Selection.ResetOnChange,
		},
	})

	camera := capture.DefaultOptions()
	camera.DeviceID = cfg.Camera.DeviceID
	camera.Selfie = cfg.Camera.Selfie

	a := app.New(app.Config{
		Store:         st,
		Registry:      registry,
		PluginDir:     findPluginDir(cfg),
		PluginTimeout: cfg.PluginTimeout,
		Camera:        camera,
		MotionThresh:  cfg.Camera.MotionThreshold,
		Detector: detector.Config{
			MaxHands:        cfg.Detector.MaxHands,
			MinConfidence:   cfg.Detector.MinDetectionConfidence,
			MinTrackingConf: cfg.Detector.MinTrackingConfidence,
		},
	})
	defer a.Stop()

	if err := a.SeedQuestions(); err != nil {
		log.Fatalf("Failed to seed question bank: %v", err)
	}
	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(server.Config{StaticDir: webDir, App: a}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if cfg.Tray {
		runTray(a, browserURL(cfg.Addr))
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		<-ctx.Done()
		stop()
	}

	log.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

// runTray blocks in the system tray until Quit is clicked.
func runTray(a *app.App, url string) {
	t := tray.New()

	t.OnToggle(a.SetEnabled)
	a.OnSummary(t.SetLastScore)
	if last, ok := a.LastSummary(); ok {
		t.SetLastScore(last)
	}

	t.OnNewQuiz(func() {
		g, err := a.NewSession()
		if err != nil {
			log.Printf("Failed to start quiz: %v", err)
			return
		}
		if err := a.Attach(g.ID()); err != nil {
			log.Printf("Camera unavailable, answer from the browser: %v", err)
		}
		openBrowser(url + "/?session=" + g.ID())
	})
	t.OnOpen(func() {
		if g := a.Registry().Latest(); g != nil && g.State() == quiz.StateInProgress {
			openBrowser(url + "/?session=" + g.ID())
			return
		}
		openBrowser(url)
	})

	t.Run()
}

// browserURL turns a listen address such as ":8080" into a local URL.
func browserURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findPluginDir returns the configured plugin directory, else the first of
// "plugins", "../plugins" and <data dir>/plugins that exists.
func findPluginDir(cfg *config.Config) string {
	if cfg.PluginDir != "" {
		return cfg.PluginDir
	}
	return firstDir("plugins", "../plugins", filepath.Join(cfg.DataDir, "plugins"))
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <data dir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	return firstDir("web", "../web", "../../web", filepath.Join(dataDir, "web"))
}

func firstDir(candidates ...string) string {
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
