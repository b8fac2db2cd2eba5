// Package app runs the server-side camera pipeline and reacts to game events:
// finished sessions are stored and hooks run their plugins.
package app

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ayusman/handquiz/internal/capture"
	"github.com/ayusman/handquiz/internal/detector"
	"github.com/ayusman/handquiz/internal/game"
	"github.com/ayusman/handquiz/internal/plugin"
	"github.com/ayusman/handquiz/internal/quiz"
	"github.com/ayusman/handquiz/internal/store"
)

// ErrNoRegistry is returned when a session is requested without a registry.
var ErrNoRegistry = errors.New("no game registry configured")

// Config holds the dependencies and settings of the application.
type Config struct {
	Store         *store.Store
	Registry      *game.Registry
	PluginDir     string
	PluginTimeout time.Duration
	Camera        capture.Options
	MotionThresh  float64
	Detector      detector.Config
}

// App owns the camera pipeline and the event side effects.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	enabled    bool
	mu         sync.RWMutex

	// pipeline
	attached string
	stopCh   chan struct{}
	doneCh   chan struct{}
	preview  []byte

	lastSummary *quiz.Summary
	onSummary   []func(quiz.Summary)
	hooks       sync.WaitGroup
}

// New creates an App. The camera is opened only when a session is attached.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.Camera),
		motion:     capture.NewMotionDetector(motionThreshold),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(config.PluginTimeout),
		enabled:    true,
	}

	detectorConfig := config.Detector
	if detectorConfig.MaxHands == 0 {
		detectorConfig = detector.DefaultConfig()
	}

	// Try MediaPipe first, fall back to the mock detector
	if mp, err := detector.NewMediaPipeDetector(detectorConfig); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	if config.Registry != nil {
		config.Registry.Observe(a.HandleEvent)
	}

	return a
}

// SetEnabled pauses or resumes frame processing without closing the camera.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled reports whether frames are being processed.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the hand detector.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera. It must be called while no session is attached.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Camera returns the camera.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Registry returns the game registry.
func (a *App) Registry() *game.Registry {
	return a.config.Registry
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// DiscoverPlugins scans the plugin directory.
func (a *App) DiscoverPlugins() error {
	if err := a.pluginMgr.Discover(); err != nil {
		return err
	}
	log.Printf("Discovered %d plugins", len(a.pluginMgr.List()))
	return nil
}

// SeedQuestions fills an empty question bank with the built-in questions.
func (a *App) SeedQuestions() error {
	if a.config.Store == nil {
		return nil
	}
	n, err := a.config.Store.Questions().SeedDefaults()
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Seeded question bank with %d questions", n)
	}
	return nil
}

// NewSession starts a game over the stored question bank, or the built-in
// questions when there is no store or the bank is empty.
func (a *App) NewSession() (*game.Game, error) {
	if a.config.Registry == nil {
		return nil, ErrNoRegistry
	}

	var bank []quiz.Question
	if a.config.Store != nil {
		var err error
		if bank, err = a.config.Store.Questions().Bank(); err != nil {
			return nil, err
		}
	}

	g, err := a.config.Registry.Create(bank)
	if err != nil {
		return nil, err
	}
	log.Printf("Started session %s with %d questions", g.ID(), g.View().Total)
	return g, nil
}

// LastSummary returns the summary of the most recently finished session.
func (a *App) LastSummary() (quiz.Summary, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastSummary == nil {
		return quiz.Summary{}, false
	}
	return *a.lastSummary, true
}

// OnSummary registers fn to be called whenever a session completes.
func (a *App) OnSummary(fn func(quiz.Summary)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSummary = append(a.onSummary, fn)
}

// Stop detaches the pipeline, waits for running hooks and releases the
// camera, the motion detector and the hand detector.
func (a *App) Stop() {
	a.Detach()
	a.hooks.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Application stopped")
}
