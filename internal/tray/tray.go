// Package tray provides a system tray menu for running the hand quiz in the background.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handquiz/internal/quiz"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle  func(enabled bool)
	onNewQuiz func()
	onOpen    func()
	onQuit    func()
	enabled   bool
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuLastScore *systray.MenuItem
}

// New creates a new Tray instance with the camera enabled by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback called when the camera is paused or resumed.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnNewQuiz sets the callback called when "New Quiz" is clicked.
func (t *Tray) OnNewQuiz(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onNewQuiz = fn
}

// OnOpen sets the callback called when "Open Quiz..." is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("HandQuiz")
	systray.SetTooltip("Answer quiz questions by holding up fingers")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume the camera")
	systray.AddSeparator()

	t.menuLastScore = systray.AddMenuItem("Last: none", "Score of the last finished quiz")
	t.menuLastScore.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuNew := systray.AddMenuItem("New Quiz", "Start a new quiz")
	menuOpen := systray.AddMenuItem("Open Quiz...", "Open the quiz in the browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit HandQuiz")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuNew.ClickedCh:
				t.call(func() func() { return t.onNewQuiz })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Camera on"
	}
	return "○ Camera paused"
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.menuToggle.SetTitle(toggleTitle(enabled))
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// call runs the callback returned by get outside the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.call(func() func() { return t.onQuit })
	systray.Quit()
}

// SetLastScore shows a finished quiz's score in the menu.
func (t *Tray) SetLastScore(s quiz.Summary) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastScore != nil {
		t.menuLastScore.SetTitle(LastScoreTitle(s))
	}
}

// LastScoreTitle formats the "Last:" menu entry for s.
func LastScoreTitle(s quiz.Summary) string {
	if s.Total == 0 {
		return "Last: none"
	}
	return "Last: " + s.String()
}

// SetEnabled updates the toggle without calling OnToggle.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
