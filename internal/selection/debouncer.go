// Package selection turns a noisy per-frame finger count into discrete
// answer commits once a gesture has been held long enough.
package selection

import (
	"sync"
	"time"
)

// DefaultDwell is how long a finger count must be held before it commits.
const DefaultDwell = 3000 * time.Millisecond

// MaxCount is the largest finger count that maps to an answer choice.
const MaxCount = 4

// Config holds debouncer settings.
type Config struct {
	// Threshold is the dwell time; a commit fires once the hold is strictly longer.
	Threshold time.Duration

	// ResetOnChange restarts the dwell timer when the held count changes
	// to another in-range value. Off by default: the timer keeps running
	// and the commit carries whatever count is held when it fires.
	ResetOnChange bool
}

// DefaultConfig returns a Config with a 3 second dwell.
func DefaultConfig() Config {
	return Config{Threshold: DefaultDwell}
}

// State is a snapshot of the debouncer. The zero value is Idle.
type State struct {
	Pending   bool      `json:"pending"`
	Count     int       `json:"count"`
	StartedAt time.Time `json:"started_at"`
}

// Debouncer commits a finger count after it has been held past the dwell threshold.
type Debouncer struct {
	config Config
	state  State
	mu     sync.Mutex
}

// New creates an idle Debouncer. A non-positive threshold falls back to DefaultDwell.
func New(config Config) *Debouncer {
	if config.Threshold <= 0 {
		config.Threshold = DefaultDwell
	}
	return &Debouncer{config: config}
}

// Threshold returns the configured dwell time.
func (d *Debouncer) Threshold() time.Duration {
	return d.config.Threshold
}

// Observe feeds one frame's finger count observed at now.
// It returns the committed count and true when the hold completes.
//
// Transitions:
//   - count <= 0 or count > MaxCount: back to Idle, nothing commits
//   - Idle: Pending(count, now)
//   - Pending: the count is updated and, once now-startedAt exceeds the
//     threshold, the count commits and the debouncer returns to Idle
func (d *Debouncer) Observe(count int, now time.Time) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if count <= 0 || count > MaxCount {
		d.state = State{}
		return 0, false
	}

	if !d.state.Pending {
		d.state = State{Pending: true, Count: count, StartedAt: now}
		return 0, false
	}

	if count != d.state.Count && d.config.ResetOnChange {
		d.state = State{Pending: true, Count: count, StartedAt: now}
		return 0, false
	}
	d.state.Count = count

	if now.Sub(d.state.StartedAt) > d.config.Threshold {
		d.state = State{}
		return count, true
	}

	return 0, false
}

// Reset drops any pending selection.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = State{}
}

// State returns the current debouncer state.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Progress returns the fraction of the dwell elapsed at now, in [0, 1].
// It is 0 when Idle.
func (d *Debouncer) Progress(now time.Time) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.state.Pending {
		return 0
	}

	p := float64(now.Sub(d.state.StartedAt)) / float64(d.config.Threshold)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
