package capture

import "time"

// Pacer switches between the idle and active frame rates. It goes active on
// motion and drops back to idle after Cooldown without motion.
type Pacer struct {
	IdleFPS   int
	ActiveFPS int
	Cooldown  time.Duration

	active     bool
	lastMotion time.Time
}

// NewPacer returns a pacer with the default rates and a 2s cooldown.
func NewPacer() *Pacer {
	return &Pacer{
		IdleFPS:   DefaultIdleFPS,
		ActiveFPS: DefaultActiveFPS,
		Cooldown:  2 * time.Second,
	}
}

// Update records a motion sample and returns the rate to capture at and
// whether it changed.
func (p *Pacer) Update(motion bool, now time.Time) (fps int, changed bool) {
	was := p.active
	if motion {
		p.active = true
		p.lastMotion = now
	} else if p.active && now.Sub(p.lastMotion) > p.Cooldown {
		p.active = false
	}
	return p.FPS(), was != p.active
}

// FPS returns the current rate.
func (p *Pacer) FPS() int {
	if p.active {
		return p.ActiveFPS
	}
	return p.IdleFPS
}

// Interval returns the time between frames at the current rate.
func (p *Pacer) Interval() time.Duration {
	return time.Second / time.Duration(p.FPS())
}

// Active reports whether the pacer is at the active rate.
func (p *Pacer) Active() bool {
	return p.active
}
