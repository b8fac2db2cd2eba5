package app

import (
	"fmt"
	"log"
	"time"

	"github.com/ayusman/handquiz/internal/capture"
	"github.com/ayusman/handquiz/internal/game"
)

// Attach opens the camera and feeds its frames to the game with sessionID.
// Attaching to another session while running switches the pipeline over.
func (a *App) Attach(sessionID string) error {
	if a.config.Registry == nil {
		return ErrNoRegistry
	}
	g, err := a.config.Registry.Get(sessionID)
	if err != nil {
		return err
	}

	if a.Attached() == sessionID {
		return nil
	}
	a.Detach()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}
	a.camera.SetFPS(capture.DefaultIdleFPS)
	a.motion.Reset()

	a.attached = sessionID
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(g, a.stopCh, a.doneCh)

	log.Printf("Camera pipeline attached to session %s", sessionID)
	return nil
}

// Detach stops the pipeline and waits for it to exit. The camera stays open
// so a following Attach does not pay the device start-up again.
func (a *App) Detach() {
	a.mu.Lock()
	stopCh, doneCh, id := a.stopCh, a.doneCh, a.attached
	a.stopCh, a.doneCh, a.attached = nil, nil, ""
	a.preview = nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh

	log.Printf("Camera pipeline detached from session %s", id)
}

// Attached returns the session the pipeline feeds, or "".
func (a *App) Attached() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.attached
}

// Preview returns the latest processed frame as JPEG.
func (a *App) Preview() ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.preview, a.preview != nil
}

// runPipeline reads frames at a motion-dependent rate until stopCh closes.
// Hands are detected on every frame, moving or not, so a still hand keeps
// its selection alive.
func (a *App) runPipeline(g *game.Game, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	pacer := capture.NewPacer()
	ticker := time.NewTicker(pacer.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			motion, err := a.processFrame(g, now)
			if err != nil {
				log.Printf("Error processing frame: %v", err)
				continue
			}

			if fps, changed := pacer.Update(motion, now); changed {
				a.Camera().SetFPS(fps)
				ticker.Reset(pacer.Interval())
				if pacer.Active() {
					log.Println("Switched to active mode")
				} else {
					log.Println("Switched to idle mode")
				}
			}
		}
	}
}

// processFrame reads one frame, keeps it as the preview, detects hands and
// hands them to the game. It reports whether the frame moved.
func (a *App) processFrame(g *game.Game, now time.Time) (bool, error) {
	camera := a.Camera()
	d := a.Detector()

	frame, err := camera.ReadFrame()
	if err != nil {
		return false, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	motion, _ := a.motion.Detect(frame)

	if jpeg, err := capture.EncodeJPEG(frame); err == nil {
		a.mu.Lock()
		a.preview = jpeg
		a.mu.Unlock()
	}

	hands, err := d.Detect(frame)
	if err != nil {
		return motion, fmt.Errorf("detect hands: %w", err)
	}

	g.HandleFrame(game.Frame{Hands: hands, Timestamp: now})
	return motion, nil
}
