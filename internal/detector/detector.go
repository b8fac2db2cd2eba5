package detector

import "gocv.io/x/gocv"

// Detector turns a camera frame into the hands the finger counter reads.
// A frame with no hand in view yields an empty slice, which the quiz treats
// as a count of zero.
type Detector interface {
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config mirrors the landmark model options. The quiz only ever answers
// with one hand, so MaxHands above 1 just feeds extra counts to the
// debouncer in detection order.
type Config struct {
	MaxHands        int
	MinConfidence   float64 // detection threshold, 0..1
	MinTrackingConf float64 // tracking threshold between frames, 0..1
}

// DefaultConfig returns the detection settings the quiz is tuned for:
// a single hand, 0.75 detection and 0.5 tracking confidence.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.75,
		MinTrackingConf: 0.5,
	}
}
