package game

import (
	"time"

	"github.com/ayusman/handquiz/internal/detector"
	"github.com/ayusman/handquiz/internal/quiz"
)

// EventType identifies what a game event reports.
type EventType string

const (
	// EventFingerCount carries the live finger count of one hand in a frame.
	EventFingerCount EventType = "finger_count"
	// EventAnswerCommitted fires when a held gesture is recorded as an answer.
	EventAnswerCommitted EventType = "answer_committed"
	// EventQuestion fires when a new question is shown.
	EventQuestion EventType = "question"
	// EventCompleted fires once when the last question is advanced past.
	EventCompleted EventType = "completed"
)

// Frame is one FrameObserved input: every hand detected in a video frame.
// A zero Timestamp means "now".
type Frame struct {
	Hands     []detector.HandLandmarks `json:"hands"`
	Timestamp time.Time                `json:"timestamp"`
}

// Event is emitted to subscribers after each state change.
type Event struct {
	Type          EventType          `json:"type"`
	SessionID     string             `json:"session_id"`
	RunID         string             `json:"run_id"`
	FingerCount   int                `json:"finger_count,omitempty"`
	DwellProgress float64            `json:"dwell_progress,omitempty"`
	Result        *quiz.AnswerResult `json:"result,omitempty"`
	Message       string             `json:"message,omitempty"`
	CorrectText   string             `json:"correct_text,omitempty"`
	Question      *QuestionView      `json:"question,omitempty"`
	Summary       *quiz.Summary      `json:"summary,omitempty"`
	Score         float64            `json:"score,omitempty"`
	Time          time.Time          `json:"time"`
}

// QuestionView is the question as shown to the player.
type QuestionView struct {
	Index   int                     `json:"index"`
	Prompt  string                  `json:"prompt"`
	Choices [quiz.NumChoices]string `json:"choices"`
}

// View is the read model handed to the presentation layer.
type View struct {
	SessionID     string              `json:"session_id"`
	RunID         string              `json:"run_id"`
	State         quiz.State          `json:"state"`
	CurrentIndex  int                 `json:"current_index"`
	Total         int                 `json:"total"`
	Progress      float64             `json:"progress"`
	Question      *QuestionView       `json:"question,omitempty"`
	FingerCount   int                 `json:"finger_count"`
	DwellProgress float64             `json:"dwell_progress"`
	Results       []quiz.AnswerResult `json:"results"`
	Summary       *quiz.Summary       `json:"summary,omitempty"`
	Score         float64             `json:"score"`
	StartedAt     time.Time           `json:"started_at"`
}
