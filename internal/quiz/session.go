package quiz

import (
	"errors"
	"fmt"
	"math/rand"
)

// State is the state of a quiz session.
type State string

const (
	// StateInProgress means questions remain to be answered.
	StateInProgress State = "in_progress"
	// StateCompleted means every question has been advanced past.
	StateCompleted State = "completed"
)

var (
	ErrNoQuestions      = errors.New("quiz needs at least one question")
	ErrCompleted        = errors.New("quiz is already completed")
	ErrNotCompleted     = errors.New("quiz is not completed yet")
	ErrInvalidSelection = errors.New("selection must be between 1 and 4 fingers")
)

// AnswerResult records one committed answer.
type AnswerResult struct {
	QuestionIndex int  `json:"question_index"`
	Chosen        int  `json:"chosen"`
	Correct       bool `json:"correct"`
}

// Message returns the overlay text shown after an answer is committed.
func (r AnswerResult) Message(correctText string) string {
	if r.Correct {
		return "Correct!"
	}
	return "Incorrect! The correct answer was: " + correctText
}

// Session holds the shuffled questions, the current position and the
// recorded answers of one quiz run. It is not safe for concurrent use.
type Session struct {
	questions []Question
	current   int
	results   []AnswerResult
	state     State
	summary   Summary
}

// NewSession validates the questions, shuffles each question's choices
// independently with rng and positions the session on the first question.
func NewSession(questions []Question, rng *rand.Rand) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	shuffled := make([]Question, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		shuffled[i] = q.Shuffle(rng)
	}

	return &Session{
		questions: shuffled,
		results:   make([]AnswerResult, 0, len(questions)),
		state:     StateInProgress,
	}, nil
}

// State returns the session state.
func (s *Session) State() State {
	return s.state
}

// CurrentIndex returns the index of the question being asked.
// It equals Len() once the session is completed.
func (s *Session) CurrentIndex() int {
	return s.current
}

// Len returns the number of questions.
func (s *Session) Len() int {
	return len(s.questions)
}

// Questions returns a copy of the shuffled questions.
func (s *Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Current returns the question being asked, or false once completed.
func (s *Session) Current() (Question, bool) {
	if s.state != StateInProgress {
		return Question{}, false
	}
	return s.questions[s.current], true
}

// Results returns a copy of the recorded answers in the order they were given.
func (s *Session) Results() []AnswerResult {
	out := make([]AnswerResult, len(s.results))
	copy(out, s.results)
	return out
}

// Progress returns the percentage of questions advanced past.
func (s *Session) Progress() float64 {
	return float64(s.current) / float64(len(s.questions)) * 100
}

// RecordSelection records a committed finger count as the answer to the
// current question: one finger selects choice 0, four fingers choice 3.
// Every call appends a result, including repeated commits on the same question.
func (s *Session) RecordSelection(count int) (AnswerResult, error) {
	if s.state != StateInProgress {
		return AnswerResult{}, ErrCompleted
	}
	if count < 1 || count > NumChoices {
		return AnswerResult{}, fmt.Errorf("%w: got %d", ErrInvalidSelection, count)
	}

	q := s.questions[s.current]
	result := AnswerResult{
		QuestionIndex: s.current,
		Chosen:        count - 1,
		Correct:       count-1 == q.Correct,
	}
	s.results = append(s.results, result)

	return result, nil
}

// Advance moves to the next question. Advancing past the last question
// completes the session and computes its summary.
func (s *Session) Advance() error {
	if s.state != StateInProgress {
		return ErrCompleted
	}

	s.current++
	if s.current == len(s.questions) {
		s.state = StateCompleted
		s.summary = s.buildSummary()
	}
	return nil
}

// Summary returns the final score. It fails with ErrNotCompleted while in progress.
func (s *Session) Summary() (Summary, error) {
	if s.state != StateCompleted {
		return Summary{}, ErrNotCompleted
	}
	return s.summary, nil
}
