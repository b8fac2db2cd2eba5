// Package quiz implements four-choice questions and the quiz session state machine.
package quiz

import (
	"errors"
	"math/rand"
	"strings"
)

// NumChoices is the number of answer choices on every question.
const NumChoices = 4

var (
	ErrEmptyPrompt       = errors.New("question prompt is required")
	ErrEmptyChoice       = errors.New("all 4 choices must be filled in")
	ErrCorrectOutOfRange = errors.New("correct choice index must be between 0 and 3")
)

// Question is a multiple-choice question. Correct indexes into Choices.
type Question struct {
	ID      string             `json:"id,omitempty"`
	Prompt  string             `json:"prompt"`
	Choices [NumChoices]string `json:"choices"`
	Correct int                `json:"correct"`
}

// Validate checks that the question can be asked.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return ErrEmptyPrompt
	}
	for _, c := range q.Choices {
		if strings.TrimSpace(c) == "" {
			return ErrEmptyChoice
		}
	}
	if q.Correct < 0 || q.Correct >= NumChoices {
		return ErrCorrectOutOfRange
	}
	return nil
}

// CorrectText returns the text of the correct choice.
func (q *Question) CorrectText() string {
	return q.Choices[q.Correct]
}

// Shuffle returns a copy of q with its choices in a uniformly random order
// (Fisher-Yates). Correct follows the correct choice to its new position.
func (q Question) Shuffle(rng *rand.Rand) Question {
	for i := NumChoices - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		q.Choices[i], q.Choices[j] = q.Choices[j], q.Choices[i]
		switch q.Correct {
		case i:
			q.Correct = j
		case j:
			q.Correct = i
		}
	}
	return q
}

// DefaultQuestions returns the built-in question bank.
func DefaultQuestions() []Question {
	return []Question{
		{
			Prompt:  "What is the height in an HD Image?",
			Choices: [NumChoices]string{"480", "720", "1080", "240"},
			Correct: 1,
		},
		{
			Prompt:  "How many corners does a hexagon have?",
			Choices: [NumChoices]string{"Three", "Four", "Five", "Six"},
			Correct: 3,
		},
		{
			Prompt:  "What is the variable type of a? a = 'yes'",
			Choices: [NumChoices]string{"Integer", "Float", "String", "Character"},
			Correct: 2,
		},
		{
			Prompt:  "How many oceans are in the world?",
			Choices: [NumChoices]string{"Two", "Three", "Four", "Five"},
			Correct: 3,
		},
	}
}
