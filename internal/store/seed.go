package store

import (
	"github.com/google/uuid"

	"github.com/ayusman/handquiz/internal/quiz"
)

// FromQuiz converts a quiz question into a bank row.
func FromQuiz(q quiz.Question, sortOrder int) *Question {
	id := q.ID
	if id == "" {
		id = uuid.New().String()
	}
	return &Question{
		ID:        id,
		Prompt:    q.Prompt,
		Choices:   q.Choices[:],
		Correct:   q.Correct,
		SortOrder: sortOrder,
	}
}

// Quiz converts a bank row into a quiz question. Choices beyond the
// fourth are dropped; missing ones stay empty and fail Validate.
func (q *Question) Quiz() quiz.Question {
	out := quiz.Question{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Correct: q.Correct,
	}
	copy(out.Choices[:], q.Choices)
	return out
}

// Bank loads the whole question bank as quiz questions.
func (r *QuestionRepository) Bank() ([]quiz.Question, error) {
	rows, err := r.List()
	if err != nil {
		return nil, err
	}

	bank := make([]quiz.Question, 0, len(rows))
	for _, q := range rows {
		bank = append(bank, q.Quiz())
	}
	return bank, nil
}

// SeedDefaults fills an empty bank with the built-in questions and reports
// how many were inserted.
func (r *QuestionRepository) SeedDefaults() (int, error) {
	n, err := r.Count()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	defaults := quiz.DefaultQuestions()
	for i, q := range defaults {
		if err := r.Create(FromQuiz(q, i)); err != nil {
			return i, err
		}
	}
	return len(defaults), nil
}
