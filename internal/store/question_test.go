package store

import (
	"errors"
	"testing"
)

func sampleQuestion(id string, order int) *Question {
	return &Question{
		ID:        id,
		Prompt:    "What is the capital of France?",
		Choices:   []string{"London", "Berlin", "Paris", "Madrid"},
		Correct:   2,
		SortOrder: order,
	}
}

func TestQuestionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Questions()

	q := sampleQuestion("q-1", 0)
	if err := repo.Create(q); err != nil {
		t.Fatalf("failed to create question: %v", err)
	}

	if q.CreatedAt.IsZero() || q.UpdatedAt.IsZero() {
		t.Error("timestamps should be set after create")
	}

	got, err := repo.GetByID("q-1")
	if err != nil {
		t.Fatalf("failed to get question: %v", err)
	}
	if got.Prompt != q.Prompt {
		t.Errorf("expected prompt %q, got %q", q.Prompt, got.Prompt)
	}
	if got.Correct != 2 {
		t.Errorf("expected correct 2, got %d", got.Correct)
	}
	if len(got.Choices) != 4 {
		t.Fatalf("expected 4 choices, got %d", len(got.Choices))
	}
	for i, c := range q.Choices {
		if got.Choices[i] != c {
			t.Errorf("choice %d: expected %q, got %q", i, c, got.Choices[i])
		}
	}
}

func TestQuestionRepository_CreateDuplicateID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Questions()

	if err := repo.Create(sampleQuestion("dup", 0)); err != nil {
		t.Fatalf("failed to create question: %v", err)
	}
	if err := repo.Create(sampleQuestion("dup", 1)); err == nil {
		t.Error("expected error for duplicate id")
	}

	// The failed insert must not leave stray choices behind
	got, err := repo.GetByID("dup")
	if err != nil {
		t.Fatalf("failed to get question: %v", err)
	}
	if len(got.Choices) != 4 {
		t.Errorf("expected 4 choices, got %d", len(got.Choices))
	}
}

func TestQuestionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Questions().GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQuestionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Questions()

	questions, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list questions: %v", err)
	}
	if len(questions) != 0 {
		t.Errorf("expected empty bank, got %d", len(questions))
	}

	for i, id := range []string{"c", "a", "b"} {
		// Sort order is the reverse of insertion order
		if err := repo.Create(sampleQuestion(id, 3-i)); err != nil {
			t.Fatalf("failed to create question %s: %v", id, err)
		}
	}

	questions, err = repo.List()
	if err != nil {
		t.Fatalf("failed to list questions: %v", err)
	}
	want := []string{"b", "a", "c"}
	if len(questions) != len(want) {
		t.Fatalf("expected %d questions, got %d", len(want), len(questions))
	}
	for i, id := range want {
		if questions[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, questions[i].ID)
		}
		if len(questions[i].Choices) != 4 {
			t.Errorf("question %s: expected 4 choices, got %d", id, len(questions[i].Choices))
		}
	}

	n, err := repo.Count()
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if n != 3 {
		t.Errorf("expected count 3, got %d", n)
	}
}

func TestQuestionRepository_Update(t *testing.T) {
	s := newTestStore(t)
	repo := s.Questions()

	q := sampleQuestion("q-1", 0)
	if err := repo.Create(q); err != nil {
		t.Fatalf("failed to create question: %v", err)
	}

	q.Prompt = "Which planet is known as the Red Planet?"
	q.Choices = []string{"Mars", "Venus", "Jupiter", "Saturn"}
	q.Correct = 0
	if err := repo.Update(q); err != nil {
		t.Fatalf("failed to update question: %v", err)
	}

	got, err := repo.GetByID("q-1")
	if err != nil {
		t.Fatalf("failed to get question: %v", err)
	}
	if got.Prompt != q.Prompt || got.Correct != 0 {
		t.Errorf("update not applied: %+v", got)
	}
	if len(got.Choices) != 4 || got.Choices[0] != "Mars" {
		t.Errorf("choices not replaced: %v", got.Choices)
	}

	if err := repo.Update(sampleQuestion("missing", 0)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQuestionRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Questions()

	if err := repo.Create(sampleQuestion("q-1", 0)); err != nil {
		t.Fatalf("failed to create question: %v", err)
	}
	if err := repo.Delete("q-1"); err != nil {
		t.Fatalf("failed to delete question: %v", err)
	}
	if _, err := repo.GetByID("q-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Choices are removed by the cascade
	var n int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM question_choices`).Scan(&n); err != nil {
		t.Fatalf("failed to count choices: %v", err)
	}
	if n != 0 {
		t.Errorf("expected choices to cascade, %d left", n)
	}

	if err := repo.Delete("q-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
