package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Question represents a question in the bank.
type Question struct {
	ID        string
	Prompt    string
	Choices   []string
	Correct   int
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuestionRepository provides CRUD operations for the question bank.
type QuestionRepository struct {
	db *sql.DB
}

// Questions returns the question repository for this store.
func (s *Store) Questions() *QuestionRepository {
	return &QuestionRepository{db: s.db}
}

// Create inserts a new question and its choices.
func (r *QuestionRepository) Create(q *Question) error {
	now := time.Now()
	q.CreatedAt = now
	q.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO questions (id, prompt, correct_index, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.Prompt, q.Correct, q.SortOrder, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertChoices(tx, q.ID, q.Choices); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID retrieves a question by its ID.
func (r *QuestionRepository) GetByID(id string) (*Question, error) {
	q := &Question{}

	err := r.db.QueryRow(
		`SELECT id, prompt, correct_index, sort_order, created_at, updated_at
		 FROM questions WHERE id = ?`,
		id,
	).Scan(&q.ID, &q.Prompt, &q.Correct, &q.SortOrder, &q.CreatedAt, &q.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	choices, err := r.choices([]string{q.ID})
	if err != nil {
		return nil, err
	}
	q.Choices = choices[q.ID]

	return q, nil
}

// List retrieves the whole bank in sort order.
func (r *QuestionRepository) List() ([]*Question, error) {
	rows, err := r.db.Query(
		`SELECT id, prompt, correct_index, sort_order, created_at, updated_at
		 FROM questions ORDER BY sort_order, created_at`,
	)
	if err != nil {
		return nil, err
	}

	var questions []*Question
	var ids []string
	for rows.Next() {
		q := &Question{}
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Correct, &q.SortOrder, &q.CreatedAt, &q.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		questions = append(questions, q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	choices, err := r.choices(ids)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		q.Choices = choices[q.ID]
	}

	return questions, nil
}

// Count returns the number of questions in the bank.
func (r *QuestionRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

// Update replaces a question and its choices.
func (r *QuestionRepository) Update(q *Question) error {
	q.UpdatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE questions SET prompt = ?, correct_index = ?, sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		q.Prompt, q.Correct, q.SortOrder, q.UpdatedAt, q.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM question_choices WHERE question_id = ?`, q.ID); err != nil {
		return err
	}
	if err := insertChoices(tx, q.ID, q.Choices); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a question from the bank by its ID.
func (r *QuestionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func insertChoices(tx *sql.Tx, questionID string, choices []string) error {
	stmt, err := tx.Prepare(`INSERT INTO question_choices (question_id, choice_index, text) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, text := range choices {
		if _, err := stmt.Exec(questionID, i, text); err != nil {
			return fmt.Errorf("insert choice %d: %w", i, err)
		}
	}
	return nil
}

// choices loads the choices of the given questions keyed by question ID.
func (r *QuestionRepository) choices(ids []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(
		`SELECT question_id, text FROM question_choices ORDER BY question_id, choice_index`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	for rows.Next() {
		var questionID, text string
		if err := rows.Scan(&questionID, &text); err != nil {
			return nil, err
		}
		if wanted[questionID] {
			result[questionID] = append(result[questionID], text)
		}
	}

	return result, rows.Err()
}
