package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Session is a finished quiz run.
type Session struct {
	ID          string
	Correct     int
	Total       int
	StartedAt   time.Time
	CompletedAt time.Time
	Answers     []Answer
}

// Answer is one committed answer of a finished session, in commit order.
type Answer struct {
	QuestionIndex int
	Prompt        string
	Chosen        string
	Answer        string
	Correct       bool
}

// SessionRepository stores finished quiz sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session and its answers in one transaction.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.CompletedAt.IsZero() {
		sess.CompletedAt = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, correct, total, started_at, completed_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Correct, sess.Total, sess.StartedAt, sess.CompletedAt,
	)
	if err != nil {
		return err
	}

	for i, a := range sess.Answers {
		_, err := tx.Exec(
			`INSERT INTO session_answers (session_id, sequence, question_index, prompt, chosen, answer, correct)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, i, a.QuestionIndex, a.Prompt, a.Chosen, a.Answer, a.Correct,
		)
		if err != nil {
			return fmt.Errorf("insert answer %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a session and its answers.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}

	err := r.db.QueryRow(
		`SELECT id, correct, total, started_at, completed_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Correct, &sess.Total, &sess.StartedAt, &sess.CompletedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT question_index, prompt, chosen, answer, correct
		 FROM session_answers WHERE session_id = ? ORDER BY sequence`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a Answer
		var correct int
		if err := rows.Scan(&a.QuestionIndex, &a.Prompt, &a.Chosen, &a.Answer, &correct); err != nil {
			return nil, err
		}
		a.Correct = correct != 0
		sess.Answers = append(sess.Answers, a)
	}

	return sess, rows.Err()
}

// List retrieves the most recent sessions without their answers.
// A limit of zero or less returns every session.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	q := `SELECT id, correct, total, started_at, completed_at FROM sessions ORDER BY completed_at DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		if err := rows.Scan(&sess.ID, &sess.Correct, &sess.Total, &sess.StartedAt, &sess.CompletedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
