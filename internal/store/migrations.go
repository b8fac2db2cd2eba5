package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Questions table - the question bank new quizzes are drawn from
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			prompt TEXT NOT NULL,
			correct_index INTEGER NOT NULL CHECK(correct_index BETWEEN 0 AND 3),
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Question choices table - the four authored choices, in authored order
		`CREATE TABLE IF NOT EXISTS question_choices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			choice_index INTEGER NOT NULL,
			text TEXT NOT NULL
		)`,

		// Sessions table - completed quiz runs
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			completed_at DATETIME NOT NULL
		)`,

		// Session answers table - one row per committed answer
		`CREATE TABLE IF NOT EXISTS session_answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			question_index INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			chosen TEXT NOT NULL,
			answer TEXT NOT NULL,
			correct INTEGER NOT NULL
		)`,

		// Hooks table - plugins to run when a game event fires
		`CREATE TABLE IF NOT EXISTS hooks (
			id TEXT PRIMARY KEY,
			event TEXT NOT NULL,
			plugin_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_question_choices_question_id ON question_choices(question_id)`,
		`CREATE INDEX IF NOT EXISTS idx_session_answers_session_id ON session_answers(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_hooks_event ON hooks(event)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
