package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Labeled poses recorded for evaluating the classifier
		`CREATE TABLE IF NOT EXISTS samples (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			handedness TEXT NOT NULL DEFAULT '',
			landmarks TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_samples_symbol ON samples(symbol)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
