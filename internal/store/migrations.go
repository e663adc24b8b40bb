package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Rigs table - stores uploaded skeleton definitions
		`CREATE TABLE IF NOT EXISTS rigs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			format TEXT NOT NULL CHECK(format IN ('bvh', 'builtin')),
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Role overrides table - manual role-to-joint assignments per rig
		`CREATE TABLE IF NOT EXISTS role_overrides (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			rig_id TEXT NOT NULL REFERENCES rigs(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			joint TEXT NOT NULL,
			UNIQUE(rig_id, role)
		)`,

		// Tuning profiles table - named retargeting gain sets as JSON
		`CREATE TABLE IF NOT EXISTS tuning_profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_role_overrides_rig_id ON role_overrides(rig_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
