package store

import (
	"database/sql"
	"errors"
	"time"
)

// TuningProfile represents a named set of retargeting gains, stored as the
// JSON encoding of the engine's tuning struct.
type TuningProfile struct {
	ID        string
	Name      string
	Data      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TuningRepository provides CRUD operations for tuning profiles.
type TuningRepository struct {
	db *sql.DB
}

// Tunings returns the tuning profile repository for this store.
func (s *Store) Tunings() *TuningRepository {
	return &TuningRepository{db: s.db}
}

// Create inserts a new tuning profile.
func (r *TuningRepository) Create(p *TuningProfile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO tuning_profiles (id, name, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Data, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a tuning profile by its ID.
func (r *TuningRepository) GetByID(id string) (*TuningProfile, error) {
	p := &TuningProfile{}

	err := r.db.QueryRow(
		`SELECT id, name, data, created_at, updated_at
		 FROM tuning_profiles WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Name, &p.Data, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// List retrieves all tuning profiles, newest first.
func (r *TuningRepository) List() ([]*TuningProfile, error) {
	rows, err := r.db.Query(
		`SELECT id, name, data, created_at, updated_at
		 FROM tuning_profiles ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*TuningProfile
	for rows.Next() {
		p := &TuningProfile{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Data, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Update replaces a profile's name and data.
func (r *TuningRepository) Update(p *TuningProfile) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE tuning_profiles SET name = ?, data = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Data, p.UpdatedAt, p.ID,
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

	return nil
}

// Delete removes a tuning profile.
func (r *TuningRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM tuning_profiles WHERE id = ?`, id)
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
