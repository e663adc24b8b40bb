package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// RigFormat identifies how a rig's data column is encoded.
type RigFormat string

const (
	// RigFormatBVH marks rigs uploaded as BVH hierarchy text.
	RigFormatBVH RigFormat = "bvh"
	// RigFormatBuiltin marks rigs generated in code; data holds the
	// generator name.
	RigFormatBuiltin RigFormat = "builtin"
)

// Rig represents a stored skeleton definition.
type Rig struct {
	ID        string
	Name      string
	Format    RigFormat
	Data      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RigRepository provides CRUD operations for rigs and their role overrides.
type RigRepository struct {
	db *sql.DB
}

// Rigs returns the rig repository for this store.
func (s *Store) Rigs() *RigRepository {
	return &RigRepository{db: s.db}
}

// Create inserts a new rig.
func (r *RigRepository) Create(rig *Rig) error {
	now := time.Now()
	rig.CreatedAt = now
	rig.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO rigs (id, name, format, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rig.ID, rig.Name, string(rig.Format), rig.Data, rig.CreatedAt, rig.UpdatedAt,
	)
	return err
}

// GetByID retrieves a rig by its ID.
func (r *RigRepository) GetByID(id string) (*Rig, error) {
	rig := &Rig{}
	var format string

	err := r.db.QueryRow(
		`SELECT id, name, format, data, created_at, updated_at
		 FROM rigs WHERE id = ?`,
		id,
	).Scan(&rig.ID, &rig.Name, &format, &rig.Data, &rig.CreatedAt, &rig.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rig.Format = RigFormat(format)
	return rig, nil
}

// GetByName retrieves a rig by its name.
func (r *RigRepository) GetByName(name string) (*Rig, error) {
	rig := &Rig{}
	var format string

	err := r.db.QueryRow(
		`SELECT id, name, format, data, created_at, updated_at
		 FROM rigs WHERE name = ?`,
		name,
	).Scan(&rig.ID, &rig.Name, &format, &rig.Data, &rig.CreatedAt, &rig.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rig.Format = RigFormat(format)
	return rig, nil
}

// List retrieves all rigs, newest first.
func (r *RigRepository) List() ([]*Rig, error) {
	rows, err := r.db.Query(
		`SELECT id, name, format, data, created_at, updated_at
		 FROM rigs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rigs []*Rig
	for rows.Next() {
		rig := &Rig{}
		var format string

		if err := rows.Scan(&rig.ID, &rig.Name, &format, &rig.Data, &rig.CreatedAt, &rig.UpdatedAt); err != nil {
			return nil, err
		}

		rig.Format = RigFormat(format)
		rigs = append(rigs, rig)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rigs, nil
}

// Delete removes a rig and, via cascade, its role overrides.
func (r *RigRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM rigs WHERE id = ?`, id)
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

// SetOverrides replaces a rig's role overrides with the given role-to-joint
// name map.
func (r *RigRepository) SetOverrides(rigID string, overrides map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM role_overrides WHERE rig_id = ?`, rigID); err != nil {
		return err
	}

	for role, joint := range overrides {
		if _, err := tx.Exec(
			`INSERT INTO role_overrides (rig_id, role, joint) VALUES (?, ?, ?)`,
			rigID, role, joint,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetOverrides returns a rig's role overrides as a role-to-joint name map.
func (r *RigRepository) GetOverrides(rigID string) (map[string]string, error) {
	rows, err := r.db.Query(
		`SELECT role, joint FROM role_overrides WHERE rig_id = ?`,
		rigID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make(map[string]string)
	for rows.Next() {
		var role, joint string
		if err := rows.Scan(&role, &joint); err != nil {
			return nil, err
		}
		overrides[role] = joint
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return overrides, nil
}
