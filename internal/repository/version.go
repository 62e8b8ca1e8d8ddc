package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sitesmith/sitesmith-go/internal/model"
)

var ErrVersionNotFound = errors.New("version not found")

// VersionRepository handles version snapshot persistence. The store is
// append-only: there is deliberately no update or single-row delete;
// correcting history means appending another version.
type VersionRepository struct {
	db *sql.DB
}

// NewVersionRepository creates a new VersionRepository.
func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

const insertVersionQuery = `INSERT INTO versions (project_id, code, description, timestamp) VALUES (?, ?, ?, ?)`

// AppendTx creates a new immutable version record within the provided
// transaction and sets the generated ID on the struct. A zero timestamp is
// stamped with the current time. Versions only ever land alongside the
// project pointer update, so there is no standalone variant.
func (r *VersionRepository) AppendTx(ctx context.Context, tx *sql.Tx, v *model.Version) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now().UTC()
	}

	result, err := tx.ExecContext(ctx, insertVersionQuery, v.ProjectID, v.Code, v.Description, v.Timestamp)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	v.ID = id
	return nil
}

// GetByID retrieves a single version.
func (r *VersionRepository) GetByID(ctx context.Context, id int64) (*model.Version, error) {
	query := `SELECT id, project_id, code, description, timestamp FROM versions WHERE id = ?`

	v := &model.Version{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.ProjectID, &v.Code, &v.Description, &v.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return v, nil
}

// ListByProject retrieves all versions of a project ordered by timestamp.
// Consumers must never rely on insertion order; the sort is always
// explicit.
func (r *VersionRepository) ListByProject(ctx context.Context, projectID int64, ascending bool) ([]model.Version, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	query := `SELECT id, project_id, code, description, timestamp FROM versions
		WHERE project_id = ? ORDER BY timestamp ` + order

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []model.Version
	for rows.Next() {
		var v model.Version
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.Code, &v.Description, &v.Timestamp); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

// DeleteAllForProjectTx removes every version of a project within the
// provided transaction. Used only during project deletion.
func (r *VersionRepository) DeleteAllForProjectTx(ctx context.Context, tx *sql.Tx, projectID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM versions WHERE project_id = ?`, projectID)
	return err
}
