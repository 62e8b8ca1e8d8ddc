package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sitesmith/sitesmith-go/internal/model"
)

var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository handles project row persistence. Multi-entity writes
// (history rows plus the project row) go through Store, which runs them in
// one transaction.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, public_id, user_id, name, initial_prompt, current_code,
	current_version_id, is_published, created_at, updated_at`

const insertProjectQuery = `INSERT INTO projects
	(public_id, user_id, name, initial_prompt, current_code, is_published)
	VALUES (?, ?, ?, ?, ?, ?)`

// CreateTx inserts a new project within the provided transaction and sets
// the generated ID on the struct. Project creation always travels with
// history rows, so there is no standalone variant.
func (r *ProjectRepository) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Project) error {
	result, err := tx.ExecContext(ctx, insertProjectQuery,
		p.PublicID, p.UserID, p.Name, p.InitialPrompt, p.CurrentCode, p.IsPublished)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	p.ID = id
	return nil
}

// GetByPublicID retrieves a project by its public identifier.
func (r *ProjectRepository) GetByPublicID(ctx context.Context, publicID string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE public_id = ?`
	return scanProject(r.db.QueryRowContext(ctx, query, publicID))
}

// ListByUser retrieves all projects owned by a user, most recently updated
// first.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID int64) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = ? ORDER BY updated_at DESC`
	return r.queryProjects(ctx, query, userID)
}

// ListPublished retrieves all published projects, most recently updated
// first.
func (r *ProjectRepository) ListPublished(ctx context.Context) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE is_published = TRUE ORDER BY updated_at DESC`
	return r.queryProjects(ctx, query)
}

// UpdateFieldsTx writes a project's mutable fields within the provided
// transaction.
func (r *ProjectRepository) UpdateFieldsTx(ctx context.Context, tx *sql.Tx, p *model.Project) error {
	query := `UPDATE projects SET name = ?, initial_prompt = ?, current_code = ?,
		current_version_id = ? WHERE id = ?`

	_, err := tx.ExecContext(ctx, query,
		p.Name, p.InitialPrompt, p.CurrentCode, nullableID(p.CurrentVersionID), p.ID)
	return err
}

// SetCurrentVersionTx points a project at a version and stores that
// version's code as the current document, within the provided transaction.
func (r *ProjectRepository) SetCurrentVersionTx(ctx context.Context, tx *sql.Tx, projectID, versionID int64, code string) error {
	query := `UPDATE projects SET current_code = ?, current_version_id = ? WHERE id = ?`

	_, err := tx.ExecContext(ctx, query, code, versionID, projectID)
	return err
}

// SetPublished sets a project's publish flag.
func (r *ProjectRepository) SetPublished(ctx context.Context, projectID int64, published bool) error {
	query := `UPDATE projects SET is_published = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, published, projectID)
	return err
}

// DeleteTx removes the project row within the provided transaction. The
// caller deletes child rows first.
func (r *ProjectRepository) DeleteTx(ctx context.Context, tx *sql.Tx, projectID int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) queryProjects(ctx context.Context, query string, args ...any) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		var currentVersion sql.NullInt64
		if err := rows.Scan(
			&p.ID, &p.PublicID, &p.UserID, &p.Name, &p.InitialPrompt, &p.CurrentCode,
			&currentVersion, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if currentVersion.Valid {
			p.CurrentVersionID = &currentVersion.Int64
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

func scanProject(row *sql.Row) (*model.Project, error) {
	p := &model.Project{}
	var currentVersion sql.NullInt64
	err := row.Scan(
		&p.ID, &p.PublicID, &p.UserID, &p.Name, &p.InitialPrompt, &p.CurrentCode,
		&currentVersion, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if currentVersion.Valid {
		p.CurrentVersionID = &currentVersion.Int64
	}
	return p, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
