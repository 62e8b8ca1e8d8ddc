package repository

import (
	"context"
	"database/sql"

	"github.com/sitesmith/sitesmith-go/internal/model"
)

// Store bundles the repositories and runs the multi-entity commits of the
// project aggregate as single transactions, so a project's current code,
// its version pointer, its history rows and the owner's credit balance
// always move together.
type Store struct {
	db            *sql.DB
	Users         *UserRepository
	Projects      *ProjectRepository
	Versions      *VersionRepository
	Conversations *ConversationRepository
}

// NewStore creates a Store over the given database pool.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Projects:      NewProjectRepository(db),
		Versions:      NewVersionRepository(db),
		Conversations: NewConversationRepository(db),
	}
}

// GetProjectByPublicID retrieves a project by its public identifier.
func (s *Store) GetProjectByPublicID(ctx context.Context, publicID string) (*model.Project, error) {
	return s.Projects.GetByPublicID(ctx, publicID)
}

// ListProjectsByUser retrieves a user's projects, most recently updated first.
func (s *Store) ListProjectsByUser(ctx context.Context, userID int64) ([]model.Project, error) {
	return s.Projects.ListByUser(ctx, userID)
}

// ListPublishedProjects retrieves all published projects.
func (s *Store) ListPublishedProjects(ctx context.Context) ([]model.Project, error) {
	return s.Projects.ListPublished(ctx)
}

// GetVersion retrieves a single version.
func (s *Store) GetVersion(ctx context.Context, id int64) (*model.Version, error) {
	return s.Versions.GetByID(ctx, id)
}

// ListVersions retrieves a project's versions ordered by timestamp.
func (s *Store) ListVersions(ctx context.Context, projectID int64, ascending bool) ([]model.Version, error) {
	return s.Versions.ListByProject(ctx, projectID, ascending)
}

// ListConversation retrieves a project's conversation log in chronological order.
func (s *Store) ListConversation(ctx context.Context, projectID int64) ([]model.ConversationEntry, error) {
	return s.Conversations.ListByProject(ctx, projectID)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.Users.GetByID(ctx, id)
}

// SetPublished sets a project's publish flag.
func (s *Store) SetPublished(ctx context.Context, projectID int64, published bool) error {
	return s.Projects.SetPublished(ctx, projectID, published)
}

// CreateGeneratedProject commits the result of an AI creation: the credit
// debit, the creation counter bump, the project row, the prompt/summary
// conversation entries, the initial version and the version pointer. The
// debit carries its own floor guard, so a concurrent spend that drained
// the balance aborts the whole commit with ErrInsufficientCredits.
func (s *Store) CreateGeneratedProject(ctx context.Context, p *model.Project, conv []model.ConversationEntry, initial *model.Version, cost int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if cost > 0 {
		if err := s.Users.DecrementCreditsTx(ctx, tx, p.UserID, cost); err != nil {
			return err
		}
	}
	if err := s.Users.IncrementCreationTx(ctx, tx, p.UserID); err != nil {
		return err
	}

	if err := s.Projects.CreateTx(ctx, tx, p); err != nil {
		return err
	}

	for i := range conv {
		conv[i].ProjectID = p.ID
	}
	if err := s.Conversations.AppendBatchTx(ctx, tx, conv); err != nil {
		return err
	}

	initial.ProjectID = p.ID
	if err := s.Versions.AppendTx(ctx, tx, initial); err != nil {
		return err
	}
	if err := s.Projects.SetCurrentVersionTx(ctx, tx, p.ID, initial.ID, initial.Code); err != nil {
		return err
	}
	p.CurrentVersionID = &initial.ID

	return tx.Commit()
}

// CreateImportedProject commits a creation with caller-supplied code and
// optional history. No credits move. When initial is non-nil it becomes
// the active version.
func (s *Store) CreateImportedProject(ctx context.Context, p *model.Project, conv []model.ConversationEntry, extra []model.Version, initial *model.Version) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.Projects.CreateTx(ctx, tx, p); err != nil {
		return err
	}

	for i := range conv {
		conv[i].ProjectID = p.ID
	}
	if err := s.Conversations.AppendBatchTx(ctx, tx, conv); err != nil {
		return err
	}

	if initial != nil {
		initial.ProjectID = p.ID
		if err := s.Versions.AppendTx(ctx, tx, initial); err != nil {
			return err
		}
		if err := s.Projects.SetCurrentVersionTx(ctx, tx, p.ID, initial.ID, initial.Code); err != nil {
			return err
		}
		p.CurrentVersionID = &initial.ID
	}

	for i := range extra {
		extra[i].ProjectID = p.ID
		if err := s.Versions.AppendTx(ctx, tx, &extra[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ApplyGeneratedModification commits the result of an AI modification: the
// request/summary conversation entries, the new version, and the project's
// code and version pointer.
func (s *Store) ApplyGeneratedModification(ctx context.Context, projectID int64, code string, conv []model.ConversationEntry, ver *model.Version) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range conv {
		conv[i].ProjectID = projectID
	}
	if err := s.Conversations.AppendBatchTx(ctx, tx, conv); err != nil {
		return err
	}

	ver.ProjectID = projectID
	if err := s.Versions.AppendTx(ctx, tx, ver); err != nil {
		return err
	}
	if err := s.Projects.SetCurrentVersionTx(ctx, tx, projectID, ver.ID, code); err != nil {
		return err
	}

	return tx.Commit()
}

// ApplyManualUpdate commits a manual (non-AI) project update: the field
// changes, an optional "Manual save" version that becomes the active one,
// an optional wholesale conversation replacement (conv non-nil) and
// optional imported versions.
func (s *Store) ApplyManualUpdate(ctx context.Context, p *model.Project, newVersion *model.Version, conv []model.ConversationEntry, importVers []model.Version) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.Projects.UpdateFieldsTx(ctx, tx, p); err != nil {
		return err
	}

	if newVersion != nil {
		newVersion.ProjectID = p.ID
		if err := s.Versions.AppendTx(ctx, tx, newVersion); err != nil {
			return err
		}
		if err := s.Projects.SetCurrentVersionTx(ctx, tx, p.ID, newVersion.ID, newVersion.Code); err != nil {
			return err
		}
		p.CurrentVersionID = &newVersion.ID
	}

	if conv != nil {
		for i := range conv {
			conv[i].ProjectID = p.ID
		}
		if err := s.Conversations.ReplaceAllTx(ctx, tx, p.ID, conv); err != nil {
			return err
		}
	}

	for i := range importVers {
		importVers[i].ProjectID = p.ID
		if err := s.Versions.AppendTx(ctx, tx, &importVers[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SetCurrentVersion points a project at an existing version and adopts its
// code. Used by rollback; appends nothing.
func (s *Store) SetCurrentVersion(ctx context.Context, projectID, versionID int64, code string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.Projects.SetCurrentVersionTx(ctx, tx, projectID, versionID, code); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteProject removes a project and cascades to its versions and
// conversation log in one transaction.
func (s *Store) DeleteProject(ctx context.Context, projectID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.Versions.DeleteAllForProjectTx(ctx, tx, projectID); err != nil {
		return err
	}
	if err := s.Conversations.DeleteAllForProjectTx(ctx, tx, projectID); err != nil {
		return err
	}
	if err := s.Projects.DeleteTx(ctx, tx, projectID); err != nil {
		return err
	}

	return tx.Commit()
}
