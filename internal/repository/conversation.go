package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sitesmith/sitesmith-go/internal/model"
)

// ConversationRepository handles conversation log persistence. Entries are
// append-only; the only overwrite path is ReplaceAllTx, reserved for
// explicit manual (non-AI) bulk edits.
type ConversationRepository struct {
	db *sql.DB
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

const insertConversationQuery = `INSERT INTO conversations (project_id, role, content, timestamp) VALUES (?, ?, ?, ?)`

// AppendBatchTx inserts entries in order within the provided transaction,
// preserving supplied timestamps and stamping now for zero ones. Generated
// IDs are set on the structs. Entries only ever land alongside the project
// row they narrate, so there is no standalone variant.
func (r *ConversationRepository) AppendBatchTx(ctx context.Context, tx *sql.Tx, entries []model.ConversationEntry) error {
	return appendConversationBatch(ctx, tx, entries)
}

func appendConversationBatch(ctx context.Context, tx *sql.Tx, entries []model.ConversationEntry) error {
	for i := range entries {
		e := &entries[i]
		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now().UTC()
		}

		result, err := tx.ExecContext(ctx, insertConversationQuery, e.ProjectID, e.Role, e.Content, e.Timestamp)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		e.ID = id
	}
	return nil
}

// ReplaceAllTx deletes a project's conversation log and reinserts the
// given entries, within the provided transaction.
func (r *ConversationRepository) ReplaceAllTx(ctx context.Context, tx *sql.Tx, projectID int64, entries []model.ConversationEntry) error {
	if err := r.DeleteAllForProjectTx(ctx, tx, projectID); err != nil {
		return err
	}
	return appendConversationBatch(ctx, tx, entries)
}

// ListByProject retrieves a project's conversation log in chronological
// order.
func (r *ConversationRepository) ListByProject(ctx context.Context, projectID int64) ([]model.ConversationEntry, error) {
	query := `SELECT id, project_id, role, content, timestamp FROM conversations
		WHERE project_id = ? ORDER BY timestamp ASC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ConversationEntry
	for rows.Next() {
		var e model.ConversationEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Role, &e.Content, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// DeleteAllForProjectTx removes a project's conversation log within the
// provided transaction.
func (r *ConversationRepository) DeleteAllForProjectTx(ctx context.Context, tx *sql.Tx, projectID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE project_id = ?`, projectID)
	return err
}
