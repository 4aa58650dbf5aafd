package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/zgjun/noto-backend/internal/apperror"
	"github.com/zgjun/noto-backend/internal/model"
	"github.com/zgjun/noto-backend/internal/repository"
)

// FileRepo implements repository.FileRepository on SQLite.
type FileRepo struct {
	conn *sql.DB
}

var _ repository.FileRepository = (*FileRepo)(nil)

// Create inserts an uploaded file. The blob goes straight into the row —
// at study-notes scale (a PDF, a photo of a whiteboard) that is simpler and
// safer than a separate object store, and deletes stay transactional with
// the rest of the user's data.
func (r *FileRepo) Create(ctx context.Context, file *model.File) error {
	file.ID = xid.New().String()
	file.CreatedAt = time.Now()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO files (id, user_id, name, content_type, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		file.ID,
		file.UserID,
		file.Name,
		file.ContentType,
		file.Data,
		file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating file: %w", err)
	}

	return nil
}

// GetForUser retrieves a file by ID, scoped to its owner. A file that
// exists but belongs to someone else is indistinguishable from one that
// doesn't exist — both are NotFound.
func (r *FileRepo) GetForUser(ctx context.Context, id, userID string) (*model.File, error) {
	var f model.File

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, content_type, data, created_at
		 FROM files
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&f.ID,
		&f.UserID,
		&f.Name,
		&f.ContentType,
		&f.Data,
		&f.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("file", id)
		}
		return nil, fmt.Errorf("sqlite: getting file %s: %w", id, err)
	}

	return &f, nil
}

// ListByUser returns metadata for every file the user owns, newest first.
// Payloads are excluded — listing should not ship megabytes of blobs.
func (r *FileRepo) ListByUser(ctx context.Context, userID string) ([]model.FileInfo, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, name, content_type, created_at
		 FROM files
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing files: %w", err)
	}
	defer rows.Close()

	files := make([]model.FileInfo, 0)
	for rows.Next() {
		var f model.FileInfo
		if err := rows.Scan(&f.ID, &f.Name, &f.ContentType, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning file row: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating files: %w", err)
	}

	return files, nil
}

// DeleteForUser removes a file, scoped to its owner.
func (r *FileRepo) DeleteForUser(ctx context.Context, id, userID string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM files WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting file %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("file", id)
	}

	return nil
}
