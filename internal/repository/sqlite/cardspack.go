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

// CardsPackRepo implements repository.CardsPackRepository on SQLite.
type CardsPackRepo struct {
	conn *sql.DB
}

var _ repository.CardsPackRepository = (*CardsPackRepo)(nil)

// ReplaceForFile atomically replaces the cards pack for
// (pack.UserID, pack.FileID). Same transactional shape as the quiz replace:
// delete and insert commit together, a fresh ID every time.
func (r *CardsPackRepo) ReplaceForFile(ctx context.Context, pack *model.CardsPack) error {
	pack.ID = xid.New().String()
	pack.CreatedAt = time.Now()

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning pack replace tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM cardspacks WHERE user_id = ? AND file_id = ?`,
		pack.UserID, pack.FileID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting previous pack: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cardspacks (id, user_id, file_id, cards, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		pack.ID,
		pack.UserID,
		pack.FileID,
		pack.Cards,
		pack.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting pack: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing pack replace tx: %w", err)
	}
	return nil
}

// GetByFileForUser returns the pack generated from the given file, scoped
// to its owner.
func (r *CardsPackRepo) GetByFileForUser(ctx context.Context, fileID, userID string) (*model.CardsPack, error) {
	var p model.CardsPack

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, file_id, cards, created_at
		 FROM cardspacks
		 WHERE file_id = ? AND user_id = ?`,
		fileID, userID,
	).Scan(
		&p.ID,
		&p.UserID,
		&p.FileID,
		&p.Cards,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("cards pack", fileID)
		}
		return nil, fmt.Errorf("sqlite: getting pack for file %s: %w", fileID, err)
	}

	return &p, nil
}

// ListByUser returns every pack the user owns, newest first.
func (r *CardsPackRepo) ListByUser(ctx context.Context, userID string) ([]model.CardsPack, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, file_id, cards, created_at
		 FROM cardspacks
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing packs: %w", err)
	}
	defer rows.Close()

	packs := make([]model.CardsPack, 0)
	for rows.Next() {
		var p model.CardsPack
		if err := rows.Scan(&p.ID, &p.UserID, &p.FileID, &p.Cards, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning pack row: %w", err)
		}
		packs = append(packs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating packs: %w", err)
	}

	return packs, nil
}

// DeleteByFileForUser removes the pack for the given file, scoped to owner.
func (r *CardsPackRepo) DeleteByFileForUser(ctx context.Context, fileID, userID string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM cardspacks WHERE file_id = ? AND user_id = ?`,
		fileID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting pack for file %s: %w", fileID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("cards pack", fileID)
	}

	return nil
}

// DeleteAllForUser removes every pack the user owns. Used by /delete_data.
func (r *CardsPackRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.conn.ExecContext(ctx,
		`DELETE FROM cardspacks WHERE user_id = ?`, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting packs for user %s: %w", userID, err)
	}
	return nil
}
