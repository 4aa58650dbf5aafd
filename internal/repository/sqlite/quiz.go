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

// QuizRepo implements repository.QuizRepository on SQLite.
type QuizRepo struct {
	conn *sql.DB
}

var _ repository.QuizRepository = (*QuizRepo)(nil)

// ReplaceForFile atomically replaces the quiz for (quiz.UserID, quiz.FileID).
//
// The delete and the insert commit together, so:
//   - a concurrent reader sees either the old quiz or the new one, never
//     the "deleted but not yet reinserted" gap
//   - a failure at any point rolls back and the old quiz survives intact
//
// The quiz ID is freshly generated on every call — replacement is
// delete-then-recreate, not update-in-place, so regeneration always yields
// a new identifier. The score resets to the ungraded sentinel.
func (r *QuizRepo) ReplaceForFile(ctx context.Context, quiz *model.Quiz) error {
	quiz.ID = xid.New().String()
	quiz.Score = model.ScoreUngraded
	quiz.CreatedAt = time.Now()

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning quiz replace tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM quizzes WHERE user_id = ? AND file_id = ?`,
		quiz.UserID, quiz.FileID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting previous quiz: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quizzes (id, user_id, file_id, score, questions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		quiz.ID,
		quiz.UserID,
		quiz.FileID,
		int(quiz.Score),
		quiz.Questions,
		quiz.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting quiz: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing quiz replace tx: %w", err)
	}
	return nil
}

// GetByFileForUser returns the quiz generated from the given file, scoped
// to its owner.
func (r *QuizRepo) GetByFileForUser(ctx context.Context, fileID, userID string) (*model.Quiz, error) {
	return r.getQuiz(ctx, `WHERE file_id = ? AND user_id = ?`, fileID, userID)
}

// GetByIDForUser returns a quiz by its own ID, scoped to its owner. There
// is no unscoped variant — looking up someone else's quiz by guessing IDs
// must behave exactly like looking up a quiz that doesn't exist.
func (r *QuizRepo) GetByIDForUser(ctx context.Context, id, userID string) (*model.Quiz, error) {
	return r.getQuiz(ctx, `WHERE id = ? AND user_id = ?`, id, userID)
}

func (r *QuizRepo) getQuiz(ctx context.Context, where string, args ...any) (*model.Quiz, error) {
	var q model.Quiz
	var score int

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, file_id, score, questions, created_at
		 FROM quizzes `+where,
		args...,
	).Scan(
		&q.ID,
		&q.UserID,
		&q.FileID,
		&score,
		&q.Questions,
		&q.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("quiz", fmt.Sprintf("%v", args[0]))
		}
		return nil, fmt.Errorf("sqlite: getting quiz: %w", err)
	}
	q.Score = model.Score(score)

	return &q, nil
}

// ListByUser returns every quiz the user owns, newest first.
func (r *QuizRepo) ListByUser(ctx context.Context, userID string) ([]model.Quiz, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, file_id, score, questions, created_at
		 FROM quizzes
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]model.Quiz, 0)
	for rows.Next() {
		var q model.Quiz
		var score int
		if err := rows.Scan(&q.ID, &q.UserID, &q.FileID, &score, &q.Questions, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning quiz row: %w", err)
		}
		q.Score = model.Score(score)
		quizzes = append(quizzes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating quizzes: %w", err)
	}

	return quizzes, nil
}

// DeleteByFileForUser removes the quiz for the given file, scoped to owner.
func (r *QuizRepo) DeleteByFileForUser(ctx context.Context, fileID, userID string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM quizzes WHERE file_id = ? AND user_id = ?`,
		fileID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting quiz for file %s: %w", fileID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("quiz", fileID)
	}

	return nil
}

// UpdateScore overwrites the stored score for an owned quiz.
func (r *QuizRepo) UpdateScore(ctx context.Context, id, userID string, score model.Score) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE quizzes SET score = ? WHERE id = ? AND user_id = ?`,
		int(score), id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating score for quiz %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("quiz", id)
	}

	return nil
}

// DeleteAllForUser removes every quiz the user owns. Used by /delete_data.
func (r *QuizRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.conn.ExecContext(ctx,
		`DELETE FROM quizzes WHERE user_id = ?`, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting quizzes for user %s: %w", userID, err)
	}
	return nil
}
