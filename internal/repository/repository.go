// Package repository defines the persistence interfaces the service layer
// depends on. The SQLite implementation lives in repository/sqlite; tests
// substitute in-memory mocks.
//
// OWNERSHIP SCOPING AT THE INTERFACE:
// Every read or delete reachable from a caller-supplied identifier takes the
// owner's user ID and filters on it in the query itself. There is
// deliberately no GetQuizByID(id) without a user ID — an unscoped lookup at
// this boundary is a latent authorization bypass waiting for a handler to
// forget the check.
package repository

import (
	"context"

	"github.com/zgjun/noto-backend/internal/model"
)

type UserRepository interface {
	// Create inserts a new user. Returns apperror.ErrConflict if the
	// username is already taken.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UpdateName changes the display name; username and ID are immutable.
	UpdateName(ctx context.Context, id, name string) error
	// Delete removes the user and, in the same transaction, every quiz,
	// cards pack, and file they own.
	Delete(ctx context.Context, id string) error
}

type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	// GetForUser returns the file only if it belongs to userID.
	GetForUser(ctx context.Context, id, userID string) (*model.File, error)
	// ListByUser returns metadata only — payloads are fetched one at a time.
	ListByUser(ctx context.Context, userID string) ([]model.FileInfo, error)
	DeleteForUser(ctx context.Context, id, userID string) error
}

type QuizRepository interface {
	// ReplaceForFile atomically deletes any existing quiz for
	// (quiz.UserID, quiz.FileID) and inserts the new one. Readers never
	// observe the gap, and a failure leaves the old row in place.
	ReplaceForFile(ctx context.Context, quiz *model.Quiz) error
	GetByFileForUser(ctx context.Context, fileID, userID string) (*model.Quiz, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*model.Quiz, error)
	ListByUser(ctx context.Context, userID string) ([]model.Quiz, error)
	DeleteByFileForUser(ctx context.Context, fileID, userID string) error
	// UpdateScore overwrites the score; re-grading is allowed.
	UpdateScore(ctx context.Context, id, userID string, score model.Score) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

type CardsPackRepository interface {
	ReplaceForFile(ctx context.Context, pack *model.CardsPack) error
	GetByFileForUser(ctx context.Context, fileID, userID string) (*model.CardsPack, error)
	ListByUser(ctx context.Context, userID string) ([]model.CardsPack, error)
	DeleteByFileForUser(ctx context.Context, fileID, userID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
