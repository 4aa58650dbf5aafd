package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zgjun/noto-backend/internal/apperror"
	"github.com/zgjun/noto-backend/internal/model"
	"github.com/zgjun/noto-backend/internal/repository"
)

// MaxFileSize caps uploads at 20 MB — the blob lives in a database row and
// is re-sent to the generator on every regeneration, so "a PDF of lecture
// notes" is the intended scale, not a video archive.
const MaxFileSize = 20 << 20

// FileService handles uploaded note files. Files are immutable after
// upload: the only operations are store, read, list, and delete, all scoped
// to the owner.
type FileService struct {
	files  repository.FileRepository
	logger *slog.Logger
}

func NewFileService(files repository.FileRepository, logger *slog.Logger) *FileService {
	return &FileService{files: files, logger: logger}
}

// Upload stores a new file for the user.
func (s *FileService) Upload(ctx context.Context, userID, name, contentType string, data []byte) (*model.File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "untitled"
	}
	if len(data) == 0 {
		return nil, apperror.ValidationFailed("file", "no file uploaded")
	}
	if len(data) > MaxFileSize {
		return nil, apperror.ValidationFailed("file",
			fmt.Sprintf("file must be %d bytes or fewer", MaxFileSize))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file := &model.File{
		UserID:      userID,
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}

	if err := s.files.Create(ctx, file); err != nil {
		s.logger.Error("failed to store file",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("storing file: %w", err)
	}

	s.logger.Info("file uploaded",
		slog.String("id", file.ID),
		slog.String("userID", userID),
		slog.Int("bytes", len(data)),
	)

	return file, nil
}

// Get returns one of the caller's files, payload included.
func (s *FileService) Get(ctx context.Context, userID, id string) (*model.File, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "file ID is required")
	}
	return s.files.GetForUser(ctx, id, userID)
}

// List returns metadata for all of the caller's files.
func (s *FileService) List(ctx context.Context, userID string) ([]model.FileInfo, error) {
	files, err := s.files.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list files",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return files, nil
}

// Delete removes one of the caller's files. Artifacts generated from the
// file stay; they carry their own copy of the questions/cards and remain
// usable without the source material.
func (s *FileService) Delete(ctx context.Context, userID, id string) (*model.File, error) {
	file, err := s.files.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.files.DeleteForUser(ctx, id, userID); err != nil {
		return nil, err
	}

	s.logger.Info("file deleted", slog.String("id", id), slog.String("userID", userID))
	return file, nil
}
