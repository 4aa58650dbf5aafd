package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zgjun/noto-backend/internal/apperror"
	"github.com/zgjun/noto-backend/internal/generator"
	"github.com/zgjun/noto-backend/internal/model"
	"github.com/zgjun/noto-backend/internal/repository"
)

// StudyConfig bounds the generation requests.
type StudyConfig struct {
	// MinItems / MaxItems clamp the caller-supplied item count. The UI
	// slider offers 5–20; the orchestrator itself has no hard limit, so the
	// range is configuration, not code.
	MinItems int
	MaxItems int
	// Timeout bounds the external AI call. No database transaction is held
	// while waiting, so the only cost of a long timeout is an occupied
	// request handler.
	Timeout time.Duration
}

// DefaultStudyConfig matches the ranges the frontend exposes.
func DefaultStudyConfig() StudyConfig {
	return StudyConfig{
		MinItems: 5,
		MaxItems: 20,
		Timeout:  90 * time.Second,
	}
}

// StudyService is the generation orchestrator plus the scoring subsystem:
// it turns an owned file into a quiz or cards pack via the injected
// generator, enforces the one-artifact-per-(owner,file) lifecycle, and
// records quiz scores.
type StudyService struct {
	files   repository.FileRepository
	quizzes repository.QuizRepository
	packs   repository.CardsPackRepository
	gen     generator.Generator
	config  StudyConfig
	logger  *slog.Logger
}

func NewStudyService(
	files repository.FileRepository,
	quizzes repository.QuizRepository,
	packs repository.CardsPackRepository,
	gen generator.Generator,
	config StudyConfig,
	logger *slog.Logger,
) *StudyService {
	return &StudyService{
		files:   files,
		quizzes: quizzes,
		packs:   packs,
		gen:     gen,
		config:  config,
		logger:  logger,
	}
}

// GenerateQuiz creates (or regenerates) the quiz for one of the caller's
// files and returns the stored row.
//
// The flow is deliberately staged:
//  1. fetch the file (ownership check happens in the query — a foreign or
//     missing file is NotFound)
//  2. call the generator with NO database transaction open; this is the
//     slow part and can fail freely
//  3. validate the response; any parse/shape problem or the generator's
//     {"error": reason} sentinel aborts with nothing persisted, so a failed
//     regeneration leaves the previous quiz untouched
//  4. one short transaction replaces the old row with the new one
func (s *StudyService) GenerateQuiz(ctx context.Context, userID, fileID string, count int) (*model.Quiz, error) {
	count = s.clampCount(count)

	file, err := s.files.GetForUser(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	payload, err := s.generate(ctx, file, generator.KindQuiz, count)
	if err != nil {
		return nil, err
	}

	if _, err := model.ParseQuestions(payload); err != nil {
		s.logger.Warn("generator returned malformed quiz payload",
			slog.String("fileID", fileID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.GenerationFailed("model returned malformed questions")
	}

	quiz := &model.Quiz{
		UserID:    userID,
		FileID:    fileID,
		Questions: payload,
	}
	if err := s.quizzes.ReplaceForFile(ctx, quiz); err != nil {
		s.logger.Error("failed to store quiz",
			slog.String("fileID", fileID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("storing quiz: %w", err)
	}

	s.logger.Info("quiz generated",
		slog.String("id", quiz.ID),
		slog.String("fileID", fileID),
		slog.Int("count", count),
	)

	return quiz, nil
}

// GenerateCardsPack creates (or regenerates) the flashcard pack for one of
// the caller's files. Same staging as GenerateQuiz.
func (s *StudyService) GenerateCardsPack(ctx context.Context, userID, fileID string, count int) (*model.CardsPack, error) {
	count = s.clampCount(count)

	file, err := s.files.GetForUser(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	payload, err := s.generate(ctx, file, generator.KindFlashcards, count)
	if err != nil {
		return nil, err
	}

	if _, err := model.ParseCards(payload); err != nil {
		s.logger.Warn("generator returned malformed cards payload",
			slog.String("fileID", fileID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.GenerationFailed("model returned malformed cards")
	}

	pack := &model.CardsPack{
		UserID: userID,
		FileID: fileID,
		Cards:  payload,
	}
	if err := s.packs.ReplaceForFile(ctx, pack); err != nil {
		s.logger.Error("failed to store cards pack",
			slog.String("fileID", fileID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("storing cards pack: %w", err)
	}

	s.logger.Info("cards pack generated",
		slog.String("id", pack.ID),
		slog.String("fileID", fileID),
		slog.Int("count", count),
	)

	return pack, nil
}

// generate runs the bounded external call and applies the failure contract
// shared by both artifact kinds.
func (s *StudyService) generate(ctx context.Context, file *model.File, kind generator.Kind, count int) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	text, err := s.gen.Generate(genCtx, file.Data, file.ContentType, kind, count)
	if err != nil {
		if errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("generation timed out",
				slog.String("fileID", file.ID),
				slog.Duration("timeout", s.config.Timeout),
			)
			return "", apperror.GenerationTimeout()
		}
		s.logger.Error("generator call failed",
			slog.String("fileID", file.ID),
			slog.String("error", err.Error()),
		)
		return "", apperror.GenerationFailed("generator unavailable")
	}

	// The generator signals "cannot produce valid output from this file"
	// with a structured error object instead of an array.
	var sentinel struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &sentinel); err == nil && sentinel.Error != "" {
		return "", apperror.GenerationFailed(sentinel.Error)
	}

	return text, nil
}

func (s *StudyService) clampCount(count int) int {
	if count < s.config.MinItems {
		return s.config.MinItems
	}
	if count > s.config.MaxItems {
		return s.config.MaxItems
	}
	return count
}

// GetQuizByFile returns the caller's quiz for the given file. The file
// itself is checked first so "no such file" and "file without a quiz" both
// resolve transitively through ownership.
func (s *StudyService) GetQuizByFile(ctx context.Context, userID, fileID string) (*model.Quiz, error) {
	if _, err := s.files.GetForUser(ctx, fileID, userID); err != nil {
		return nil, err
	}
	return s.quizzes.GetByFileForUser(ctx, fileID, userID)
}

// GetQuizByID returns one of the caller's quizzes by quiz ID. Ownership is
// enforced here like everywhere else — a quiz belonging to another user is
// NotFound, full stop.
func (s *StudyService) GetQuizByID(ctx context.Context, userID, quizID string) (*model.Quiz, error) {
	return s.quizzes.GetByIDForUser(ctx, quizID, userID)
}

// ListQuizzes returns every quiz the caller owns.
func (s *StudyService) ListQuizzes(ctx context.Context, userID string) ([]model.Quiz, error) {
	return s.quizzes.ListByUser(ctx, userID)
}

// DeleteQuiz removes the caller's quiz for the given file.
func (s *StudyService) DeleteQuiz(ctx context.Context, userID, fileID string) error {
	if err := s.quizzes.DeleteByFileForUser(ctx, fileID, userID); err != nil {
		return err
	}
	s.logger.Info("quiz deleted", slog.String("fileID", fileID), slog.String("userID", userID))
	return nil
}

// SetScore records a score against one of the caller's quizzes.
//
// Scores live in [0, 100]; the ungraded sentinel is not settable from
// outside. A second grading overwrites the first — re-taking a quiz is a
// feature, so the state machine is one-way only in the sense that a quiz
// never returns to ungraded.
func (s *StudyService) SetScore(ctx context.Context, userID, quizID string, score int) (*model.Quiz, error) {
	if score < 0 || score > 100 {
		return nil, apperror.ValidationFailed("score", "score must be between 0 and 100")
	}

	if err := s.quizzes.UpdateScore(ctx, quizID, userID, model.Score(score)); err != nil {
		return nil, err
	}

	s.logger.Info("quiz scored",
		slog.String("quizID", quizID),
		slog.Int("score", score),
	)

	return s.quizzes.GetByIDForUser(ctx, quizID, userID)
}

// GetCardsPackByFile returns the caller's pack for the given file.
func (s *StudyService) GetCardsPackByFile(ctx context.Context, userID, fileID string) (*model.CardsPack, error) {
	if _, err := s.files.GetForUser(ctx, fileID, userID); err != nil {
		return nil, err
	}
	return s.packs.GetByFileForUser(ctx, fileID, userID)
}

// ListCardsPacks returns every pack the caller owns.
func (s *StudyService) ListCardsPacks(ctx context.Context, userID string) ([]model.CardsPack, error) {
	return s.packs.ListByUser(ctx, userID)
}

// DeleteCardsPack removes the caller's pack for the given file.
func (s *StudyService) DeleteCardsPack(ctx context.Context, userID, fileID string) error {
	if err := s.packs.DeleteByFileForUser(ctx, fileID, userID); err != nil {
		return err
	}
	s.logger.Info("cards pack deleted", slog.String("fileID", fileID), slog.String("userID", userID))
	return nil
}

// DeleteData wipes all of the caller's quizzes and cards packs. Files are
// retained — this is the "start my studying over" operation, not account
// deletion.
func (s *StudyService) DeleteData(ctx context.Context, userID string) error {
	if err := s.quizzes.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	if err := s.packs.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("study data deleted", slog.String("userID", userID))
	return nil
}
