package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/rs/xid"

	"github.com/zgjun/noto-backend/internal/apperror"
	"github.com/zgjun/noto-backend/internal/generator"
	"github.com/zgjun/noto-backend/internal/model"
)

// testLogger discards output — the tests assert behaviour, not log lines.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users map[string]*model.User // keyed by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.Conflict("username", user.Username)
		}
	}
	user.ID = xid.New().String()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) UpdateName(_ context.Context, id, name string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Name = name
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	return nil
}

// fakeFileRepo is an in-memory repository.FileRepository.
type fakeFileRepo struct {
	files map[string]*model.File
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*model.File)}
}

func (f *fakeFileRepo) Create(_ context.Context, file *model.File) error {
	file.ID = xid.New().String()
	f.files[file.ID] = file
	return nil
}

func (f *fakeFileRepo) GetForUser(_ context.Context, id, userID string) (*model.File, error) {
	file, ok := f.files[id]
	if !ok || file.UserID != userID {
		return nil, apperror.NotFound("file", id)
	}
	return file, nil
}

func (f *fakeFileRepo) ListByUser(_ context.Context, userID string) ([]model.FileInfo, error) {
	infos := make([]model.FileInfo, 0)
	for _, file := range f.files {
		if file.UserID == userID {
			infos = append(infos, file.Info())
		}
	}
	return infos, nil
}

func (f *fakeFileRepo) DeleteForUser(_ context.Context, id, userID string) error {
	file, ok := f.files[id]
	if !ok || file.UserID != userID {
		return apperror.NotFound("file", id)
	}
	delete(f.files, id)
	return nil
}

// fakeQuizRepo is an in-memory repository.QuizRepository keyed the way the
// real table is: at most one quiz per (user, file).
type fakeQuizRepo struct {
	quizzes map[string]*model.Quiz // keyed by quiz ID
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: make(map[string]*model.Quiz)}
}

func (f *fakeQuizRepo) ReplaceForFile(_ context.Context, quiz *model.Quiz) error {
	for id, q := range f.quizzes {
		if q.UserID == quiz.UserID && q.FileID == quiz.FileID {
			delete(f.quizzes, id)
		}
	}
	quiz.ID = xid.New().String()
	quiz.Score = model.ScoreUngraded
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeQuizRepo) GetByFileForUser(_ context.Context, fileID, userID string) (*model.Quiz, error) {
	for _, q := range f.quizzes {
		if q.FileID == fileID && q.UserID == userID {
			return q, nil
		}
	}
	return nil, apperror.NotFound("quiz", fileID)
}

func (f *fakeQuizRepo) GetByIDForUser(_ context.Context, id, userID string) (*model.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok || q.UserID != userID {
		return nil, apperror.NotFound("quiz", id)
	}
	return q, nil
}

func (f *fakeQuizRepo) ListByUser(_ context.Context, userID string) ([]model.Quiz, error) {
	out := make([]model.Quiz, 0)
	for _, q := range f.quizzes {
		if q.UserID == userID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuizRepo) DeleteByFileForUser(_ context.Context, fileID, userID string) error {
	for id, q := range f.quizzes {
		if q.FileID == fileID && q.UserID == userID {
			delete(f.quizzes, id)
			return nil
		}
	}
	return apperror.NotFound("quiz", fileID)
}

func (f *fakeQuizRepo) UpdateScore(_ context.Context, id, userID string, score model.Score) error {
	q, ok := f.quizzes[id]
	if !ok || q.UserID != userID {
		return apperror.NotFound("quiz", id)
	}
	q.Score = score
	return nil
}

func (f *fakeQuizRepo) DeleteAllForUser(_ context.Context, userID string) error {
	for id, q := range f.quizzes {
		if q.UserID == userID {
			delete(f.quizzes, id)
		}
	}
	return nil
}

// fakePackRepo is an in-memory repository.CardsPackRepository.
type fakePackRepo struct {
	packs map[string]*model.CardsPack
}

func newFakePackRepo() *fakePackRepo {
	return &fakePackRepo{packs: make(map[string]*model.CardsPack)}
}

func (f *fakePackRepo) ReplaceForFile(_ context.Context, pack *model.CardsPack) error {
	for id, p := range f.packs {
		if p.UserID == pack.UserID && p.FileID == pack.FileID {
			delete(f.packs, id)
		}
	}
	pack.ID = xid.New().String()
	f.packs[pack.ID] = pack
	return nil
}

func (f *fakePackRepo) GetByFileForUser(_ context.Context, fileID, userID string) (*model.CardsPack, error) {
	for _, p := range f.packs {
		if p.FileID == fileID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, apperror.NotFound("cards pack", fileID)
}

func (f *fakePackRepo) ListByUser(_ context.Context, userID string) ([]model.CardsPack, error) {
	out := make([]model.CardsPack, 0)
	for _, p := range f.packs {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePackRepo) DeleteByFileForUser(_ context.Context, fileID, userID string) error {
	for id, p := range f.packs {
		if p.FileID == fileID && p.UserID == userID {
			delete(f.packs, id)
			return nil
		}
	}
	return apperror.NotFound("cards pack", fileID)
}

func (f *fakePackRepo) DeleteAllForUser(_ context.Context, userID string) error {
	for id, p := range f.packs {
		if p.UserID == userID {
			delete(f.packs, id)
		}
	}
	return nil
}

// fakeGenerator returns a canned response (or error) and records what it
// was asked for.
type fakeGenerator struct {
	response string
	err      error

	calls     int
	lastKind  generator.Kind
	lastCount int
	lastMIME  string
}

func (f *fakeGenerator) Generate(_ context.Context, _ []byte, mimeType string, kind generator.Kind, count int) (string, error) {
	f.calls++
	f.lastKind = kind
	f.lastCount = count
	f.lastMIME = mimeType
	return f.response, f.err
}

// blockingGenerator waits for the context to expire, imitating a hung
// upstream model call.
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _ []byte, _ string, _ generator.Kind, _ int) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
