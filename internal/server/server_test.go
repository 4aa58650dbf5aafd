package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zgjun/noto-backend/internal/generator"
	"github.com/zgjun/noto-backend/internal/service"
)

const (
	testQuestions = `[{"question":"What is photosynthesis?","options":["a","b","c","d"],"answer_idx":1,"explanation":"chlorophyll"}]`
	testCards     = `[{"front":"photosynthesis","back":"light to sugar"}]`
)

// scriptedGenerator answers with a fixed payload per artifact kind, so the
// whole stack runs without the real Gemini API.
type scriptedGenerator struct {
	quiz  string
	cards string
}

func (g *scriptedGenerator) Generate(_ context.Context, _ []byte, _ string, kind generator.Kind, _ int) (string, error) {
	if kind == generator.KindFlashcards {
		return g.cards, nil
	}
	return g.quiz, nil
}

// testEnv is a fully wired server over a temp-file database plus the client
// helpers the scenario tests use.
type testEnv struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newTestEnv(t *testing.T, gen generator.Generator) *testEnv {
	t.Helper()

	cfg := Config{
		Port:      0,
		DBPath:    filepath.Join(t.TempDir(), "test.db"),
		JWTSecret: "test-secret-at-least-16-chars!!",
		Study:     service.DefaultStudyConfig(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv, err := New(cfg, gen, logger)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	return &testEnv{t: t, handler: srv.Handler()}
}

// do sends a JSON request (with the bearer token when one is set) and
// decodes the JSON response into a generic map.
func (e *testEnv) do(method, path string, body any) (int, map[string]any) {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)

	var decoded map[string]any
	if len(rr.Body.Bytes()) > 0 {
		_ = json.Unmarshal(rr.Body.Bytes(), &decoded)
	}
	return rr.Code, decoded
}

// signup registers a user and signs them in; subsequent requests carry the
// issued token.
func (e *testEnv) signup(name, username, password string) {
	e.t.Helper()

	status, _ := e.do(http.MethodPost, "/signup", map[string]string{
		"name": name, "username": username, "password": password,
	})
	require.Equal(e.t, http.StatusOK, status, "signup failed")

	status, body := e.do(http.MethodPost, "/signin", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(e.t, http.StatusOK, status, "signin failed")
	token, _ := body["token"].(string)
	require.NotEmpty(e.t, token)
	e.token = token
}

// upload posts a multipart file and returns its ID.
func (e *testEnv) upload(filename, content string) string {
	e.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(e.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)

	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	require.Equal(e.t, http.StatusOK, rr.Code, "upload failed: %s", rr.Body.String())

	var body map[string]any
	require.NoError(e.t, json.Unmarshal(rr.Body.Bytes(), &body))
	id, _ := body["id"].(string)
	require.NotEmpty(e.t, id)
	return id
}

func TestStudyFlow(t *testing.T) {
	env := newTestEnv(t, &scriptedGenerator{quiz: testQuestions, cards: testCards})
	env.signup("Ana", "ana1", "secret1")

	fileID := env.upload("biology.pdf", "notes about photosynthesis")

	// Generate a quiz from the file.
	status, body := env.do(http.MethodPost, "/quizzes/"+fileID, map[string]int{"count": 10})
	require.Equal(t, http.StatusOK, status)
	quiz, _ := body["quiz"].(map[string]any)
	require.NotNil(t, quiz)
	quizID, _ := quiz["id"].(string)
	assert.NotEmpty(t, quizID)
	assert.Equal(t, testQuestions, quiz["questions"])
	assert.Equal(t, float64(-1), quiz["score"], "new quiz starts ungraded")

	// Read it back both ways.
	status, body = env.do(http.MethodGet, "/quizzes/"+fileID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, quizID, body["id"])

	status, body = env.do(http.MethodGet, "/quiz/"+quizID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, quizID, body["id"])

	// Grade it.
	status, body = env.do(http.MethodPost, "/update_quiz_score/"+quizID, map[string]int{"score": 85})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(85), body["score"])

	// Regeneration mints a new quiz and discards the graded one.
	status, body = env.do(http.MethodPost, "/quizzes/"+fileID, nil)
	require.Equal(t, http.StatusOK, status)
	newQuiz, _ := body["quiz"].(map[string]any)
	require.NotNil(t, newQuiz)
	assert.NotEqual(t, quizID, newQuiz["id"])
	assert.Equal(t, float64(-1), newQuiz["score"])

	status, _ = env.do(http.MethodGet, "/quiz/"+quizID, nil)
	assert.Equal(t, http.StatusNotFound, status, "replaced quiz must be gone")

	// Flashcards from the same file.
	status, body = env.do(http.MethodPost, "/cardspacks/"+fileID, map[string]int{"count": 8})
	require.Equal(t, http.StatusOK, status)
	pack, _ := body["pack"].(map[string]any)
	require.NotNil(t, pack)
	assert.Equal(t, testCards, pack["cards"])

	// Wipe study data; files survive.
	status, _ = env.do(http.MethodPost, "/delete_data", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(http.MethodGet, "/quizzes/"+fileID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(http.MethodGet, "/cardspacks/"+fileID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(http.MethodGet, "/files/"+fileID, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, &scriptedGenerator{quiz: testQuestions, cards: testCards})

	// No token set — every protected route answers 401.
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/files"},
		{http.MethodGet, "/profile"},
		{http.MethodGet, "/user_quizzes"},
		{http.MethodPost, "/quizzes/some-file"},
		{http.MethodDelete, "/delete_account"},
	} {
		status, _ := env.do(route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s", route.method, route.path)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t, &scriptedGenerator{quiz: testQuestions, cards: testCards})

	env.signup("Ana", "ana1", "secret1")
	fileID := env.upload("ana.pdf", "ana's notes")
	status, body := env.do(http.MethodPost, "/quizzes/"+fileID, nil)
	require.Equal(t, http.StatusOK, status)
	quiz := body["quiz"].(map[string]any)
	quizID := quiz["id"].(string)

	// A second account probing Ana's IDs sees 404 everywhere — never 403,
	// never the resource.
	env.signup("Bela", "bela2", "secret2")

	status, _ = env.do(http.MethodGet, "/files/"+fileID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(http.MethodGet, "/quizzes/"+fileID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(http.MethodGet, "/quiz/"+quizID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(http.MethodPost, "/update_quiz_score/"+quizID, map[string]int{"score": 100})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(http.MethodDelete, "/files/"+fileID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGenerationFailureKeepsPreviousQuiz(t *testing.T) {
	gen := &scriptedGenerator{quiz: testQuestions, cards: testCards}
	env := newTestEnv(t, gen)
	env.signup("Ana", "ana1", "secret1")
	fileID := env.upload("notes.pdf", "content")

	status, body := env.do(http.MethodPost, "/quizzes/"+fileID, nil)
	require.Equal(t, http.StatusOK, status)
	firstID := body["quiz"].(map[string]any)["id"].(string)

	// The model refuses the second run; the stored quiz is untouched.
	gen.quiz = `{"error":"file contains no study material"}`
	status, body = env.do(http.MethodPost, "/quizzes/"+fileID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "generation_failed", body["error"])

	status, body = env.do(http.MethodGet, "/quizzes/"+fileID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, firstID, body["id"])
}

func TestSignupValidationAndConflict(t *testing.T) {
	env := newTestEnv(t, &scriptedGenerator{quiz: testQuestions, cards: testCards})

	status, body := env.do(http.MethodPost, "/signup", map[string]string{
		"name": "Ana", "username": "ana1", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body["error"])

	status, _ = env.do(http.MethodPost, "/signup", map[string]string{
		"name": "Ana", "username": "ana1", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(http.MethodPost, "/signup", map[string]string{
		"name": "Other", "username": "ana1", "password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "conflict", body["error"])
}

func TestSigninRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t, &scriptedGenerator{quiz: testQuestions, cards: testCards})
	env.signup("Ana", "ana1", "secret1")
	env.token = ""

	for _, creds := range []map[string]string{
		{"username": "ana1", "password": "wrong"},
		{"username": "nobody", "password": "secret1"},
	} {
		status, body := env.do(http.MethodPost, "/signin", creds)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid_credentials", body["error"], "creds %v", creds)
	}
}

func TestProfileLifecycle(t *testing.T) {
	env := newTestEnv(t, &scriptedGenerator{quiz: testQuestions, cards: testCards})
	env.signup("Ana", "ana1", "secret1")

	status, body := env.do(http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ana", body["name"])
	assert.Equal(t, "ana1", body["username"])
	userID, _ := body["id"].(string)
	require.NotEmpty(t, userID)

	status, _ = env.do(http.MethodPost, "/update_profile", map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(http.MethodGet, fmt.Sprintf("/get_user/%s", userID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Renamed", body["name"])
}

func TestDeleteAccountInvalidatesToken(t *testing.T) {
	env := newTestEnv(t, &scriptedGenerator{quiz: testQuestions, cards: testCards})
	env.signup("Ana", "ana1", "secret1")
	env.upload("notes.pdf", "content")

	status, _ := env.do(http.MethodDelete, "/delete_account", nil)
	require.Equal(t, http.StatusOK, status)

	// The JWT is still cryptographically valid but the account is gone —
	// the middleware must refuse it.
	status, _ = env.do(http.MethodGet, "/files", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestFileDeleteKeepsArtifacts(t *testing.T) {
	env := newTestEnv(t, &scriptedGenerator{quiz: testQuestions, cards: testCards})
	env.signup("Ana", "ana1", "secret1")
	fileID := env.upload("notes.pdf", "content")

	status, body := env.do(http.MethodPost, "/quizzes/"+fileID, nil)
	require.Equal(t, http.StatusOK, status)
	quizID := body["quiz"].(map[string]any)["id"].(string)

	status, _ = env.do(http.MethodDelete, "/files/"+fileID, nil)
	require.Equal(t, http.StatusOK, status)

	// The quiz carries its own copy of the questions and survives the
	// source file.
	status, body = env.do(http.MethodGet, "/quiz/"+quizID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testQuestions, body["questions"])

	// But regeneration needs the file and now fails.
	status, _ = env.do(http.MethodPost, "/quizzes/"+fileID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
