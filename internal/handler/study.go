package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zgjun/noto-backend/internal/model"
	"github.com/zgjun/noto-backend/internal/service"
)

// StudyHandler serves the quiz and flashcard endpoints: generation,
// retrieval, scoring, and deletion.
type StudyHandler struct {
	study  *service.StudyService
	logger *slog.Logger
}

func NewStudyHandler(study *service.StudyService, logger *slog.Logger) *StudyHandler {
	return &StudyHandler{study: study, logger: logger}
}

type generateRequest struct {
	// Count is the desired number of questions/cards. Zero (or an absent
	// body) means "use the configured minimum"; out-of-range values are
	// clamped, matching the UI slider.
	Count int `json:"count"`
}

type scoreRequest struct {
	Score int `json:"score"`
}

// quizResponse is the external quiz shape. The owner ID stays internal.
type quizResponse struct {
	ID        string      `json:"id"`
	FileID    string      `json:"fileId"`
	Questions string      `json:"questions"`
	Score     model.Score `json:"score"`
}

type packResponse struct {
	ID     string `json:"id"`
	FileID string `json:"fileId"`
	Cards  string `json:"cards"`
}

func toQuizResponse(q *model.Quiz) quizResponse {
	return quizResponse{ID: q.ID, FileID: q.FileID, Questions: q.Questions, Score: q.Score}
}

func toPackResponse(p *model.CardsPack) packResponse {
	return packResponse{ID: p.ID, FileID: p.FileID, Cards: p.Cards}
}

// decodeGenerateRequest tolerates an empty body — POST /quizzes/{fileId}
// with no payload generates the default number of items.
func decodeGenerateRequest(r *http.Request) generateRequest {
	var req generateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	return req
}

// HandleGenerateQuiz creates or regenerates the quiz for a file.
//
// HTTP: POST /quizzes/{fileId}
// BODY: {"count": 8} (optional)
//
// Regeneration replaces the previous quiz wholesale: the returned quiz has
// a new ID and an ungraded score, and the old questions are gone.
func (h *StudyHandler) HandleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	req := decodeGenerateRequest(r)
	quiz, err := h.study.GenerateQuiz(r.Context(), user.ID, chi.URLParam(r, "fileId"), req.Count)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Quiz created successfully",
		"quiz":    toQuizResponse(quiz),
	})
}

// HandleGetQuiz returns the quiz generated from a file.
//
// HTTP: GET /quizzes/{fileId}
func (h *StudyHandler) HandleGetQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	quiz, err := h.study.GetQuizByFile(r.Context(), user.ID, chi.URLParam(r, "fileId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuizResponse(quiz))
}

// HandleDeleteQuiz removes the quiz generated from a file.
//
// HTTP: DELETE /quizzes/{fileId}
func (h *StudyHandler) HandleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.study.DeleteQuiz(r.Context(), user.ID, chi.URLParam(r, "fileId")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Quiz deleted successfully",
	})
}

// HandleGetQuizByID returns a quiz by its own ID (not its file's).
// Ownership applies exactly as for file-scoped lookups.
//
// HTTP: GET /quiz/{quizId}
func (h *StudyHandler) HandleGetQuizByID(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	quiz, err := h.study.GetQuizByID(r.Context(), user.ID, chi.URLParam(r, "quizId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuizResponse(quiz))
}

// HandleUpdateScore records a score against a quiz.
//
// HTTP: POST /update_quiz_score/{quizId}
// BODY: {"score": 80}
func (h *StudyHandler) HandleUpdateScore(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "bad_request", Message: "invalid JSON body",
		})
		return
	}

	quiz, err := h.study.SetScore(r.Context(), user.ID, chi.URLParam(r, "quizId"), req.Score)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Quiz score updated successfully",
		"quizId":  quiz.ID,
		"score":   quiz.Score,
	})
}

// HandleListQuizzes returns every quiz the caller owns.
//
// HTTP: GET /user_quizzes
func (h *StudyHandler) HandleListQuizzes(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	quizzes, err := h.study.ListQuizzes(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]quizResponse, 0, len(quizzes))
	for i := range quizzes {
		out = append(out, toQuizResponse(&quizzes[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGenerateCardsPack creates or regenerates the flashcard pack for a
// file.
//
// HTTP: POST /cardspacks/{fileId}
// BODY: {"count": 10} (optional)
func (h *StudyHandler) HandleGenerateCardsPack(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	req := decodeGenerateRequest(r)
	pack, err := h.study.GenerateCardsPack(r.Context(), user.ID, chi.URLParam(r, "fileId"), req.Count)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Cards pack created successfully",
		"pack":    toPackResponse(pack),
	})
}

// HandleGetCardsPack returns the pack generated from a file.
//
// HTTP: GET /cardspacks/{fileId}
func (h *StudyHandler) HandleGetCardsPack(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	pack, err := h.study.GetCardsPackByFile(r.Context(), user.ID, chi.URLParam(r, "fileId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPackResponse(pack))
}

// HandleDeleteCardsPack removes the pack generated from a file.
//
// HTTP: DELETE /cardspacks/{fileId}
func (h *StudyHandler) HandleDeleteCardsPack(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.study.DeleteCardsPack(r.Context(), user.ID, chi.URLParam(r, "fileId")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Cards pack deleted successfully",
	})
}

// HandleListCardsPacks returns every pack the caller owns.
//
// HTTP: GET /user_cardspacks
func (h *StudyHandler) HandleListCardsPacks(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	packs, err := h.study.ListCardsPacks(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]packResponse, 0, len(packs))
	for i := range packs {
		out = append(out, toPackResponse(&packs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDeleteData wipes the caller's quizzes and packs, keeping files.
//
// HTTP: POST /delete_data
func (h *StudyHandler) HandleDeleteData(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.study.DeleteData(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "All quizzes and cards packs deleted successfully.",
	})
}
