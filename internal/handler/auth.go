// Package handler is the HTTP layer: it parses requests, calls the service
// layer, and formats responses. No business rules and no SQL live here.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zgjun/noto-backend/internal/service"
)

// AuthHandler serves account endpoints: signup, signin, profile, and
// account deletion.
type AuthHandler struct {
	auths  *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auths *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auths: auths, logger: logger}
}

type signupRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// HandleSignup creates an account.
//
// HTTP: POST /signup
// BODY: {"name": "Ana", "username": "ana1", "password": "secret1"}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "bad_request", Message: "invalid JSON body",
		})
		return
	}

	user, err := h.auths.Signup(r.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Success",
		"user":    user.Public(),
	})
}

// HandleSignin verifies credentials and returns a bearer token.
//
// HTTP: POST /signin
// RESPONSE: {"token": "...", "username": "ana1", "name": "Ana"}
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "bad_request", Message: "invalid JSON body",
		})
		return
	}

	result, err := h.auths.Signin(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":    result.Token,
		"username": result.User.Username,
		"name":     result.User.Name,
	})
}

// HandleProfile returns the caller's own profile.
//
// HTTP: GET /profile
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

// HandleUpdateProfile changes the caller's display name.
//
// HTTP: POST /update_profile
// BODY: {"name": "New Name"}
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "bad_request", Message: "invalid JSON body",
		})
		return
	}

	if err := h.auths.UpdateName(r.Context(), user.ID, req.Name); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    map[string]string{"name": req.Name},
	})
}

// HandleGetUser returns another user's public fields.
//
// HTTP: GET /get_user/{id}
func (h *AuthHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "bad_request", Message: "user ID is required",
		})
		return
	}

	publicUser, err := h.auths.GetPublicUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, publicUser)
}

// HandleDeleteAccount removes the caller's account and everything it owns.
//
// HTTP: DELETE /delete_account
func (h *AuthHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.auths.DeleteAccount(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Account deleted successfully",
	})
}
