package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/zgjun/noto-backend/internal/model"
	"github.com/zgjun/noto-backend/internal/repository"
)

// contextKey is an unexported type used for context keys in this package.
// Using a package-private type prevents collisions: only this package can
// create a key of type contextKey, so only this package can read or write
// the authenticated user in the context.
type contextKey string

const userKey contextKey = "user"

// RequireUser is the authorization gate applied to every protected route.
//
// It performs BOTH checks the rest of the app relies on:
//  1. the bearer token parses, is unexpired, and carries a valid signature
//  2. the user the token references still exists (a token for a deleted
//     account is just as unauthenticated as no token at all)
//
// On success the resolved *model.User is stored in the request context and
// handlers read it via UserFromContext. No handler performs its own token
// verification or user lookup — duplicating the check ad hoc per handler is
// exactly how ownership bugs slip in.
func RequireUser(tokens *TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := tokens.Validate(tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := users.GetByID(r.Context(), claims.Subject)
			if err != nil {
				// Account deleted after the token was issued.
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user from the request context.
// Returns (nil, false) when the middleware did not run — which on a
// protected route means a wiring mistake, not an anonymous caller.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthenticated","message":"valid authentication required"}`))
}
