// Package auth provides JWT token issuance/validation, password hashing, and
// the request middleware that turns a bearer token into an authenticated user.
//
// AUTHENTICATION FLOW:
// 1. POST /signup stores the user with a bcrypt password hash
// 2. POST /signin verifies the password and issues a signed JWT
// 3. The client sends "Authorization: Bearer <token>" on every protected call
// 4. RequireUser middleware validates the token, loads the user row, and puts
//    it in the request context — handlers never verify anything themselves
//
// WHY JWT?
// JWT is stateless — the server doesn't store session data. Everything needed
// (user ID, username, expiry) is inside the signed token, and the HMAC
// signature ensures nobody can tamper with it without the secret key.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid. After expiry the client
// must sign in again.
const TokenTTL = 24 * time.Hour

const issuer = "noto-backend"

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations — keep it safe and rotate it
// periodically in production.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Claims is the JWT payload. It embeds jwt.RegisteredClaims (Subject,
// ExpiresAt, IssuedAt, Issuer...) and adds the username, so the identity can
// be displayed without a database round-trip.
//
// "sub" carries the internal user ID — the stable identifier every
// ownership check keys on.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Generate creates and signs a new JWT for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key for signing
// and verifying. Fine for a single-server deployment like this one.
func (s *TokenService) Generate(userID, username string) (string, error) {
	return s.generateWithTTL(userID, username, TokenTTL)
}

// generateWithTTL exists so expiry behaviour can be exercised in tests
// without waiting 24 hours.
func (s *TokenService) generateWithTTL(userID, username string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string, returning its claims.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches (prevents tokens minted by another app with our lib)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return c, nil
}
