package server

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSubject reports a token without a usable subject claim.
var ErrNoSubject = errors.New("token has no subject")

type contextKey string

const subjectKey contextKey = "subject"

// subjectPattern restricts subjects to names safe to use as directory
// names on disk.
var subjectPattern = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,64}$`)

// IssueToken mints an HS256 bearer token for the given subject. The CLI
// uses this to provision device tokens for a self-hosted server.
func IssueToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	if !subjectPattern.MatchString(subject) {
		return "", ErrNoSubject
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// requireAuth validates the bearer token and stores its subject in the
// request context. Every snapshot route sits behind it; each subject sees
// only its own snapshot.
func requireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || !subjectPattern.MatchString(subject) {
				http.Error(w, "invalid subject", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// subjectFrom returns the authenticated subject stored by requireAuth.
func subjectFrom(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey).(string)
	return s
}
