package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"net/http"
	"strings"
)

// AdminTokenHeader carries the admin token when no Authorization header is set.
const AdminTokenHeader = "X-Admin-Token"

// TokenAuth guards mutating routes with a shared admin token.
// The zero value, or one built from an empty token, admits everything.
type TokenAuth struct {
	digest []byte
}

// NewTokenAuth returns an authenticator for token. An empty token
// disables the check.
func NewTokenAuth(token string) *TokenAuth {
	if token == "" {
		return &TokenAuth{}
	}
	return &TokenAuth{digest: digest(token)}
}

func digest(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

// Enabled reports whether requests need a token.
func (a *TokenAuth) Enabled() bool {
	return a != nil && a.digest != nil
}

// Validate checks the bearer token or X-Admin-Token header.
func (a *TokenAuth) Validate(r *http.Request) bool {
	if !a.Enabled() {
		return true
	}
	provided := r.Header.Get(AdminTokenHeader)
	if auth := r.Header.Get("Authorization"); auth != "" {
		if tok, ok := strings.CutPrefix(auth, "Bearer "); ok {
			provided = tok
		}
	}
	if provided == "" {
		return false
	}
	// compare fixed-length digests so timing does not leak the token length
	return hmac.Equal(digest(provided), a.digest)
}

// Middleware rejects unauthenticated requests with 401.
func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Validate(r) {
			RecordConnectionRejected("unauthorized")
			w.Header().Set("WWW-Authenticate", `Bearer realm="manhack-sim"`)
			writeError(w, http.StatusUnauthorized, "admin token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthStatus is returned by GET /api/auth.
type AuthStatus struct {
	Required      bool `json:"required"`
	Authenticated bool `json:"authenticated"`
}

func (a *TokenAuth) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AuthStatus{
		Required:      a.Enabled(),
		Authenticated: a.Enabled() && a.Validate(r),
	})
}
