package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/infra/logging"
	"ghostwriter/internal/infra/security"
)

// TokenVerifier checks bearer tokens; *security.TokenService satisfies it.
type TokenVerifier interface {
	Issue(userID, email string) (string, time.Time, error)
	Verify(raw string) (*security.Claims, error)
}

const adminKeyHeader = "X-Admin-Key"

// Bearer rejects requests without a valid session token and stores the
// caller's id in the request context.
func Bearer(tokens TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeFailure(w, http.StatusUnauthorized, "NO_AUTH_HEADER", "Missing or invalid authorization header")
				return
			}
			claims, err := tokens.Verify(strings.TrimSpace(h[len("Bearer "):]))
			if err != nil {
				writeError(w, domain.ErrUnauthenticated)
				return
			}
			noteUser(w, claims.UserID)
			ctx := logging.WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminKey guards operator endpoints with a static key. An empty key
// disables them entirely.
func AdminKey(key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(adminKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeFailure(w, http.StatusUnauthorized, "ADMIN_ONLY", "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.auth.Register(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	s.issue(w, http.StatusCreated, u.ID, u.Email)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	s.issue(w, http.StatusOK, u.ID, u.Email)
}

func (s *Server) issue(w http.ResponseWriter, code int, uid, email string) {
	tok, exp, err := s.tokens.Issue(uid, email)
	if err != nil {
		s.log.Error().Err(err).Msg("issue token")
		writeError(w, err)
		return
	}
	writeData(w, code, authResponse{UID: uid, Email: email, Token: tok, ExpiresAt: exp})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.Me(r.Context(), logging.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

// handleLogout only acknowledges; clients drop the token.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
