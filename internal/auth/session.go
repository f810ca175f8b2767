package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// CookieName is the cookie carrying the signed token.
const CookieName = "auth_token"

// AuthCookie builds the cookie that stores token. Secure is only set in
// production so local development works over plain HTTP.
func AuthCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// LogoutCookie expires the auth cookie.
func LogoutCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// TokenFromRequest extracts the token from the auth cookie, falling back to
// an "Authorization: Bearer" header for the mobile client.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

type contextKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u AuthUser) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the authenticated user stored by the middleware.
func UserFromContext(ctx context.Context) (AuthUser, bool) {
	u, ok := ctx.Value(contextKey{}).(AuthUser)
	return u, ok
}

// Middleware resolves the caller's identity from the request token.
type Middleware struct {
	tokens *TokenIssuer
	logger *zap.Logger
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(tokens *TokenIssuer, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{tokens: tokens, logger: logger}
}

// UserFromRequest verifies the request token.
func (m *Middleware) UserFromRequest(r *http.Request) (AuthUser, error) {
	return m.tokens.VerifyToken(TokenFromRequest(r))
}

// OptionalUser stores the user in the request context when the token is
// valid and otherwise passes the request through untouched.
func (m *Middleware) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := m.UserFromRequest(r)
		if err != nil {
			if !errors.Is(err, ErrTokenMissing) {
				m.logger.Debug("ignoring bad token", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireUserAPI rejects anonymous API calls with 401.
func (m *Middleware) RequireUserAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := m.UserFromRequest(r)
		if err != nil {
			ErrorResponse(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireAdmin rejects authenticated non-admins with 403. It must run
// after RequireUserAPI.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			ErrorResponse(w, ErrTokenMissing)
			return
		}
		if !u.IsAdmin() {
			ErrorResponse(w, ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// JSONResponse writes a JSON response.
func JSONResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ErrorResponse writes err as {"error": message}, plus "fields" for
// validation failures.
func ErrorResponse(w http.ResponseWriter, err error) {
	status, message := StatusFor(err)
	body := map[string]interface{}{"error": message}
	var fe FieldErrors
	if errors.As(err, &fe) {
		body["fields"] = fe
	}
	JSONResponse(w, status, body)
}
