package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/smartshuttle/shuttle/internal/auth"
	"github.com/smartshuttle/shuttle/internal/onboarding"
	"github.com/smartshuttle/shuttle/internal/passenger"
	"github.com/smartshuttle/shuttle/internal/storage"
	"github.com/smartshuttle/shuttle/internal/utils"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// userView is the public shape of a stored account.
type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewOf(u storage.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return utils.Wrap(http.StatusBadRequest, "Invalid JSON body", err)
	}
	return nil
}

// writeError maps err onto a JSON error response and logs server faults.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *utils.StatusError
	switch {
	case errors.As(err, &se):
		auth.JSONResponse(w, utils.StatusOf(err), map[string]string{"error": utils.MessageOf(err)})
	case errors.Is(err, onboarding.ErrSessionNotFound), errors.Is(err, storage.ErrNotFound):
		auth.JSONResponse(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
	case errors.Is(err, onboarding.ErrTooManySessions):
		auth.JSONResponse(w, http.StatusTooManyRequests, map[string]string{"error": "Too Many Requests"})
	case errors.Is(err, passenger.ErrUnknownFilter):
		auth.JSONResponse(w, http.StatusBadRequest, map[string]string{"error": "Unknown filter"})
	default:
		status, _ := auth.StatusFor(err)
		if status >= http.StatusInternalServerError {
			s.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		auth.ErrorResponse(w, err)
	}
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.DB.Ping(ctx); err != nil {
		s.Logger.Warn("health check failed", zap.Error(err))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	if _, err := fmt.Fprintln(w, "OK"); err != nil {
		s.Logger.Debug("write health response", zap.Error(err))
	}
}

// getTime returns the current server time in RFC3339 format
func (s *server) getTime(w http.ResponseWriter, r *http.Request) {
	auth.JSONResponse(w, http.StatusOK, map[string]string{"time": s.Now().Format(time.RFC3339)})
}

func (s *server) apiRegister(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.Auth.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, auth.AuthCookie(sess.Token, s.Secure))
	auth.JSONResponse(w, http.StatusCreated, sess)
}

func (s *server) apiLogin(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.Auth.Login(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, auth.AuthCookie(sess.Token, s.Secure))
	auth.JSONResponse(w, http.StatusOK, sess)
}

func (s *server) apiLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.LogoutCookie())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) me(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	u, err := s.Users.GetUser(r.Context(), user.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	auth.JSONResponse(w, http.StatusOK, map[string]interface{}{"user": viewOf(u)})
}

func (s *server) getTheme(w http.ResponseWriter, r *http.Request) {
	auth.JSONResponse(w, http.StatusOK, s.Theme.Snapshot())
}

func (s *server) lookupUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.Users.GetUserByEmail(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	auth.JSONResponse(w, http.StatusOK, map[string]interface{}{"user": viewOf(u)})
}
