// Package api wires the HTTP surface: server-rendered pages, the JSON API
// used by the mobile client, and the onboarding carousel host.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/smartshuttle/shuttle/internal/auth"
	"github.com/smartshuttle/shuttle/internal/onboarding"
	"github.com/smartshuttle/shuttle/internal/passenger"
	"github.com/smartshuttle/shuttle/internal/storage"
	"github.com/smartshuttle/shuttle/internal/theme"
	"go.uber.org/zap"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router needs. Secure, Location and Now
// are optional.
type Deps struct {
	Logger     *zap.Logger
	Auth       *auth.Service
	Users      storage.UserStore
	Passenger  *passenger.Service
	Onboarding *onboarding.Registry
	Theme      theme.Theme
	DB         Pinger
	// Secure marks the auth cookie Secure. Set in production.
	Secure bool
	// Location is the passengers' zone. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

type server struct {
	Deps
	mw    *auth.Middleware
	pages *pages
}

// NewRouter validates d and returns the router serving pages, the JSON API
// and the onboarding endpoints.
func NewRouter(d Deps) (*mux.Router, error) {
	switch {
	case d.Auth == nil:
		return nil, errors.New("api: auth service is required")
	case d.Users == nil:
		return nil, errors.New("api: user store is required")
	case d.Passenger == nil:
		return nil, errors.New("api: passenger service is required")
	case d.Onboarding == nil:
		return nil, errors.New("api: onboarding registry is required")
	case d.DB == nil:
		return nil, errors.New("api: database is required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	p, err := loadPages()
	if err != nil {
		return nil, err
	}
	s := &server{
		Deps:  d,
		mw:    auth.NewMiddleware(d.Auth.Tokens(), d.Logger),
		pages: p,
	}

	r := mux.NewRouter()
	r.Use(requestLogger(d.Logger))

	r.HandleFunc("/health", s.health).Methods("GET")
	r.HandleFunc("/time", s.getTime).Methods("GET")

	// Pages
	r.Handle("/", s.mw.OptionalUser(http.HandlerFunc(s.home))).Methods("GET")
	r.Handle("/login", s.mw.OptionalUser(http.HandlerFunc(s.loginPage))).Methods("GET")
	r.Handle("/login", s.mw.OptionalUser(http.HandlerFunc(s.loginSubmit))).Methods("POST")
	r.Handle("/register", s.mw.OptionalUser(http.HandlerFunc(s.registerPage))).Methods("GET")
	r.Handle("/register", s.mw.OptionalUser(http.HandlerFunc(s.registerSubmit))).Methods("POST")
	r.HandleFunc("/logout", s.logout).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", s.apiRegister).Methods("POST")
	api.HandleFunc("/auth/login", s.apiLogin).Methods("POST")
	api.HandleFunc("/auth/logout", s.apiLogout).Methods("POST")
	api.HandleFunc("/theme", s.getTheme).Methods("GET")
	api.Handle("/me", s.private(s.me)).Methods("GET")

	api.Handle("/passenger/dashboard", s.private(s.dashboard)).Methods("GET")
	api.Handle("/passenger/tracking", s.private(s.tracking)).Methods("GET")
	api.Handle("/passenger/trips", s.private(s.trips)).Methods("GET")
	api.Handle("/passenger/profile", s.private(s.profile)).Methods("GET")
	api.Handle("/passenger/notifications", s.private(s.notifications)).Methods("GET")
	api.Handle("/passenger/notifications/read", s.private(s.markNotificationsRead)).Methods("POST")

	api.Handle("/admin/users/{email}", s.admin(s.lookupUser)).Methods("GET")

	api.HandleFunc("/onboarding/steps", s.onboardingSteps).Methods("GET")
	api.HandleFunc("/onboarding/sessions", s.createOnboarding).Methods("POST")
	api.HandleFunc("/onboarding/sessions/{id}", s.getOnboarding).Methods("GET")
	api.HandleFunc("/onboarding/sessions/{id}", s.dismissOnboarding).Methods("DELETE")
	api.HandleFunc("/onboarding/sessions/{id}/next", s.onboardingNext).Methods("POST")
	api.HandleFunc("/onboarding/sessions/{id}/back", s.onboardingBack).Methods("POST")
	api.HandleFunc("/onboarding/sessions/{id}/goto", s.onboardingGoTo).Methods("POST")
	api.HandleFunc("/onboarding/sessions/{id}/gesture", s.onboardingGesture).Methods("POST")
	api.HandleFunc("/onboarding/sessions/{id}/complete", s.completeOnboarding).Methods("POST")

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.JSONResponse(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
	})
	return r, nil
}

func (s *server) private(h http.HandlerFunc) http.Handler {
	return s.mw.RequireUserAPI(h)
}

func (s *server) admin(h http.HandlerFunc) http.Handler {
	return s.mw.RequireUserAPI(s.mw.RequireAdmin(h))
}
