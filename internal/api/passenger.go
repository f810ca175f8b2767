package api

import (
	"net/http"

	"github.com/smartshuttle/shuttle/internal/auth"
	"github.com/smartshuttle/shuttle/internal/passenger"
)

func viewer(r *http.Request) passenger.Viewer {
	u, _ := auth.UserFromContext(r.Context())
	return passenger.Viewer{UserID: u.UserID, Name: u.Name}
}

func (s *server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.Passenger.Dashboard(r.Context(), viewer(r), s.Now().In(s.Location))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	auth.JSONResponse(w, http.StatusOK, d)
}

func (s *server) tracking(w http.ResponseWriter, r *http.Request) {
	auth.JSONResponse(w, http.StatusOK, s.Passenger.Tracking())
}

func (s *server) trips(w http.ResponseWriter, r *http.Request) {
	auth.JSONResponse(w, http.StatusOK, s.Passenger.Trips())
}

func (s *server) profile(w http.ResponseWriter, r *http.Request) {
	p, err := s.Passenger.Profile(r.Context(), viewer(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	auth.JSONResponse(w, http.StatusOK, p)
}

func (s *server) notifications(w http.ResponseWriter, r *http.Request) {
	feed, err := s.Passenger.Notifications(r.Context(), viewer(r).UserID, r.URL.Query().Get("filter"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	auth.JSONResponse(w, http.StatusOK, feed)
}

func (s *server) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID := viewer(r).UserID
	if err := s.Passenger.MarkAllRead(r.Context(), userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	feed, err := s.Passenger.Notifications(r.Context(), userID, r.URL.Query().Get("filter"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	auth.JSONResponse(w, http.StatusOK, feed)
}
