package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/smartshuttle/shuttle/internal/auth"
	"github.com/smartshuttle/shuttle/internal/onboarding"
	"github.com/smartshuttle/shuttle/internal/utils"
)

type onboardingResponse struct {
	ID    string           `json:"id"`
	Moved *bool            `json:"moved,omitempty"`
	State onboarding.State `json:"state"`
}

type gotoRequest struct {
	Step *int `json:"step"`
}

type gestureRequest struct {
	Phase string   `json:"phase"`
	X     *float64 `json:"x"`
}

func (s *server) onboardingSteps(w http.ResponseWriter, r *http.Request) {
	auth.JSONResponse(w, http.StatusOK, map[string]interface{}{"steps": s.Onboarding.Steps()})
}

func (s *server) createOnboarding(w http.ResponseWriter, r *http.Request) {
	id, st, err := s.Onboarding.Create()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	auth.JSONResponse(w, http.StatusCreated, onboardingResponse{ID: id, State: st})
}

func (s *server) getOnboarding(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctrl, err := s.Onboarding.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	auth.JSONResponse(w, http.StatusOK, onboardingResponse{ID: id, State: ctrl.State()})
}

// navigate runs move against the session and reports the resulting state.
func (s *server) navigate(w http.ResponseWriter, r *http.Request, move func(*onboarding.Controller) bool) {
	id := mux.Vars(r)["id"]
	ctrl, err := s.Onboarding.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	moved := move(ctrl)
	auth.JSONResponse(w, http.StatusOK, onboardingResponse{ID: id, Moved: &moved, State: ctrl.State()})
}

func (s *server) onboardingNext(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, (*onboarding.Controller).Next)
}

func (s *server) onboardingBack(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, (*onboarding.Controller).Back)
}

func (s *server) onboardingGoTo(w http.ResponseWriter, r *http.Request) {
	var req gotoRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Step == nil {
		s.writeError(w, r, utils.New(http.StatusBadRequest, "step is required"))
		return
	}
	s.navigate(w, r, func(c *onboarding.Controller) bool { return c.GoToStep(*req.Step) })
}

func (s *server) onboardingGesture(w http.ResponseWriter, r *http.Request) {
	var req gestureRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.X == nil {
		s.writeError(w, r, utils.New(http.StatusBadRequest, "x is required"))
		return
	}
	x := *req.X
	switch req.Phase {
	case "start":
		s.navigate(w, r, func(c *onboarding.Controller) bool {
			c.GestureStart(x)
			return false
		})
	case "end":
		s.navigate(w, r, func(c *onboarding.Controller) bool { return c.GestureEnd(x) })
	default:
		s.writeError(w, r, utils.New(http.StatusBadRequest, `phase must be "start" or "end"`))
	}
}

func (s *server) completeOnboarding(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Onboarding.Complete(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	auth.JSONResponse(w, http.StatusOK, map[string]interface{}{"id": id, "completed": true})
}

func (s *server) dismissOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := s.Onboarding.Dismiss(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
