package onboarding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown, dismissed, completed or
// expired carousel sessions.
var ErrSessionNotFound = errors.New("onboarding session not found")

// ErrTooManySessions is returned by Create when the live session limit is
// reached and none of the live sessions has expired.
var ErrTooManySessions = errors.New("too many onboarding sessions")

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry hosts one Controller per visitor. It supplies the step
// configuration, and treats completion as the signal to discard the
// session.
type Registry struct {
	steps  []Step
	opts   Options
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
	limit  int

	mu       sync.Mutex
	sessions map[string]*session
}

// NewRegistry creates a registry. Sessions idle for longer than ttl are
// removed by Sweep.
func NewRegistry(steps []Step, opts Options, ttl time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		steps:    append([]Step(nil), steps...),
		opts:     opts,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// SetMaxSessions bounds the number of live sessions. Zero or less means
// unbounded.
func (r *Registry) SetMaxSessions(n int) {
	r.mu.Lock()
	r.limit = n
	r.mu.Unlock()
}

// Steps returns the configured steps.
func (r *Registry) Steps() []Step {
	return append([]Step(nil), r.steps...)
}

// Create mounts a new carousel and returns its id and initial state. When
// the session limit is reached it sweeps expired sessions once and then
// fails with ErrTooManySessions.
func (r *Registry) Create() (string, State, error) {
	id := uuid.New().String()
	opts := r.opts
	opts.OnComplete = func() { r.finish(id) }

	ctrl, err := New(r.steps, opts)
	if err != nil {
		return "", State{}, err
	}

	if !r.admit(id, ctrl) {
		r.Sweep()
		if !r.admit(id, ctrl) {
			ctrl.Close()
			r.logger.Warn("onboarding session limit reached", zap.Int("limit", r.maxSessions()))
			return "", State{}, ErrTooManySessions
		}
	}

	r.logger.Debug("onboarding session started", zap.String("session", id))
	return id, ctrl.State(), nil
}

// Get returns the controller for id and refreshes its idle timer.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s.ctrl, nil
}

// Complete fires the completion signal for id, which also discards it.
func (r *Registry) Complete(id string) error {
	ctrl, err := r.Get(id)
	if err != nil {
		return err
	}
	ctrl.Complete()
	return nil
}

// Dismiss unmounts the carousel without completing it.
func (r *Registry) Dismiss(id string) error {
	if !r.remove(id) {
		return ErrSessionNotFound
	}
	r.logger.Debug("onboarding session dismissed", zap.String("session", id))
	return nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle past the ttl and returns how many it removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Controller
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s.ctrl)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Close()
	}
	if len(expired) > 0 {
		r.logger.Info("expired onboarding sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close unmounts every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.ctrl.Close()
	}
}

// admit stores ctrl under id unless the registry is full.
func (r *Registry) admit(id string, ctrl *Controller) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.sessions) >= r.limit {
		return false
	}
	r.sessions[id] = &session{ctrl: ctrl, lastSeen: r.now()}
	return true
}

func (r *Registry) maxSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

func (r *Registry) finish(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	step := s.ctrl.State().Index
	if r.remove(id) {
		r.logger.Info("onboarding completed", zap.String("session", id), zap.Int("step", step))
	}
}

func (r *Registry) remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.ctrl.Close()
	}
	return ok
}
