package client

import (
	"context"
	"net/http"

	"github.com/smartshuttle/shuttle/internal/onboarding"
)

// Carousel is the server's reply to an onboarding call.
type Carousel struct {
	ID    string           `json:"id"`
	Moved *bool            `json:"moved,omitempty"`
	State onboarding.State `json:"state"`
}

func (c *Client) OnboardingSteps(ctx context.Context) ([]onboarding.Step, error) {
	var out struct {
		Steps []onboarding.Step `json:"steps"`
	}
	err := c.do(ctx, http.MethodGet, "/api/onboarding/steps", nil, &out)
	return out.Steps, err
}

// StartOnboarding mounts a new carousel on the server.
func (c *Client) StartOnboarding(ctx context.Context) (Carousel, error) {
	var out Carousel
	err := c.do(ctx, http.MethodPost, "/api/onboarding/sessions", nil, &out)
	return out, err
}

func (c *Client) sessionCall(ctx context.Context, method, id, action string, in interface{}) (Carousel, error) {
	var out Carousel
	path := "/api/onboarding/sessions/" + id
	if action != "" {
		path += "/" + action
	}
	err := c.do(ctx, method, path, in, &out)
	return out, err
}

func (c *Client) OnboardingState(ctx context.Context, id string) (Carousel, error) {
	return c.sessionCall(ctx, http.MethodGet, id, "", nil)
}

func (c *Client) Next(ctx context.Context, id string) (Carousel, error) {
	return c.sessionCall(ctx, http.MethodPost, id, "next", nil)
}

func (c *Client) Back(ctx context.Context, id string) (Carousel, error) {
	return c.sessionCall(ctx, http.MethodPost, id, "back", nil)
}

func (c *Client) GoTo(ctx context.Context, id string, step int) (Carousel, error) {
	return c.sessionCall(ctx, http.MethodPost, id, "goto", map[string]int{"step": step})
}

// Swipe sends a gesture start at from and an end at to.
func (c *Client) Swipe(ctx context.Context, id string, from, to float64) (Carousel, error) {
	if _, err := c.sessionCall(ctx, http.MethodPost, id, "gesture", map[string]interface{}{"phase": "start", "x": from}); err != nil {
		return Carousel{}, err
	}
	return c.sessionCall(ctx, http.MethodPost, id, "gesture", map[string]interface{}{"phase": "end", "x": to})
}

// CompleteOnboarding finishes the tour; the session is gone afterwards.
func (c *Client) CompleteOnboarding(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/onboarding/sessions/"+id+"/complete", nil, nil)
}

// DismissOnboarding closes the carousel without completing it.
func (c *Client) DismissOnboarding(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/onboarding/sessions/"+id, nil, nil)
}
