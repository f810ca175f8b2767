package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartshuttle/shuttle/internal/api"
	"github.com/smartshuttle/shuttle/internal/auth"
	"github.com/smartshuttle/shuttle/internal/onboarding"
	"github.com/smartshuttle/shuttle/internal/passenger"
	"github.com/smartshuttle/shuttle/internal/storage/sqlite"
	"github.com/smartshuttle/shuttle/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zaptest.NewLogger(t)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "shuttle.db"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer([]byte("client-test"), time.Hour)
	require.NoError(t, err)
	authSvc, err := auth.NewService(store, tokens, logger)
	require.NoError(t, err)
	catalog, err := passenger.DefaultCatalog()
	require.NoError(t, err)
	passengerSvc, err := passenger.NewService(catalog, store, store, logger)
	require.NoError(t, err)
	registry := onboarding.NewRegistry(onboarding.DefaultSteps(), onboarding.Options{Transition: time.Millisecond}, time.Minute, logger)

	router, err := api.NewRouter(api.Deps{
		Logger:     logger,
		Auth:       authSvc,
		Users:      store,
		Passenger:  passengerSvc,
		Onboarding: registry,
		Theme:      theme.Default(),
		DB:         store,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		registry.Close()
		_ = store.Close()
	})
	return srv
}

func TestClientAccountFlow(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := New(srv.URL+"/", srv.Client())

	_, err := c.Me(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = c.Register(ctx, auth.RegisterInput{Name: "Ayşe Yılmaz", Email: "ayse@example.com", Password: "123"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, auth.MessagePasswordTooShort, apiErr.Fields["password"])

	sess, err := c.Register(ctx, auth.RegisterInput{Name: "Ayşe Yılmaz", Email: "ayse@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, sess.Token, c.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ayse@example.com", me.Email)

	other := New(srv.URL, nil)
	_, err = other.Login(ctx, auth.LoginInput{Email: "ayse@example.com", Password: "wrong12"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, auth.MessageInvalidCredentials, apiErr.Message)
	_, err = other.Login(ctx, auth.LoginInput{Email: "ayse@example.com", Password: "secret1"})
	require.NoError(t, err)

	d, err := other.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", d.FirstName)

	feed, err := other.Notifications(ctx, passenger.FilterInfo)
	require.NoError(t, err)
	assert.Equal(t, passenger.FilterInfo, feed.Filter)

	feed, err = other.MarkNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Zero(t, feed.UnreadCount)

	trips, err := other.Trips(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, trips.Upcoming)

	tr, err := other.Tracking(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, tr.Stops)

	p, err := other.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AY", p.Initials)
}

func TestClientOnboarding(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := New(srv.URL, srv.Client())

	steps, err := c.OnboardingSteps(ctx)
	require.NoError(t, err)
	require.Len(t, steps, 3)

	car, err := c.StartOnboarding(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, car.State.Index)

	car, err = c.Next(ctx, car.ID)
	require.NoError(t, err)
	require.NotNil(t, car.Moved)
	assert.True(t, *car.Moved)
	assert.Equal(t, 1, car.State.Index)

	require.Eventually(t, func() bool {
		st, err := c.OnboardingState(ctx, car.ID)
		return err == nil && !st.State.Transitioning
	}, time.Second, 5*time.Millisecond)

	car, err = c.Swipe(ctx, car.ID, 100, 300)
	require.NoError(t, err)
	assert.Equal(t, 0, car.State.Index, "rightward swipe goes back")

	require.NoError(t, c.CompleteOnboarding(ctx, car.ID))
	_, err = c.Back(ctx, car.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	car, err = c.StartOnboarding(ctx)
	require.NoError(t, err)
	car, err = c.GoTo(ctx, car.ID, 2)
	require.NoError(t, err)
	assert.True(t, car.State.IsLast)
	require.NoError(t, c.DismissOnboarding(ctx, car.ID))
}

func TestTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")

	tok, err := LoadToken(path)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, SaveToken(path, "abc"))
	tok, err = LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, ClearToken(path))
	require.NoError(t, ClearToken(path))
	tok, err = LoadToken(path)
	require.NoError(t, err)
	assert.Empty(t, tok)
}
