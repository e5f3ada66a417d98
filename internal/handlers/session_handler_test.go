package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cardpayhq/cardpay-backend/internal/middleware"
	"github.com/cardpayhq/cardpay-backend/internal/models"
	"github.com/cardpayhq/cardpay-backend/internal/services"
	"github.com/stretchr/testify/require"
)

func TestAnonymousIsForbidden(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/user/whoami"},
		{http.MethodGet, "/v1/user/payments"},
		{http.MethodGet, "/v1/user/cards"},
		{http.MethodGet, "/v1/session/"},
		{http.MethodDelete, "/v1/session/"},
		{http.MethodPost, "/v1/card/"},
		{http.MethodPost, "/v1/payment/init"},
	}

	for _, p := range paths {
		resp, body := env.request(t, p.method, p.path, nil, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", p.method, p.path)
		errBody := errorBody(t, body)
		require.Equal(t, "client error", errBody["type"])
		require.Equal(t, "Forbidden", errBody["message"])
	}
}

func TestGarbageTokenIsForbidden(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodGet, "/v1/user/whoami", nil, bearer("not-a-token"))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetCurrentSession(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.signup(t, "ada@example.com")

	resp, body := env.request(t, http.MethodGet, "/v1/session/", nil, bearer(access))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Session retrieved!", body["message"])

	data := body["data"].(map[string]any)
	require.Equal(t, true, data["isActive"])
	require.NotContains(t, data, "metadata")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.signup(t, "ada@example.com")

	resp, body := env.request(t, http.MethodDelete, "/v1/session/", nil, bearer(access))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Logged out successfully!", body["message"])

	var session models.Session
	require.NoError(t, env.db.First(&session).Error)
	require.False(t, session.IsActive)
}

// expiredAccessToken signs an access token for the user/session pair that is
// already past its expiry.
func expiredAccessToken(t *testing.T, env *testEnv, data services.SessionData) string {
	t.Helper()

	cfg := *env.cfg
	cfg.AccessTokenTTL = -1 * time.Minute
	token, err := services.NewSessionService(env.db, &cfg).SignToken(data, services.TokenAccess)
	require.NoError(t, err)
	return token
}

func TestExpiredTokenWithRefreshReissues(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.CreateUser(context.Background(), services.CreateUserParams{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		EmailAddress: "ada@example.com",
		Password:     "hunter22",
	})
	require.NoError(t, err)

	session, err := env.sessions.NewSession(user.ID, nil, nil)
	require.NoError(t, err)

	data := services.SessionData{UserID: user.ID, SessionID: session.ID}
	expired := expiredAccessToken(t, env, data)
	refresh, err := env.sessions.SignToken(data, services.TokenRefresh)
	require.NoError(t, err)

	headers := bearer(expired)
	headers[middleware.RefreshHeader] = refresh

	resp, body := env.request(t, http.MethodGet, "/v1/user/whoami", nil, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "User retrieved!", body["message"])

	// The fresh access token rides back on the response header and is usable
	// on its own.
	reissued := resp.Header.Get(middleware.ReissuedTokenHeader)
	require.NotEmpty(t, reissued)

	resp, _ = env.request(t, http.MethodGet, "/v1/user/whoami", nil, bearer(reissued))
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExpiredTokenWithoutRefreshIsForbidden(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.CreateUser(context.Background(), services.CreateUserParams{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		EmailAddress: "ada@example.com",
		Password:     "hunter22",
	})
	require.NoError(t, err)

	session, err := env.sessions.NewSession(user.ID, nil, nil)
	require.NoError(t, err)

	expired := expiredAccessToken(t, env, services.SessionData{UserID: user.ID, SessionID: session.ID})

	resp, _ := env.request(t, http.MethodGet, "/v1/user/whoami", nil, bearer(expired))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestReissueRefusedAfterLogout(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.CreateUser(context.Background(), services.CreateUserParams{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		EmailAddress: "ada@example.com",
		Password:     "hunter22",
	})
	require.NoError(t, err)

	session, err := env.sessions.NewSession(user.ID, nil, nil)
	require.NoError(t, err)

	data := services.SessionData{UserID: user.ID, SessionID: session.ID}
	expired := expiredAccessToken(t, env, data)
	refresh, err := env.sessions.SignToken(data, services.TokenRefresh)
	require.NoError(t, err)

	_, err = env.sessions.DeactivateSession(session.ID)
	require.NoError(t, err)

	headers := bearer(expired)
	headers[middleware.RefreshHeader] = refresh

	resp, _ := env.request(t, http.MethodGet, "/v1/user/whoami", nil, headers)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Empty(t, resp.Header.Get(middleware.ReissuedTokenHeader))
}
