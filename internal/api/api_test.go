package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brentkao/roomcoord/internal/api/apierr"
	"github.com/brentkao/roomcoord/internal/api/response"
	"github.com/brentkao/roomcoord/internal/factory"
	"github.com/brentkao/roomcoord/internal/model"
)

type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	app := factory.NewTestApp()
	return &testServer{
		handler: app.Handler(),
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func (ts *testServer) guest(t *testing.T, name string) response.AuthResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/auth/guest", map[string]string{"display_name": name}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	return decode[response.AuthResponse](t, rr)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	health := decode[response.HealthResponse](t, rr)
	assert.Equal(t, "ok", health.Status)
	assert.Zero(t, health.Connections)
	assert.Zero(t, health.Rooms)
}

func TestHealthCountsRooms(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.app.RoomStore.CreateRoom("p1", true, 2)
	require.NoError(t, err)

	health := decode[response.HealthResponse](t, ts.request(http.MethodGet, "/api/v1/health", nil, ""))
	assert.Equal(t, 1, health.Rooms)
}

func TestCreateGuest(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.guest(t, "Alice")

	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.True(t, resp.Player.IsGuest)
	assert.Equal(t, string(model.RoleUser), resp.Role)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.Equal(ts.app.MockClock.Now().Add(24*time.Hour)))
}

func TestCreateGuestValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/auth/guest", map[string]string{"display_name": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/guest", bytes.NewBufferString("{"))
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decode[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	creds := map[string]string{"username": "alice", "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/auth/register", creds, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	registered := decode[response.AuthResponse](t, rr)
	assert.False(t, registered.Player.IsGuest)
	assert.Equal(t, "alice", registered.Player.DisplayName)

	rr = ts.request(http.MethodPost, "/api/v1/auth/login", creds, "")
	require.Equal(t, http.StatusOK, rr.Code)
	loggedIn := decode[response.AuthResponse](t, rr)
	assert.Equal(t, registered.Player.ID, loggedIn.Player.ID)

	rr = ts.request(http.MethodPost, "/api/v1/auth/register", creds, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUsernameExists, decode[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "ghost", "password": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, decode[apierr.ErrorResponse](t, rr).Error.Code)

	rr = ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "ghost"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/auth/me", nil, alice.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[response.MeResponse](t, rr)
	assert.Equal(t, alice.Player.ID, me.UserID)
	assert.Equal(t, "user", me.Role)
	require.NotNil(t, me.Player)
	assert.Equal(t, "Alice", me.Player.DisplayName)

	rr = ts.request(http.MethodGet, "/api/v1/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMintTicket(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")
	ts.app.MockRandom.QueueToken("ticket-abc")

	rr := ts.request(http.MethodPost, "/api/v1/tickets", nil, alice.Token)
	require.Equal(t, http.StatusCreated, rr.Code)

	ticket := decode[response.TicketResponse](t, rr)
	assert.Equal(t, "ticket-abc", ticket.Token)
	assert.True(t, ticket.ExpiresAt.Equal(ts.app.MockClock.Now().Add(60*time.Second)))
	assert.Equal(t, 1, ts.app.Memory.TicketCount())

	identity, err := ts.app.TicketBroker.Redeem(t.Context(), "ticket-abc")
	require.NoError(t, err)
	assert.Equal(t, model.PlayerID(alice.Player.ID), identity.PlayerID)
}

func TestMintTicketRejectsExpiredCredential(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")

	ts.app.MockClock.Advance(25 * time.Hour)

	rr := ts.request(http.MethodPost, "/api/v1/tickets", nil, alice.Token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Zero(t, ts.app.Memory.TicketCount())
}

func TestWebsocketEndpointRequiresCredential(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/ws/game", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/lobbies", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
