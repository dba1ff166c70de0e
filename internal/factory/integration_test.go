package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/suite"

	"github.com/brentkao/roomcoord/internal/api/response"
	"github.com/brentkao/roomcoord/internal/config"
	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/protocol"
)

// IntegrationSuite drives the whole stack: REST credentials, ticket mint,
// both websocket endpoints and a game played to completion.
type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	server *httptest.Server
	ctx    context.Context
	cancel context.CancelFunc
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	cfg := config.Default()
	cfg.Game.WinLength = 3
	s.app = NewTestAppWithConfig(cfg)
	s.server = httptest.NewServer(s.app.Handler())
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 10*time.Second)
}

func (s *IntegrationSuite) TearDownTest() {
	s.cancel()
	s.NoError(s.app.Shutdown(context.Background()))
	s.server.Close()
}

func (s *IntegrationSuite) post(path, bearer string, body any) *http.Response {
	b, err := json.Marshal(body)
	s.Require().NoError(err)
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.server.URL+path, bytes.NewReader(b))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *IntegrationSuite) guest(name string) response.AuthResponse {
	resp := s.post("/api/v1/auth/guest", "", map[string]string{"display_name": name})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var out response.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *IntegrationSuite) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http") + path
}

func (s *IntegrationSuite) dial(url string, opts *websocket.DialOptions) *websocket.Conn {
	conn, _, err := websocket.Dial(s.ctx, url, opts)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func (s *IntegrationSuite) send(conn *websocket.Conn, t protocol.MessageType, data any) {
	s.Require().NoError(wsjson.Write(s.ctx, conn, protocol.Frame{Type: t, Data: data}))
}

func (s *IntegrationSuite) next(conn *websocket.Conn, t protocol.MessageType) json.RawMessage {
	for {
		var env protocol.RawEnvelope
		s.Require().NoError(wsjson.Read(s.ctx, conn, &env))
		if env.Type == t {
			return env.Data
		}
	}
}

// move plays one cell and waits for the ack
func (s *IntegrationSuite) move(conn *websocket.Conn, x, y int) {
	s.send(conn, protocol.TypeGameMakeMove, map[string]int{"x": x, "y": y})
	s.next(conn, protocol.TypeGameMakeMove)
}

func (s *IntegrationSuite) TestGameOverBothEndpoints() {
	alice := s.guest("Alice")
	bob := s.guest("Bob")

	// Alice connects with a ticket
	resp := s.post("/api/v1/tickets", alice.Token, nil)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var t response.TicketResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&t))
	s.True(s.app.MockClock.Now().Add(60*time.Second).Equal(t.ExpiresAt))

	host := s.dial(s.wsURL("/ws?token="+t.Token), nil)

	// Bob connects with his bearer credential
	player := s.dial(s.wsURL("/ws/game"), &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + bob.Token}},
	})

	var greeting protocol.NotificationData
	s.Require().NoError(json.Unmarshal(s.next(host, protocol.TypeNotification), &greeting))
	s.Equal(model.PlayerID(alice.Player.ID), greeting.UserID)
	s.Require().NoError(json.Unmarshal(s.next(player, protocol.TypeNotification), &greeting))
	s.Equal(model.PlayerID(bob.Player.ID), greeting.UserID)

	s.send(host, protocol.TypeCreateRoom, map[string]any{"isPublic": true, "detail": map[string]int{"size": 2}})
	s.next(host, protocol.TypeCreateRoom)
	s.send(player, protocol.TypeJoinRandomRoom, map[string]any{})
	s.next(player, protocol.TypeJoinRandomRoom)

	s.send(host, protocol.TypeStartGame, map[string]any{})
	s.next(host, protocol.TypeStartGame)

	s.move(host, 0, 0)
	s.move(player, 0, 1)
	s.move(host, 1, 0)
	s.move(player, 1, 1)
	s.send(host, protocol.TypeGameMakeMove, map[string]int{"x": 2, "y": 0})

	for _, c := range []*websocket.Conn{host, player} {
		var over protocol.GameOverData
		s.Require().NoError(json.Unmarshal(s.next(c, protocol.TypeGameOver), &over))
		s.Equal(model.ReasonWin, over.Reason)
		s.Equal(model.PlayerID(alice.Player.ID), over.Winner)
		s.False(over.Draw)
		s.Equal(model.PlayerID(alice.Player.ID), over.Board[0][2])
	}

	health := s.health()
	s.Equal(2, health.Connections)
	s.Equal(1, health.Rooms)
}

func (s *IntegrationSuite) TestAuthenticatedEndpointRejectsBeforeUpgrade() {
	_, resp, err := websocket.Dial(s.ctx, s.wsURL("/ws/game"), nil)
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.Dial(s.ctx, s.wsURL("/ws/game"), &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer not-a-jwt"}},
	})
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationSuite) TestTicketMintRequiresCredential() {
	resp := s.post("/api/v1/tickets", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationSuite) TestExpiredTicketConnectsAnonymously() {
	alice := s.guest("Alice")
	ticket, err := s.app.TicketBroker.Issue(s.ctx, model.Identity{PlayerID: model.PlayerID(alice.Player.ID), Role: model.RoleUser})
	s.Require().NoError(err)
	s.app.MockClock.Advance(61 * time.Second)

	conn := s.dial(s.wsURL("/ws?token="+ticket.Token), nil)
	var greeting protocol.NotificationData
	s.Require().NoError(json.Unmarshal(s.next(conn, protocol.TypeNotification), &greeting))
	s.Empty(greeting.UserID)
	s.Equal(0, s.app.Registry.Count())
}

func (s *IntegrationSuite) TestShutdownClosesConnections() {
	alice := s.guest("Alice")
	conn := s.dial(s.wsURL("/ws/game"), &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + alice.Token}},
	})
	s.next(conn, protocol.TypeNotification)
	s.Eventually(func() bool { return s.app.Registry.Count() == 1 }, time.Second, 10*time.Millisecond)

	s.Require().NoError(s.app.Shutdown(s.ctx))

	var env protocol.RawEnvelope
	err := wsjson.Read(s.ctx, conn, &env)
	s.Equal(websocket.StatusGoingAway, websocket.CloseStatus(err), fmt.Sprint(err))
	s.Equal(0, s.app.Registry.Count())
}

func (s *IntegrationSuite) health() response.HealthResponse {
	resp, err := http.Get(s.server.URL + "/api/v1/health")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var out response.HealthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}
