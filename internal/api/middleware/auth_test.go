package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/brentkao/roomcoord/internal/model"
)

type stubVerifier map[string]model.Identity

func (s stubVerifier) Verify(token string) (model.Identity, error) {
	id, ok := s[token]
	if !ok {
		return model.Identity{}, errors.Join(model.ErrUnauthenticated, errors.New("unknown token"))
	}
	return id, nil
}

type AuthSuite struct {
	suite.Suite
	handler http.Handler
	reached model.Identity
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.reached = model.Identity{}
	verifier := stubVerifier{
		"user-token": {PlayerID: "p1", Role: model.RoleUser},
		"api-token":  {PlayerID: "svc", Role: model.RoleAPI},
	}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reached = MustGetIdentity(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	s.handler = Auth(verifier)(RequireRole(model.RoleUser)(final))
}

func (s *AuthSuite) do(header string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr.Code
}

func (s *AuthSuite) TestMissingHeader() {
	s.Equal(http.StatusUnauthorized, s.do(""))
	s.True(s.reached.IsZero())
}

func (s *AuthSuite) TestNotBearer() {
	s.Equal(http.StatusUnauthorized, s.do("Basic dXNlcjpwYXNz"))
}

func (s *AuthSuite) TestInvalidToken() {
	s.Equal(http.StatusUnauthorized, s.do("Bearer nope"))
}

func (s *AuthSuite) TestWrongRole() {
	s.Equal(http.StatusForbidden, s.do("Bearer api-token"))
	s.True(s.reached.IsZero())
}

func (s *AuthSuite) TestAllowed() {
	s.Equal(http.StatusNoContent, s.do("Bearer user-token"))
	s.Equal(model.PlayerID("p1"), s.reached.PlayerID)
}

func (s *AuthSuite) TestRequireRoleWithoutAuth() {
	h := RequireRole(model.RoleUser)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	s.Equal(http.StatusUnauthorized, rr.Code)
}
