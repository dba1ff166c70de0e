package realtime

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/protocol"
	"github.com/brentkao/roomcoord/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.registry = NewRegistry(testutil.NopLogger())
}

func (s *RegistrySuite) TestRegisterAndSend() {
	alice := newFakeConn("alice")
	s.registry.Register("alice", alice)

	s.registry.Send("alice", protocol.Pong("t"))

	s.Equal(1, s.registry.Count())
	s.Equal([]protocol.MessageType{protocol.TypePong}, types(alice.take()))
}

func (s *RegistrySuite) TestSendToAbsentPlayerIsNoop() {
	s.NotPanics(func() {
		s.registry.Send("ghost", protocol.Pong("t"))
	})
}

func (s *RegistrySuite) TestBroadcastToleratesFailuresAndAbsence() {
	alice := newFakeConn("alice")
	broken := newFakeConn("bob")
	broken.fail = true
	carol := newFakeConn("carol")
	s.registry.Register("alice", alice)
	s.registry.Register("bob", broken)
	s.registry.Register("carol", carol)

	s.registry.Broadcast([]model.PlayerID{"alice", "bob", "ghost", "carol"}, protocol.Pong("t"))

	s.Len(alice.take(), 1)
	s.Len(carol.take(), 1)
}

func (s *RegistrySuite) TestRegisterSupersedesPrevious() {
	first := newFakeConn("alice")
	second := newFakeConn("alice")
	s.registry.Register("alice", first)
	s.registry.Register("alice", second)

	s.True(first.superseded)
	s.False(second.superseded)
	s.Equal(1, s.registry.Count())

	s.registry.Send("alice", protocol.Pong("t"))
	s.Empty(first.take())
	s.Len(second.take(), 1)
}

func (s *RegistrySuite) TestStaleUnregisterKeepsReplacement() {
	first := newFakeConn("alice")
	second := newFakeConn("alice")
	s.registry.Register("alice", first)
	s.registry.Register("alice", second)

	s.False(s.registry.Unregister("alice", first))
	s.Equal(1, s.registry.Count())

	s.True(s.registry.Unregister("alice", second))
	s.Zero(s.registry.Count())
}

func (s *RegistrySuite) TestUnregisterIsIdempotent() {
	alice := newFakeConn("alice")
	s.registry.Register("alice", alice)

	s.True(s.registry.Unregister("alice", alice))
	s.False(s.registry.Unregister("alice", alice))
	s.Zero(s.registry.Count())
}
