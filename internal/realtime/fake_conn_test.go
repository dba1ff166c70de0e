package realtime

import (
	"errors"
	"sync"

	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/protocol"
)

// fakeConn records frames instead of writing them
type fakeConn struct {
	identity model.Identity
	fail     bool

	mu         sync.Mutex
	frames     []protocol.Frame
	superseded bool
}

func newFakeConn(playerID model.PlayerID) *fakeConn {
	c := &fakeConn{}
	if playerID != "" {
		c.identity = model.Identity{PlayerID: playerID, Role: model.RoleUser}
	}
	return c
}

func (c *fakeConn) Identity() model.Identity {
	return c.identity
}

func (c *fakeConn) Send(frame protocol.Frame) error {
	if c.fail {
		return errors.New("broken pipe")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeConn) Supersede() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.superseded = true
}

// take returns and clears the recorded frames
func (c *fakeConn) take() []protocol.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.frames
	c.frames = nil
	return out
}

func types(frames []protocol.Frame) []protocol.MessageType {
	out := make([]protocol.MessageType, len(frames))
	for i, f := range frames {
		out[i] = f.Type
	}
	return out
}

func lastOf(frames []protocol.Frame, t protocol.MessageType) (protocol.Frame, bool) {
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Type == t {
			return frames[i], true
		}
	}
	return protocol.Frame{}, false
}
