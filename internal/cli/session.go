package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/brentkao/roomcoord/internal/protocol"
)

// Session is one open coordinator connection
type Session struct {
	conn *websocket.Conn
}

func newSession(conn *websocket.Conn) *Session {
	return &Session{conn: conn}
}

// Send writes one envelope. Empty data is sent as {}.
func (s *Session) Send(ctx context.Context, t protocol.MessageType, data json.RawMessage) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	return wsjson.Write(ctx, s.conn, protocol.RawEnvelope{Type: t, Data: data})
}

// Read returns the next inbound envelope
func (s *Session) Read(ctx context.Context) (protocol.RawEnvelope, error) {
	var env protocol.RawEnvelope
	err := wsjson.Read(ctx, s.conn, &env)
	return env, err
}

// Request sends one envelope and waits for its reply, skipping pushes
// that arrive in between. An error envelope is returned as an error.
func (s *Session) Request(ctx context.Context, t protocol.MessageType, data json.RawMessage) (protocol.RawEnvelope, error) {
	if err := s.Send(ctx, t, data); err != nil {
		return protocol.RawEnvelope{}, err
	}
	for {
		env, err := s.Read(ctx)
		if err != nil {
			return protocol.RawEnvelope{}, err
		}
		switch env.Type {
		case t:
			return env, nil
		case protocol.TypeError:
			return env, envelopeError(env.Data)
		}
	}
}

// Close ends the session normally
func (s *Session) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}

func envelopeError(data json.RawMessage) error {
	var e protocol.ErrorData
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("malformed error envelope: %s", data)
	}
	return fmt.Errorf("%s: %s", e.Kind, e.Msg)
}

// parseLine turns "<type> [json]" into an envelope
func parseLine(line string) (protocol.MessageType, json.RawMessage, error) {
	typ, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	if typ == "" {
		return "", nil, fmt.Errorf("empty line")
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return protocol.MessageType(typ), nil, nil
	}
	if !json.Valid([]byte(rest)) {
		return "", nil, fmt.Errorf("data for %s is not valid JSON", typ)
	}
	return protocol.MessageType(typ), json.RawMessage(rest), nil
}
