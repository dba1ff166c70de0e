package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/protocol"
	"github.com/brentkao/roomcoord/internal/services/room"
)

// Dispatcher decodes inbound frames, routes them to the room store and
// fans the resulting events out through the registry
type Dispatcher struct {
	rooms    *room.Store
	registry *Registry
	parser   *protocol.Parser
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(rooms *room.Store, registry *Registry, parser *protocol.Parser, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		rooms:    rooms,
		registry: registry,
		parser:   parser,
		logger:   logger.With(slog.String("component", "dispatcher")),
	}
}

// Connect registers an identified connection and greets it
func (d *Dispatcher) Connect(conn Conn) {
	identity := conn.Identity()
	if !identity.IsZero() {
		d.registry.Register(identity.PlayerID, conn)
	}
	_ = conn.Send(protocol.Connected(identity))
}

// Disconnect cleans up after a closed connection. A connection that was
// already superseded leaves the player's seat alone.
func (d *Dispatcher) Disconnect(conn Conn) {
	identity := conn.Identity()
	if identity.IsZero() {
		return
	}
	if !d.registry.Unregister(identity.PlayerID, conn) {
		return
	}
	// A reconnect landing between Unregister and here keeps its connection
	// but loses the seat, as if it had arrived just after cleanup.
	d.deliver(d.rooms.Disconnect(identity.PlayerID))
}

// Handle processes one inbound frame to completion. Every failure is
// reported to the sender as an error envelope; none closes the connection.
func (d *Dispatcher) Handle(ctx context.Context, conn Conn, frame []byte) {
	identity := conn.Identity()
	logger := d.logger.With(slog.String("player_id", string(identity.PlayerID)))

	req, err := d.parser.Parse(frame)
	if err != nil {
		logger.Debug("rejected frame", slog.String("error", err.Error()))
		_ = conn.Send(protocol.ErrorFrame(err))
		return
	}

	if identity.IsZero() && !req.Type.AllowsAnonymous() {
		_ = conn.Send(protocol.ErrorFrame(model.ErrUnauthenticated))
		return
	}

	reply, events, err := d.route(identity.PlayerID, req)
	if err != nil {
		logger.Debug("request failed",
			slog.String("type", string(req.Type)),
			slog.String("error", err.Error()),
		)
		_ = conn.Send(protocol.ErrorFrame(err))
		return
	}

	_ = conn.Send(reply)
	d.deliver(events)
}

// route runs one request. Its switch covers every inbound type.
func (d *Dispatcher) route(playerID model.PlayerID, req protocol.Request) (protocol.Frame, []model.Event, error) {
	switch req.Type {
	case protocol.TypePing:
		data := req.Data.(protocol.PingData)
		return protocol.Pong(data.Timestamp), nil, nil

	case protocol.TypePublicRoomList:
		rooms := d.rooms.ListPublicRooms()
		return protocol.Reply(req.Type, protocol.NewRoomListData(rooms)), nil, nil

	case protocol.TypeCreateRoom:
		data := req.Data.(protocol.CreateRoomData)
		r, err := d.rooms.CreateRoom(playerID, data.IsPublic, data.Size)
		if err != nil {
			return protocol.Frame{}, nil, err
		}
		return protocol.Reply(req.Type, protocol.NewRoomData("room created", r)), nil, nil

	case protocol.TypeJoinRoom:
		data := req.Data.(protocol.JoinRoomData)
		r, events, err := d.rooms.JoinRoom(playerID, data.RoomID)
		if err != nil {
			return protocol.Frame{}, nil, err
		}
		return protocol.Reply(req.Type, protocol.NewRoomData("joined room", r)), events, nil

	case protocol.TypeJoinRandomRoom:
		r, events, err := d.rooms.JoinRandom(playerID)
		if err != nil {
			return protocol.Frame{}, nil, err
		}
		return protocol.Reply(req.Type, protocol.NewRoomData("joined room", r)), events, nil

	case protocol.TypeLeaveRoom:
		events, err := d.rooms.LeaveRoom(playerID)
		if err != nil {
			return protocol.Frame{}, nil, err
		}
		return protocol.Reply(req.Type, protocol.AckData{Msg: "left room"}), events, nil

	case protocol.TypeRoomDetail:
		r, err := d.rooms.RoomDetail(playerID)
		if err != nil {
			return protocol.Frame{}, nil, err
		}
		return protocol.Reply(req.Type, protocol.NewRoomData("room detail", r)), nil, nil

	case protocol.TypeStartGame:
		events, err := d.rooms.StartGame(playerID)
		if err != nil {
			return protocol.Frame{}, nil, err
		}
		return protocol.Reply(req.Type, protocol.AckData{Msg: "game started"}), events, nil

	case protocol.TypeGameMakeMove:
		data := req.Data.(protocol.MoveData)
		events, err := d.rooms.MakeMove(playerID, data.Position())
		if err != nil {
			return protocol.Frame{}, nil, err
		}
		return protocol.Reply(req.Type, protocol.AckData{Msg: "move accepted", X: &data.X, Y: &data.Y}), events, nil
	}

	return protocol.Frame{}, nil, fmt.Errorf("no route for message type %q", req.Type)
}

// deliver fans events out after the mutation that produced them has
// committed
func (d *Dispatcher) deliver(events []model.Event) {
	for _, e := range events {
		frame, ok := protocol.EventFrame(e)
		if !ok {
			d.logger.Warn("event has no wire form", slog.String("type", string(e.Type)))
			continue
		}
		d.registry.Broadcast(e.Recipients, frame)
	}
}
