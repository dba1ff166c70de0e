package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/protocol"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Buffer size for outgoing frames
	sendBufferSize = 256

	// Largest inbound frame accepted
	maxFrameSize = 32 << 10
)

var (
	ErrClientClosed   = errors.New("client is closed")
	ErrSendBufferFull = errors.New("client send buffer full")
)

// Client is one websocket connection
type Client struct {
	id          string
	identity    model.Identity
	conn        *websocket.Conn
	logger      *slog.Logger
	connectedAt time.Time

	send chan []byte
	done chan struct{}

	closeOnce   sync.Once
	closeStatus websocket.StatusCode
	closeReason string
}

// NewClient wraps an accepted websocket connection
func NewClient(conn *websocket.Conn, identity model.Identity, logger *slog.Logger) *Client {
	id := uuid.NewString()
	conn.SetReadLimit(maxFrameSize)
	return &Client{
		id:          id,
		identity:    identity,
		conn:        conn,
		logger:      logger.With(slog.String("conn_id", id), slog.String("player_id", string(identity.PlayerID))),
		connectedAt: time.Now(),
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
	}
}

// ID returns the connection id
func (c *Client) ID() string {
	return c.id
}

// Identity returns the identity attached at connect time
func (c *Client) Identity() model.Identity {
	return c.identity
}

// Send encodes and queues a frame
func (c *Client) Send(frame protocol.Frame) error {
	data, err := protocol.Encode(frame)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("frame dropped - client buffer full", slog.String("type", string(frame.Type)))
		return ErrSendBufferFull
	}
}

// Supersede tells the peer it has been replaced and closes the connection
func (c *Client) Supersede() {
	_ = c.Send(protocol.Superseded())
	c.Close(websocket.StatusPolicyViolation, "connection superseded")
}

// Close asks the write loop to flush queued frames and close with status
func (c *Client) Close(status websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		c.closeStatus = status
		c.closeReason = reason
		close(c.done)
	})
}

// Serve runs the read and write loops until the connection ends. Frames
// are handed to handle one at a time in arrival order.
func (c *Client) Serve(ctx context.Context, handle func(ctx context.Context, frame []byte)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readLoop(gctx, handle) })
	g.Go(func() error { return c.writeLoop(gctx) })
	err := g.Wait()

	c.logger.Info("connection closed", slog.Duration("connection_duration", time.Since(c.connectedAt)))
	return err
}

func (c *Client) readLoop(ctx context.Context, handle func(ctx context.Context, frame []byte)) error {
	defer c.Close(websocket.StatusNormalClosure, "")

	// Cancelling a pending Read tears the connection down before the write
	// loop can send its close frame. Reads end when the close handshake
	// completes or the write loop drops the connection.
	readCtx := context.WithoutCancel(ctx)

	for {
		msgType, data, err := c.conn.Read(readCtx)
		if err != nil {
			return c.readError(ctx, err)
		}
		if msgType != websocket.MessageText {
			_ = c.Send(protocol.ErrorFrame(protocol.ErrBinaryFrame))
			continue
		}
		handle(ctx, data)
	}
}

// readError filters out the ways a connection normally ends
func (c *Client) readError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	select {
	case <-c.done:
		return nil
	default:
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
		return nil
	}
	return err
}

func (c *Client) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = c.conn.Close(websocket.StatusGoingAway, "server shutting down")
			return nil

		case <-c.done:
			c.flush(ctx)
			_ = c.conn.Close(c.closeStatus, c.closeReason)
			return nil

		case data := <-c.send:
			if err := c.write(ctx, data); err != nil {
				c.Close(websocket.StatusInternalError, "write failed")
				_ = c.conn.CloseNow()
				return err
			}
		}
	}
}

// flush writes whatever is still queued, best effort
func (c *Client) flush(ctx context.Context) {
	for {
		select {
		case data := <-c.send:
			if err := c.write(ctx, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, data)
}
