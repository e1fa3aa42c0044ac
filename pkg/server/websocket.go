package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/requery/pkg/reactive"
)

// connection pumps frames between one WebSocket and its session. The read
// loop handles client frames in order; the write loop is the only writer.
type connection struct {
	conn    *websocket.Conn
	session *Session
	config  *Config
	metrics *serverMetrics
	logger  *slog.Logger
	out     chan ServerMessage
}

func newConnection(conn *websocket.Conn, session *Session, s *Server) *connection {
	return &connection{
		conn:    conn,
		session: session,
		config:  s.config,
		metrics: s.metrics,
		logger:  s.logger.With("session", session.ID),
		out:     make(chan ServerMessage, 64),
	}
}

// run blocks until the client goes away or ctx is done. A normal close
// returns nil.
func (c *connection) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readLoop(ctx) })
	g.Go(func() error { return c.writeLoop(ctx) })
	err := g.Wait()
	if errors.Is(err, errClientGone) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var errClientGone = errors.New("client disconnected")

func (c *connection) readLoop(ctx context.Context) error {
	defer reactive.ReleaseGoroutine()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	})
	for {
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				return err
			}
			return errClientGone
		}

		msg, err := DecodeClientMessage(data)
		if err != nil {
			c.logger.Warn("bad client frame", "error", err)
			c.metrics.eventErrors.WithLabelValues("E160").Inc()
			if !c.send(ctx, errorMessage(err)) {
				return ctx.Err()
			}
			continue
		}

		if reply := c.session.HandleMessage(ctx, msg); reply != nil {
			if !c.send(ctx, *reply) {
				return ctx.Err()
			}
		}
	}
}

func (c *connection) send(ctx context.Context, msg ServerMessage) bool {
	select {
	case c.out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *connection) writeLoop(ctx context.Context) error {
	defer c.conn.Close()

	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.out:
			data, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
			c.metrics.framesSent.Inc()
			c.metrics.patchesSent.Add(float64(len(msg.Patches)))

		case <-ticker.C:
			deadline := time.Now().Add(c.config.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return err
			}

		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"), deadline)
			return ctx.Err()
		}
	}
}
