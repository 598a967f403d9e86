// apps/go-server/internal/httpserver/ws.go
//
// Realtime transport for a room: GET /rooms/{id}/ws.
// Responsibilities:
//   - Resolve the player's nickname (JWT user, ?nickname=, else "guest").
//   - Upgrade, seat the player, then pump frames both ways:
//     client text frames -> wire.Decode -> session.Submit,
//     session messages -> JSON text frames or binary sync frames.
//   - Free the seat when the socket goes away.
//
// Notes:
//   - Each connection has its own buffered outbox; a client that cannot keep
//     up is disconnected instead of stalling the room loop.
//   - Only the write pump writes to the conn.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/docombos/docombos/apps/go-server/internal/session"
	"github.com/docombos/docombos/apps/go-server/internal/store"
	"github.com/docombos/docombos/apps/go-server/internal/wire"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxFrameSize   = 4096
	outboxSize     = 256
	maxNicknameLen = 24
)

func (s *Server) handleRoomWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"lookup_failed"}`, http.StatusInternalServerError)
		return
	}
	nickname, userID := identity(r)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("room", sess.ID()).Msg("websocket upgrade")
		return
	}
	c := newClient(conn)
	go c.writePump()
	defer c.close()

	ctx := r.Context()
	id, err := sess.Join(ctx, nickname, userID, c)
	if err != nil {
		log.Info().Err(err).Str("room", sess.ID()).Str("nickname", nickname).Msg("join refused")
		c.Send(wire.Error(err.Error()))
		c.flushAndClose()
		return
	}
	defer func() {
		// the request context may already be gone; the room still needs to hear it
		leaveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Leave(leaveCtx, id); err != nil && !errors.Is(err, session.ErrClosed) {
			log.Warn().Err(err).Str("room", sess.ID()).Int("player", int(id)).Msg("leave")
		}
	}()

	c.readPump(func(data []byte) bool {
		req, err := wire.Decode(data)
		if err != nil {
			c.Send(wire.Error(err.Error()))
			return true
		}
		err = sess.Submit(ctx, session.Intent{Player: id, Request: req})
		if errors.Is(err, session.ErrClosed) || errors.Is(err, context.Canceled) {
			return false
		}
		return true
	})
}

// identity picks the display name and (for signed-in players) user id.
func identity(r *http.Request) (nickname, userID string) {
	if me := currentUser(r); me != nil {
		return me.Username, me.ID
	}
	if n := sanitizeNickname(r.URL.Query().Get("nickname")); n != "" {
		return n, ""
	}
	return "guest", ""
}

func sanitizeNickname(n string) string {
	n = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			return r
		}
		return -1
	}, strings.TrimSpace(n))
	if len(n) > maxNicknameLen {
		n = n[:maxNicknameLen]
	}
	return n
}

// ------------------------------- client ------------------------------------

// client adapts one websocket to session.Sink.
type client struct {
	conn *websocket.Conn
	out  chan wire.Message
	quit chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		out:  make(chan wire.Message, outboxSize),
		quit: make(chan struct{}),
	}
}

// Send queues m without blocking. A full outbox drops the connection.
func (c *client) Send(m wire.Message) {
	select {
	case <-c.quit:
		return
	default:
	}
	select {
	case c.out <- m:
	default:
		log.Warn().Str("type", string(m.Type)).Msg("client outbox full, dropping connection")
		c.close()
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.quit)
		_ = c.conn.Close()
	})
}

// flushAndClose gives the write pump a moment to drain before closing.
func (c *client) flushAndClose() {
	deadline := time.Now().Add(time.Second)
	for len(c.out) > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	c.close()
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.quit:
			return
		case m := <-c.out:
			if err := c.write(m); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *client) write(m wire.Message) error {
	data, err := wire.Encode(m)
	if err != nil {
		log.Error().Err(err).Str("type", string(m.Type)).Msg("encode message")
		return nil
	}
	kind := websocket.TextMessage
	if m.IsBinary() {
		kind = websocket.BinaryMessage
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(kind, data)
}

// readPump feeds text frames to handle until the socket closes or handle
// returns false.
func (c *client) readPump(handle func([]byte) bool) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket read")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if !handle(data) {
			return
		}
	}
}

var _ session.Sink = (*client)(nil)
