package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// Session is one connected WebSocket client: either an admin subscriber or
// a customer session bound to a customer id.
type Session struct {
	conn       *websocket.Conn
	mu         sync.Mutex
	send       chan []byte
	closed     bool
	customerID int64 // 0 for admin sessions
	admin      bool
}

func newSession(conn *websocket.Conn) *Session {
	return &Session{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// push enqueues a frame without blocking. A session whose buffer is full is
// not keeping up and gets dropped; it will resynchronize via the pull
// endpoints on reconnect. The send channel is only ever closed under the
// session mutex, so a push racing a disconnect is a no-op instead of a send
// on a closed channel.
func (s *Session) push(ctx context.Context, body []byte) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	select {
	case s.send <- body:
		s.mu.Unlock()
	default:
		s.closed = true
		close(s.send)
		s.mu.Unlock()
		slog.WarnContext(ctx, "dropping slow websocket session",
			"admin", s.admin,
			"customer_id", s.customerID,
		)
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings. Runs in its own goroutine per session.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case body, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, body); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes inbound frames until the connection dies. Clients send
// nothing after the join frame; reading is still required to process pongs
// and detect disconnects.
func (s *Session) readPump(hub *Hub) {
	defer func() {
		hub.remove(s)
		s.close()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(4096)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))

		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
