package ws

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin is already policed by the CORS layer for the REST
		// surface; the socket carries no credentials beyond the join token.
		return true
	},
}

// joinMessage is the first frame a client sends after the upgrade.
type joinMessage struct {
	Type       string `json:"type"` // "join-admin" or "join-customer"
	Token      string `json:"token,omitempty"`
	CustomerID int64  `json:"customerId,omitempty"`
}

var errBadToken = errors.New("invalid admin token")

// Handler upgrades HTTP connections and registers them with the hub.
type Handler struct {
	hub    *Hub
	secret []byte
}

// NewHandler creates a WebSocket handler backed by the given hub. The admin
// join token is verified against ORDERDESK_JWT_SECRET.
func NewHandler(hub *Hub) *Handler {
	return &Handler{
		hub:    hub,
		secret: []byte(os.Getenv("ORDERDESK_JWT_SECRET")),
	}
}

// ServeHTTP handles GET /ws.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "websocket upgrade failed", "error", err)

		return
	}

	// The join frame must arrive promptly or the connection is garbage.
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	var join joinMessage
	if err := conn.ReadJSON(&join); err != nil {
		conn.Close()

		return
	}
	conn.SetReadDeadline(time.Time{})

	s := newSession(conn)

	switch join.Type {
	case "join-admin":
		if err := h.verifyAdminToken(join.Token); err != nil {
			slog.WarnContext(r.Context(), "rejected admin websocket join", "error", err)
			conn.Close()

			return
		}
		s.admin = true
		h.hub.addAdmin(s)

	case "join-customer":
		if join.CustomerID <= 0 {
			conn.Close()

			return
		}
		s.customerID = join.CustomerID
		h.hub.addCustomer(join.CustomerID, s)

	default:
		conn.Close()

		return
	}

	go s.writePump()
	go s.readPump(h.hub)
}

func (h *Handler) verifyAdminToken(token string) error {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}

		return h.secret, nil
	})
	if err != nil {
		return err
	}

	if claims["role"] != "admin" {
		return errBadToken
	}

	return nil
}
