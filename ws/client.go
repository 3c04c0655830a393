package ws

import (
	"net/http"
	"sync"
	"time"

	"quickbites-api/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live websocket connection. rooms is owned by the hub's Run
// loop and must not be touched elsewhere.
type Client struct {
	ID       string
	Identity auth.Identity

	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]bool

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, identity auth.Identity) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Identity: identity,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		rooms:    make(map[string]bool),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// joinRequest is the only message clients send: a subscription to a channel.
type joinRequest struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// CanJoin decides whether an identity may subscribe to a channel.
type CanJoin func(identity auth.Identity, channel string) bool

// Serve upgrades the request and pumps messages until the peer goes away.
// The identity must already be authenticated by the caller.
func (h *Hub) Serve(c *gin.Context, identity auth.Identity, canJoin CanJoin) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws: upgrade failed")
		return
	}

	client := newClient(conn, identity)
	go client.writePump()
	client.readPump(h, canJoin)
}

func (c *Client) readPump(h *Hub, canJoin CanJoin) {
	defer h.Drop(c)

	for {
		var req joinRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			return
		}
		if req.Action != "join" || req.Channel == "" {
			continue
		}
		if canJoin != nil && !canJoin(c.Identity, req.Channel) {
			log.Debug().Uint("user_id", c.Identity.UserID).Str("channel", req.Channel).Msg("ws: join denied")
			continue
		}
		h.Join(c, req.Channel)
	}
}

func (c *Client) writePump() {
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, nil)
}
