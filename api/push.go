package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/xiaoyuanzhu-com/debug-viewer/log"
)

const (
	// Time allowed to write a message to the viewer
	pushWriteWait = 10 * time.Second

	// Ping period; the browser answers pings automatically
	pushPingInterval = 30 * time.Second

	// Time allowed to read the next pong; must exceed pushPingInterval
	pushPongWait = 2 * pushPingInterval

	// Client messages are ignored, so keep them small
	pushMaxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Local tool, any origin on this machine may watch
	},
}

// PushChannel handles GET /ws. The session receives one new_image message
// per detected file until either side closes the connection.
func (h *Handlers) PushChannel(c *gin.Context) {
	notif := h.server.Notifications()

	// Register before the handshake completes so a client that has seen the
	// upgrade response cannot miss an event
	events, unsubscribe := notif.Subscribe()
	defer unsubscribe()

	// Mark as hijacked so the request logger leaves the response alone
	log.MarkHijacked(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	log.Info().
		Str("remote", c.ClientIP()).
		Int("sessions", notif.SubscriberCount()).
		Msg("viewer connected")

	readerDone := make(chan struct{})
	go discardClientMessages(conn, readerDone)

	ticker := time.NewTicker(pushPingInterval)
	defer ticker.Stop()

	shutdown := h.server.ShutdownContext().Done()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				// Broadcaster shut down or this session fell too far behind;
				// either way the viewer reconnects and reloads
				closeSession(conn, websocket.CloseGoingAway, "session closed")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(pushWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Debug().Err(err).Msg("push write failed, dropping session")
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pushWriteWait)); err != nil {
				log.Debug().Err(err).Msg("push ping failed, dropping session")
				return
			}

		case <-readerDone:
			log.Info().Str("remote", c.ClientIP()).Msg("viewer disconnected")
			return

		case <-shutdown:
			closeSession(conn, websocket.CloseGoingAway, "server shutting down")
			return
		}
	}
}

// discardClientMessages reads until the connection fails. Reading is still
// required so close and pong frames get processed.
func discardClientMessages(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(pushMaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pushPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pushPongWait))
		return nil
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Debug().Err(err).Msg("viewer connection closed unexpectedly")
			}
			return
		}
	}
}

func closeSession(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(pushWriteWait))
}
