// Package ws exposes the call channel websocket endpoint.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kenniferm/eunoia-backend/internal/callhub"
	"github.com/kenniferm/eunoia-backend/internal/config"
	"github.com/kenniferm/eunoia-backend/internal/protocol"
	"github.com/kenniferm/eunoia-backend/internal/responder"
)

// Server handles call channel websocket connections.
type Server struct {
	cfg      *config.Config
	hub      *callhub.Hub
	sessions *responder.Factory
	upgrader websocket.Upgrader
}

// NewServer creates a new websocket server.
func NewServer(cfg *config.Config, hub *callhub.Hub, sessions *responder.Factory) *Server {
	return &Server{
		cfg:      cfg,
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The call provider connects from its own infrastructure.
				return true
			},
		},
	}
}

// RegisterRoutes registers the websocket route.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/llm-websocket/:call_id", s.HandleCallWebSocket)
}

// HandleCallWebSocket upgrades the connection and runs one call channel.
func (s *Server) HandleCallWebSocket(c echo.Context) error {
	callID := c.Param("call_id")

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade call channel for %s: %v", callID, err)
		return err
	}
	log.Printf("Call channel opened: %s", callID)

	conn := s.hub.NewConnection(callID, ws)
	conn.SetReadLimit(s.cfg.MaxMessageSize)

	go conn.WritePump(s.cfg.PingInterval, s.cfg.WriteTimeout)

	session := s.sessions.NewSession(callID, conn)

	// Channel capabilities first, then the greeting, before any inbound
	// traffic is processed.
	if err := conn.SendJSON(protocol.NewConfigResponse()); err != nil {
		log.Printf("WARN: failed to send config to call %s: %v", callID, err)
	}
	session.Greet()

	go s.readPump(conn, session)

	return nil
}

// readPump reads inbound events until the channel closes.
func (s *Server) readPump(conn *callhub.Conn, session *responder.Session) {
	defer func() {
		session.Close()
		s.hub.Unregister(conn)
		conn.Close()
		log.Printf("Call channel closed: %s", conn.CallID)
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("Call channel error for %s: %v", conn.CallID, err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		if msgType != websocket.TextMessage {
			log.Printf("WARN: ignoring non-text message on call %s", conn.CallID)
			continue
		}

		var event protocol.InboundEvent
		if err := json.Unmarshal(message, &event); err != nil {
			// Malformed events are dropped; the channel itself stays up.
			log.Printf("WARN: malformed event on call %s: %v", conn.CallID, err)
			continue
		}

		session.HandleEvent(&event)
	}
}
