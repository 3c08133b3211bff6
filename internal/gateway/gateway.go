package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/saathigo/internal/engine"
	"github.com/example/saathigo/internal/models"
)

const maxMessageBytes = 64 << 10

// session wraps one live websocket. The mutex serializes writes; gorilla
// connections allow only one concurrent writer.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) send(ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(ev)
}

// Gateway is the transport edge: it upgrades connections, assigns each one
// an opaque identity, feeds decoded inbound events to the engine, and
// delivers outbound events on the engine's behalf. The connection id is the
// ownership key into the registry; the session handle is used only for
// delivery.
type Gateway struct {
	// Engine handles decoded inbound events. Set once during wiring,
	// before the first connection arrives.
	Engine *engine.Engine

	mu       sync.RWMutex
	sessions map[string]*session
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func New(log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		sessions: make(map[string]*session),
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// Connected reports whether a live session exists for connID.
func (g *Gateway) Connected(connID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.sessions[connID]
	return ok
}

// Deliver sends one event to a connection. A missing or already-closed
// session is a no-op returning false; broadcasts must keep going.
func (g *Gateway) Deliver(connID string, ev models.Event) bool {
	g.mu.RLock()
	s, ok := g.sessions[connID]
	g.mu.RUnlock()
	if !ok {
		return false
	}
	if err := s.send(ev); err != nil {
		g.log.Warn("ws send failed", "conn", connID, "type", ev.Type, "error", err)
		return false
	}
	return true
}

// SessionCount returns the number of live connections.
func (g *Gateway) SessionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions)
}

// HandleWS upgrades the request and runs the connection's read loop until
// the peer goes away. The optional name query parameter carries the
// already-authenticated display name; identity itself is the upstream auth
// service's problem, not ours.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("ws upgrade failed", "error", err)
		return
	}
	connID := newConnID()
	displayName := r.URL.Query().Get("name")

	g.mu.Lock()
	g.sessions[connID] = &session{conn: conn}
	g.mu.Unlock()
	g.log.Info("connection opened", "conn", connID, "sessions", g.SessionCount())

	g.readLoop(connID, displayName, conn)

	g.mu.Lock()
	delete(g.sessions, connID)
	g.mu.Unlock()
	_ = conn.Close()

	// Removing the request and forgetting the session happen as one step
	// from the client's point of view: no orphaned requests.
	g.Engine.Disconnect(connID)
	g.log.Info("connection closed", "conn", connID, "sessions", g.SessionCount())
}

func (g *Gateway) readLoop(connID, displayName string, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageBytes)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Warn("ws read failed", "conn", connID, "error", err)
			}
			return
		}
		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			g.log.Warn("dropping undecodable event", "conn", connID, "error", err)
			continue
		}
		g.dispatch(connID, displayName, ev)
	}
}

// dispatch routes one inbound event into the engine. Malformed payloads
// are logged and dropped; clients never receive error events.
func (g *Gateway) dispatch(connID, displayName string, ev models.Event) {
	switch ev.Type {
	case models.EvSubmitRideRequest:
		var p models.SubmitPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			g.log.Warn("dropping malformed submit", "conn", connID, "error", err)
			return
		}
		if p.UserName == "" {
			p.UserName = displayName
		}
		g.Engine.Submit(connID, p)

	case models.EvRequestRideShare:
		var p models.SharePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			g.log.Warn("dropping malformed share request", "conn", connID, "error", err)
			return
		}
		g.Engine.RequestShare(connID, p)

	case models.EvAcceptRideShare:
		var p models.ShareReplyPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			g.log.Warn("dropping malformed share accept", "conn", connID, "error", err)
			return
		}
		g.Engine.AcceptShare(connID, p.FromUserID)

	case models.EvDeclineRideShare:
		var p models.ShareReplyPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			g.log.Warn("dropping malformed share decline", "conn", connID, "error", err)
			return
		}
		g.Engine.DeclineShare(connID, p.FromUserID)

	case models.EvCancelRideRequest:
		g.Engine.Cancel(connID)

	default:
		g.log.Warn("dropping unknown event", "conn", connID, "type", ev.Type)
	}
}

func newConnID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
