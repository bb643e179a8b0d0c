package stream

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/roadgen/internal/geom"
	"github.com/lawnchairsociety/roadgen/internal/road"
)

// SocketSink writes generation events to a websocket as JSON.
type SocketSink struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer
}

// NewSocketSink wraps conn.
func NewSocketSink(conn *websocket.Conn) *SocketSink {
	return &SocketSink{conn: conn}
}

// Send writes one event.
func (s *SocketSink) Send(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(ev)
}

func (s *SocketSink) Place(p road.Placement) error {
	return s.Send(Event{Type: EventPlacement, Placement: &p})
}

func (s *SocketSink) Decorate(cells []geom.Vec2) error {
	return s.Send(Event{Type: EventDecorations, Decorations: cells})
}

func (s *SocketSink) Complete(generatedSeconds float64) error {
	return s.Send(Event{Type: EventComplete, GeneratedSeconds: generatedSeconds})
}
