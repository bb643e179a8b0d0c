package stream

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Client requests roads from a stream server.
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration
}

// Dial connects to the websocket endpoint at url, e.g. "ws://localhost:4443/ws".
func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return &Client{conn: conn, timeout: 30 * time.Second}, nil
}

// SetTimeout bounds how long Generate waits between two events.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Generate sends req and collects events up to the summary. A request the
// server rejects ends with an error event and is returned as an error along
// with the events received so far.
func (c *Client) Generate(req Request) ([]Event, error) {
	if err := c.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var events []Event
	for {
		c.conn.SetReadDeadline(time.Now().Add(c.timeout))
		var ev Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			return events, fmt.Errorf("failed to read event: %w", err)
		}
		events = append(events, ev)

		switch ev.Type {
		case EventSummary:
			return events, nil
		case EventError:
			// Storage errors are followed by the summary.
			if ev.Code == CodeUnavailable {
				continue
			}
			return events, errors.New(ev.Code + ": " + ev.Error)
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
