// Package realtime subscribes to the server's row-level push-event
// stream over a websocket.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/focusdeck/focusdeck/internal/logger"
)

// Event tables
const (
	TableProjects      = "projects"
	TableTasks         = "tasks"
	TableArchivedTasks = "archived_tasks"
	TableProfiles      = "profiles"
)

// Event types
const (
	TypeInsert = "insert"
	TypeUpdate = "update"
	TypeDelete = "delete"
)

// Event is one row-level change pushed by the server. Row carries the
// full remote row for insert/update; for delete it carries only the id.
type Event struct {
	Table string          `json:"table"`
	Type  string          `json:"type"`
	Row   json.RawMessage `json:"row"`
}

// RowID extracts the id field from the event payload
func (e *Event) RowID() string {
	var row struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(e.Row, &row); err != nil {
		return ""
	}
	return row.ID
}

// Stream maintains a websocket subscription to the event endpoint,
// reconnecting with a flat delay until the context is cancelled.
type Stream struct {
	url            string
	token          func() string
	reconnectDelay time.Duration
	events         chan Event
}

// NewStream creates a stream against the server base URL. token is
// consulted on every (re)connect so a refreshed session is picked up.
func NewStream(serverURL string, token func() string) *Stream {
	wsURL := strings.Replace(serverURL, "http", "ws", 1) + "/api/v1/events"
	return &Stream{
		url:            wsURL,
		token:          token,
		reconnectDelay: 5 * time.Second,
		events:         make(chan Event, 64),
	}
}

// Events returns the channel push events are delivered on. It is closed
// when Run returns.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Run connects and reads events until ctx is cancelled. Connection
// failures are logged and retried after the reconnect delay.
func (s *Stream) Run(ctx context.Context) {
	defer close(s.events)

	for {
		if err := s.readLoop(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Event stream disconnected", logger.F("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Stream) readLoop(ctx context.Context) error {
	header := http.Header{}
	if t := s.token(); t != "" {
		header.Set("Authorization", "Bearer "+t)
	}

	conn, _, err := websocket.Dial(ctx, s.url, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	logger.Info("Event stream connected", logger.F("url", s.url))

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			logger.Warn("Dropping malformed event", logger.F("error", err))
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
