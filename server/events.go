package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/focusdeck/focusdeck/internal/logger"
)

// Event is a change notification pushed to connected clients.
type Event struct {
	Table string          `json:"table"`
	Type  string          `json:"type"`
	Row   json.RawMessage `json:"row,omitempty"`
}

// Hub fans change events out to the websocket subscribers of each user.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[chan Event]struct{}{}}
}

// Subscribe registers a new event channel for the user.
func (h *Hub) Subscribe(userID string) chan Event {
	ch := make(chan Event, 64)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = map[chan Event]struct{}{}
	}
	h.subs[userID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes the channel and closes it.
func (h *Hub) Unsubscribe(userID string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[userID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(h.subs, userID)
		}
	}
}

// Broadcast delivers an event to every subscriber of the user. Slow
// subscribers with a full buffer miss the event rather than block the
// request path.
func (h *Hub) Broadcast(userID string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Server) broadcastRow(userID, table string, inserted bool, row interface{}) {
	raw, err := json.Marshal(row)
	if err != nil {
		logger.Error("marshal event row", logger.F("error", err.Error()))
		return
	}
	typ := "update"
	if inserted {
		typ = "insert"
	}
	s.hub.Broadcast(userID, Event{Table: table, Type: typ, Row: raw})
}

func (s *Server) broadcastDelete(userID, table, id string) {
	raw, _ := json.Marshal(map[string]string{"id": id})
	s.hub.Broadcast(userID, Event{Table: table, Type: "delete", Row: raw})
}

// handleEvents upgrades the request to a websocket and streams the
// user's change events until the client goes away.
func (s *Server) handleEvents(c echo.Context) error {
	userID := c.Get("user_id").(string)

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch := s.hub.Subscribe(userID)
	defer s.hub.Unsubscribe(userID, ch)

	ctx := c.Request().Context()

	// Drain reads so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			raw, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err = conn.Write(writeCtx, websocket.MessageText, raw)
			cancel()
			if err != nil {
				return nil
			}
		}
	}
}
