package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"farmwise/utils"
)

// Server→client event types.
const (
	EventReceiveMessage = "receiveMessage"
	EventUserTyping     = "userTyping"
	EventSubscribed     = "subscribed"
	EventError          = "error"
)

// Client→server event types.
const (
	EventSendMessage = "sendMessage"
	EventTyping      = "userTyping"
	EventSubscribe   = "subscribe"
	EventUnsubscribe = "unsubscribe"
	EventMarkRead    = "markRead"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	// CommunityRoom is the room every client joins on connect. Messages with
	// no thread id fan out here.
	CommunityRoom = ""
)

// Event is one frame on the wire, both directions.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// OutEvent is a server-side frame carrying an already-resolved payload.
type OutEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Client is one authenticated websocket connection.
type Client struct {
	UserID   uint
	Username string

	hub  *Hub
	conn *websocket.Conn
	send chan OutEvent

	closeOnce sync.Once
}

// Hub owns the set of connected clients and the room-membership index.
// It is constructed once in main and handed to the handlers; there is no
// package-level instance.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		done:       make(chan struct{}),
	}
}

// Run processes client lifecycle events until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.joinLocked(CommunityRoom, c)
			h.mu.Unlock()
			utils.WSConnections.Inc()
			log.Info().Uint("user_id", c.UserID).Msg("relay client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			removed := false
			for room, members := range h.rooms {
				if _, ok := members[c]; ok {
					removed = true
					delete(members, c)
					if len(members) == 0 {
						delete(h.rooms, room)
					}
				}
			}
			h.mu.Unlock()
			if removed {
				utils.WSConnections.Dec()
				log.Info().Uint("user_id", c.UserID).Msg("relay client disconnected")
			}
			c.closeOnce.Do(func() { close(c.send) })

		case <-h.done:
			return
		}
	}
}

// Stop terminates the Run loop. Open connections close on their own as the
// HTTP server shuts down.
func (h *Hub) Stop() {
	close(h.done)
}

// Attach registers an authenticated connection and starts its write pump.
// The caller owns the read side.
func (h *Hub) Attach(userID uint, username string, conn *websocket.Conn) *Client {
	c := &Client{
		UserID:   userID,
		Username: username,
		hub:      h,
		conn:     conn,
		send:     make(chan OutEvent, 64),
	}
	h.register <- c
	go c.writePump()
	return c
}

// Detach unregisters a client and closes its connection.
func (h *Hub) Detach(c *Client) {
	h.unregister <- c
	_ = c.conn.Close()
}

// Join adds a client to a room. Membership authorization happens in the
// caller; the hub only maintains the index.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(room, c)
}

func (h *Hub) joinLocked(room string, c *Client) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

// Leave removes a client from a room. Leaving the community room is a no-op.
func (h *Hub) Leave(room string, c *Client) {
	if room == CommunityRoom {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast fans an event out to every member of a room. Best effort: an
// event for a client with a full send queue is dropped, never retried.
func (h *Hub) Broadcast(room string, ev OutEvent) {
	h.broadcast(room, ev, nil)
}

// BroadcastExcept is Broadcast minus one client, used for typing events.
func (h *Hub) BroadcastExcept(room string, ev OutEvent, skip *Client) {
	h.broadcast(room, ev, skip)
}

func (h *Hub) broadcast(room string, ev OutEvent, skip *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c == skip {
			continue
		}
		select {
		case c.send <- ev:
		default:
			log.Warn().Uint("user_id", c.UserID).Str("event", ev.Type).Msg("send queue full, dropping event")
		}
	}
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Send queues an event for this client only. Used for error events back to
// the originating connection.
func (c *Client) Send(ev OutEvent) {
	select {
	case c.send <- ev:
	default:
	}
}

// SendError surfaces a failure to the originating client as an error event.
func (c *Client) SendError(msg string) {
	c.Send(OutEvent{Type: EventError, Data: map[string]string{"message": msg}})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadLoop pumps inbound frames, dispatching each parsed event to handle.
// It returns when the transport closes; the caller detaches afterwards.
func (c *Client) ReadLoop(handle func(*Client, Event)) {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.SendError("malformed event")
			continue
		}
		handle(c, ev)
	}
}
