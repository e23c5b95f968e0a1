package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/calvinwijaya/hearts-be/internal/auth"
	"github.com/calvinwijaya/hearts-be/internal/game"
	"github.com/calvinwijaya/hearts-be/internal/log"
	"github.com/calvinwijaya/hearts-be/internal/notify"
	"github.com/calvinwijaya/hearts-be/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 * 1024
	sendBufferSize = 256
)

var (
	errClientClosed = errors.New("client closed")
	errSendBacklog  = errors.New("send buffer full")
)

// Client is one websocket connection of a player. It implements notify.Handle.
type Client struct {
	ID       string
	conn     *websocket.Conn
	playerID int64
	name     string
	hub      *Hub

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(conn *websocket.Conn, playerID int64, name string, hub *Hub) *Client {
	return &Client{
		ID:       uuid.New().String(),
		conn:     conn,
		playerID: playerID,
		name:     name,
		hub:      hub,
		send:     make(chan []byte, sendBufferSize),
	}
}

// player resolves the connection's identity through the pool. The Player
// behind an identity changes after it walks away from a started game.
func (c *Client) player() *game.Player {
	return c.hub.pool.Player(c.playerID, c.name)
}

// Send queues a frame without blocking. A slow client gets an error and is
// dropped by the dispatcher.
func (c *Client) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClientClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return errSendBacklog
	}
}

// Close stops the write pump, which closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

func (c *Client) sendEvent(event string, data any) {
	id := c.playerID
	msg, err := json.Marshal(game.Notification{
		Event:     event,
		Player:    &id,
		Data:      data,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Error("ws: marshal %s event: %v", event, err)
		return
	}
	if err := c.Send(msg); err != nil {
		log.Debug("ws: drop %s event for player %d: %v", event, id, err)
	}
}

func (c *Client) sendError(err error) {
	c.sendEvent(game.EventError, map[string]string{"error": err.Error()})
}

// Hub connects websocket clients to the matchmaking pool.
type Hub struct {
	pool     *game.Pool
	registry *notify.Registry
	users    store.UserStore
	verifier auth.Verifier
	upgrader websocket.Upgrader
}

// NewHub creates a new WebSocket hub. An empty origins list or "*" accepts
// any origin.
func NewHub(pool *game.Pool, registry *notify.Registry, users store.UserStore, verifier auth.Verifier, origins []string) *Hub {
	h := &Hub{
		pool:     pool,
		registry: registry,
		users:    users,
		verifier: verifier,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(origins),
	}
	return h
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(allowed) == 0 || allowed[origin]
	}
}

// WebSocketHandler verifies the claimed identity, upgrades the connection and
// seats the player.
func (h *Hub) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(q.Get("id"), 10, 64)
	if err != nil || id <= 0 {
		errorResponse(w, http.StatusBadRequest, "Invalid player id")
		return
	}
	username := q.Get("username")
	if !h.verifier.Verify(id, username, q.Get("proof")) {
		errorResponse(w, http.StatusUnauthorized, "Invalid proof")
		return
	}

	user, err := h.users.GetOrCreate(r.Context(), store.Identity{
		ID:          id,
		Username:    username,
		DisplayName: q.Get("display_name"),
	})
	if err != nil {
		log.Error("ws: load user %d: %v", id, err)
		errorResponse(w, http.StatusInternalServerError, "Error retrieving player")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws: upgrade: %v", err)
		return
	}

	client := newClient(conn, id, user.Name(), h)
	if old := h.registry.Register(id, client); old != nil {
		log.Info("ws: player %d reconnected, closing previous connection", id)
		old.Close()
	}
	log.Debug("ws: player %d connected (%s)", id, client.ID)

	go client.writePump()
	go client.readPump()

	h.join(client)
}

func (h *Hub) join(c *Client) {
	if _, err := h.pool.Admit(c.player()); err != nil {
		c.sendError(err)
	}
}

// disconnect runs once the read pump ends. When a newer connection of the
// same player is registered the seat is left alone.
func (h *Hub) disconnect(c *Client) {
	c.Close()
	h.registry.UnregisterHandle(c)
	if current, ok := h.registry.Lookup(c.playerID); ok && current != c {
		return
	}
	log.Debug("ws: player %d disconnected (%s)", c.playerID, c.ID)

	p, ok := h.pool.Lookup(c.playerID)
	if !ok {
		return
	}
	if t, ok := h.pool.TableOf(c.playerID); ok {
		if err := t.Leave(p); err != nil && !errors.Is(err, game.ErrNotSeated) {
			log.Warn("ws: leave after disconnect of player %d: %v", c.playerID, err)
		}
	}

	// Nothing holds an unbound, disconnected player.
	if _, connected := h.registry.Lookup(c.playerID); !connected {
		h.pool.Forget(c.playerID)
	}
}

// dispatch runs one command for the client's player.
func (h *Hub) dispatch(c *Client, cmd Command) error {
	p := c.player()

	if _, ok := cmd.(JoinCommand); ok {
		_, err := h.pool.Admit(p)
		return err
	}

	t, ok := h.pool.TableOf(p.ID)
	if !ok {
		return game.ErrNotSeated
	}

	switch cmd := cmd.(type) {
	case LeaveCommand:
		err := t.Leave(p)
		h.pool.Release(p)
		return err
	case ChatCommand:
		return t.Chat(p, cmd.Text, cmd.PrivateTo)
	case MoveCommand:
		return t.PlayerMove(p, cmd.Card)
	case VoteToStartCommand:
		return t.VoteToStart(p)
	case PassCommand:
		return t.PassCards(p, cmd.Cards)
	case StateCommand:
		return t.SendState(p)
	default:
		return ErrUnknownCommand
	}
}

// readPump pumps commands from the WebSocket connection to the player's table
func (c *Client) readPump() {
	defer func() {
		c.hub.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("ws: read from player %d: %v", c.playerID, err)
			}
			return
		}

		cmd, err := DecodeCommand(message)
		if err != nil {
			c.sendError(err)
			continue
		}
		if err := c.hub.dispatch(c, cmd); err != nil {
			log.Debug("ws: player %d command %T rejected: %v", c.playerID, cmd, err)
			c.sendError(err)
		}
	}
}

// writePump pumps queued frames to the WebSocket connection, one JSON
// document per frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
