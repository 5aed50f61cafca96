package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// ClientState tracks what a connection may ask for
type ClientState string

const (
	ClientLobby  ClientState = "lobby"
	ClientInGame ClientState = "in_game"
)

// MessageHandler is a function that handles incoming messages
type MessageHandler func(client *Client, msg *Message)

// Client represents a connected WebSocket client
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	SessionID string
	Send      chan []byte

	mu           sync.Mutex
	state        ClientState
	onDisconnect func(*Client)

	closeMu sync.Mutex
	closed  bool
}

// NewClient creates a new client
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		state:     ClientLobby,
	}
}

func (c *Client) GetState() ClientState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) SetState(state ClientState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// SetOnDisconnect registers a callback run once when the read pump exits
func (c *Client) SetOnDisconnect(fn func(*Client)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = fn
}

func (c *Client) OnDisconnect() func(*Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onDisconnect
}

// Close closes the client connection
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.Conn != nil {
		c.Conn.Close()
	}
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}

// SendMessage queues a message for the write pump
func (c *Client) SendMessage(msg *Message) error {
	bytes, err := marshalMessage(msg)
	if err != nil {
		return err
	}

	// Hold closeMu so Close cannot close Send under us.
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return nil
	}

	select {
	case c.Send <- bytes:
		return nil
	default:
		return ErrChannelFull
	}
}

// ReadPump pumps messages from the websocket connection to the handler
func (c *Client) ReadPump(handler MessageHandler) {
	defer func() {
		if callback := c.OnDisconnect(); callback != nil {
			callback(c)
		}
		c.Hub.Unregister(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read failed", zap.String("session_id", c.SessionID), zap.Error(err))
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.Hub.logger.Warn("malformed message", zap.String("session_id", c.SessionID), zap.Error(err))
			continue
		}

		handler(c, &msg)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It is the only writer on the connection, pings included.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Warn("websocket write failed", zap.String("session_id", c.SessionID), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
