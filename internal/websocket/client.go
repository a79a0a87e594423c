package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8 * 1024
)

// Client is a middleman between one websocket connection and the hub
type Client struct {
	hub *Hub

	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound events
	send chan *Event

	// User ID associated with this client
	UserID string
}

// controlMessage is what clients send to manage their room memberships
type controlMessage struct {
	Action string `json:"action"` // join_post, leave_post, register_user, ping
	PostID string `json:"post_id,omitempty"`
}

// NewClient creates a new client
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan *Event, 256),
		UserID: userID,
	}
}

// readPump reads control messages from the connection until it closes, then
// unregisters the client, which drops all of its room memberships.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read error: %v", err)
			}
			break
		}

		var msg controlMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			continue
		}

		switch msg.Action {
		case "join_post":
			if msg.PostID != "" {
				c.hub.JoinPostRoom(c, msg.PostID)
			}
		case "leave_post":
			if msg.PostID != "" {
				c.hub.LeavePostRoom(c, msg.PostID)
			}
		case "register_user":
			c.hub.RegisterUserInbox(c, c.UserID)
		case "ping":
			select {
			case c.send <- &Event{Name: "pong", Payload: map[string]interface{}{"timestamp": time.Now().Unix()}}:
			default:
			}
		}
	}
}

// writePump pumps events from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			jsonData, err := json.Marshal(event)
			if err != nil {
				log.Printf("ws: error marshaling event: %v", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, jsonData); err != nil {
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

// Start starts the client's read and write pumps
func (c *Client) Start() {
	go c.writePump()
	c.readPump()
}
