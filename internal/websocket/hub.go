package websocket

import (
	"fmt"
	"log"
	"sync"
)

// Hub maintains room membership for active connections and pushes events to
// the clients in a room. Rooms come in two kinds: a per-post room carrying
// comment/like events for that post, and a per-user inbox carrying personal
// notifications. Delivery is at-most-once with no replay; clients that join
// late catch up with a full refetch.
type Hub struct {
	// Room name -> set of member clients
	rooms map[string]map[*Client]bool

	// Reverse index used to drop all memberships on disconnect
	memberships map[*Client]map[string]bool

	// Outbound events
	broadcast chan *Event

	// Register requests from new connections
	register chan *Client

	// Unregister requests from closing connections
	unregister chan *Client

	// Join/leave requests
	subscribe chan *subscription

	mu sync.RWMutex
}

// Event is a single realtime message scoped to one room.
type Event struct {
	Room    string                 `json:"-"`
	Name    string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

type subscription struct {
	client *Client
	room   string
	join   bool
}

// PostRoom returns the room name carrying events for one post.
func PostRoom(postID string) string {
	return fmt.Sprintf("post_%s", postID)
}

// UserRoom returns the inbox room name for one user.
func UserRoom(userID string) string {
	return fmt.Sprintf("user_%s", userID)
}

// NewHub creates a new Hub instance. The hub is injected wherever broadcast
// access is needed; there is no package-level registry.
func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Client]bool),
		memberships: make(map[*Client]map[string]bool),
		broadcast:   make(chan *Event, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *subscription, 64),
	}
}

// Run starts the hub loop. All membership mutation happens here.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.memberships[client] = make(map[string]bool)
			h.mu.Unlock()
			log.Printf("ws: client connected, user=%s", client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if rooms, ok := h.memberships[client]; ok {
				for room := range rooms {
					h.removeFromRoom(client, room)
				}
				delete(h.memberships, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("ws: client disconnected, user=%s", client.UserID)

		case sub := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.memberships[sub.client]; ok {
				if sub.join {
					h.addToRoom(sub.client, sub.room)
				} else {
					h.removeFromRoom(sub.client, sub.room)
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.RLock()
			for client := range h.rooms[event.Room] {
				select {
				case client.send <- event:
				default:
					// Slow consumer, drop the event for this client
					log.Printf("ws: send buffer full, dropping %s for user=%s", event.Name, client.UserID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// JoinPostRoom subscribes a connection to a post's event room
func (h *Hub) JoinPostRoom(client *Client, postID string) {
	h.subscribe <- &subscription{client: client, room: PostRoom(postID), join: true}
}

// LeavePostRoom unsubscribes a connection from a post's event room
func (h *Hub) LeavePostRoom(client *Client, postID string) {
	h.subscribe <- &subscription{client: client, room: PostRoom(postID), join: false}
}

// RegisterUserInbox subscribes a connection to its user's notification inbox
func (h *Hub) RegisterUserInbox(client *Client, userID string) {
	h.subscribe <- &subscription{client: client, room: UserRoom(userID), join: true}
}

// Broadcast pushes an event to every connection currently in the room.
// Fire-and-forget: no acknowledgment, and the event is dropped when the hub
// queue is full.
func (h *Hub) Broadcast(room, event string, payload map[string]interface{}) {
	e := &Event{
		Room:    room,
		Name:    event,
		Payload: payload,
	}

	select {
	case h.broadcast <- e:
	default:
		log.Printf("ws: broadcast queue full, dropping %s for room %s", event, room)
	}
}

// BroadcastToPost pushes an event to the room of one post
func (h *Hub) BroadcastToPost(postID, event string, payload map[string]interface{}) {
	h.Broadcast(PostRoom(postID), event, payload)
}

// BroadcastToUser pushes an event to one user's inbox room
func (h *Hub) BroadcastToUser(userID, event string, payload map[string]interface{}) {
	h.Broadcast(UserRoom(userID), event, payload)
}

// RoomSize returns the number of connections in a room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// callers hold h.mu
func (h *Hub) addToRoom(client *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	h.memberships[client][room] = true
}

func (h *Hub) removeFromRoom(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.memberships[client], room)
}
