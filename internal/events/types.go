package events

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// message types pushed to subscribers
const (
	// is sent when a user's active membership changes
	TypeMembershipChanged = "membership_changed"

	// is sent when a user's profile is edited
	TypeProfileUpdated = "profile_updated"

	// is sent to a connecting client once it is registered
	TypeConnected = "connected"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// subscribers only send control frames
	maxMessageSize = 4 * 1024
)

// hub connection limit constants
const (
	maxConnectionsPerUser = 5
	maxConnectionsPerIP   = 10
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrTooManyClients   = errors.New("too many connections")
)

// a pushed notification
type Message struct {
	Type      string          `json:"type"`
	UserID    string          `json:"user_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Sequence  uint64          `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// carried by membership_changed
type MembershipChangedPayload struct {
	Tier      string     `json:"tier"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// carried by server_shutdown
type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// one subscriber connection
type Client struct {
	// unique identifier for this client
	ID string

	// user the client listens for
	UserID string

	// IP address of the client (for connection tracking)
	IPAddress string

	conn *websocket.Conn
	hub  *Hub

	// buffered channel of outbound messages
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

// routes per-user notifications to subscriber connections
type Hub struct {
	// registered clients by user ID and client ID
	users map[string]map[string]*Client

	// register requests from clients
	Register chan *Client

	// unregister requests from clients
	Unregister chan *Client

	// notifications to route
	publish chan *Message

	mu sync.RWMutex

	shutdown     chan struct{}
	shutdownOnce sync.Once

	// connection tracking: IP address -> count of connections
	ipConnections map[string]int

	// sequence numbers per user for message ordering
	sequences map[string]uint64
}
