package events

import (
	"encoding/json"
	"time"

	"codeberg.org/mediagate/server/internal/logger"
)

// creates a hub; call Run to start routing
func NewHub() *Hub {
	return &Hub{
		users:         make(map[string]map[string]*Client),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		publish:       make(chan *Message, 256),
		shutdown:      make(chan struct{}),
		ipConnections: make(map[string]int),
		sequences:     make(map[string]uint64),
	}
}

// creates a message with a JSON payload
func NewMessage(msgType, userID string, payload any) (*Message, error) {
	var raw json.RawMessage

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		raw = data
	}

	return &Message{
		Type:      msgType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   raw,
	}, nil
}

// starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case msg := <-h.publish:
			h.deliver(msg)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// queues a notification for every connection of userID
func (h *Hub) Publish(userID, msgType string, payload any) error {
	msg, err := NewMessage(msgType, userID, payload)
	if err != nil {
		return err
	}

	select {
	case <-h.shutdown:
		return ErrConnectionClosed
	default:
	}

	select {
	case h.publish <- msg:
		return nil
	case <-h.shutdown:
		return ErrConnectionClosed
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.users[client.UserID] == nil {
		h.users[client.UserID] = make(map[string]*Client)
	}

	h.users[client.UserID][client.ID] = client

	logger.Info("event subscriber registered",
		"client_id", client.ID,
		"user_id", client.UserID,
	)

	if msg, err := NewMessage(TypeConnected, client.UserID, nil); err == nil {
		client.Send(msg) //nolint:errcheck,gosec // G104: best effort greeting
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, exists := h.users[client.UserID]
	if !exists {
		return
	}

	if _, exists := userClients[client.ID]; !exists {
		return
	}

	delete(userClients, client.ID)
	client.Close()

	if client.IPAddress != "" {
		h.untrackIPLocked(client.IPAddress)
	}

	if len(userClients) == 0 {
		delete(h.users, client.UserID)
		delete(h.sequences, client.UserID)
	}

	logger.Info("event subscriber unregistered",
		"client_id", client.ID,
		"user_id", client.UserID,
	)
}

func (h *Hub) deliver(msg *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, exists := h.users[msg.UserID]
	if !exists {
		return
	}

	h.sequences[msg.UserID]++
	msg.Sequence = h.sequences[msg.UserID]

	for clientID, client := range userClients {
		if err := client.Send(msg); err != nil {
			logger.WarnErr(err, "failed to push event",
				"client_id", clientID,
				"user_id", msg.UserID,
				"type", msg.Type,
			)
		}
	}
}

// returns the number of open connections for userID
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.users[userID])
}

// hands client to the hub loop; fails once the hub is shutting down
func (h *Hub) Add(client *Client) error {
	select {
	case h.Register <- client:
		return nil
	case <-h.shutdown:
		return ErrConnectionClosed
	}
}

// checks per-user and per-IP connection limits
func (h *Hub) CanAcceptConnection(userID, ipAddress string) (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.users[userID]) >= maxConnectionsPerUser {
		return false, "maximum connections per user exceeded"
	}

	if h.ipConnections[ipAddress] >= maxConnectionsPerIP {
		return false, "maximum connections per IP address exceeded"
	}

	return true, ""
}

// increments the connection count for an IP address
func (h *Hub) TrackIPConnection(ipAddress string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ipConnections[ipAddress]++
}

func (h *Hub) untrackIPLocked(ipAddress string) {
	h.ipConnections[ipAddress]--

	if h.ipConnections[ipAddress] <= 0 {
		delete(h.ipConnections, ipAddress)
	}
}

// stops the hub and closes every connection
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() { close(h.shutdown) })
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing event subscribers")

	for userID, userClients := range h.users {
		msg, err := NewMessage(TypeServerShutdown, userID, ServerShutdownPayload{
			Reason: "server is shutting down",
		})

		for _, client := range userClients {
			if err == nil {
				client.Send(msg) //nolint:errcheck,gosec // G104: best effort notice
			}

			client.Close()
		}
	}

	h.users = make(map[string]map[string]*Client)
	h.ipConnections = make(map[string]int)
	h.sequences = make(map[string]uint64)
}
