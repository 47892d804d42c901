package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/liveworkshop/go/internal/live/broadcast"
	"github.com/rs/zerolog/log"
)

// ConnectionManager keeps one pool of websocket connections per workshop and
// one transport subscription per pool.
type ConnectionManager struct {
	// Connection pools organized by workshop ID
	workshopConnections map[uuid.UUID]map[*Connection]bool
	// Transport subscriptions, opened with the first connection of a pool
	unsubscribers map[uuid.UUID]func()
	mu            sync.RWMutex

	transport broadcast.Transport
	upgrader  websocket.Upgrader
	config    ConnectionConfig

	broadcastCh chan BroadcastMessage
}

// Connection represents a websocket connection to a presenter or viewer screen
type Connection struct {
	ID         string
	WorkshopID uuid.UUID
	Conn       *websocket.Conn
	Send       chan []byte
	Manager    *ConnectionManager

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for websocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage is an encoded envelope headed for one workshop's screens
type BroadcastMessage struct {
	WorkshopID uuid.UUID
	Data       []byte
}

// DefaultConnectionConfig returns default websocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024, // screens only send pongs
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		SendBufferSize:  32,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new websocket connection manager
func NewConnectionManager(config ConnectionConfig, transport broadcast.Transport) *ConnectionManager {
	return &ConnectionManager{
		workshopConnections: make(map[uuid.UUID]map[*Connection]bool),
		unsubscribers:       make(map[uuid.UUID]func()),
		transport:           transport,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// Start processes broadcast messages until ctx is cancelled
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to a websocket. initial is
// queued before any broadcast so the screen starts from a full snapshot.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, workshopID uuid.UUID, initial []byte) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		WorkshopID:  workshopID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}
	if initial != nil {
		connection.Send <- initial
	}

	if err := cm.registerConnection(connection); err != nil {
		conn.Close()
		return err
	}

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("workshop_id", workshopID.String()).
		Msg("websocket connection established")
	return nil
}

// registerConnection adds a connection, subscribing to the workshop's topic
// when it is the first one.
func (cm *ConnectionManager) registerConnection(conn *Connection) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.workshopConnections[conn.WorkshopID] == nil {
		workshopID := conn.WorkshopID
		unsubscribe, err := cm.transport.Subscribe(broadcast.Topic(workshopID), func(data []byte) {
			cm.BroadcastToWorkshop(workshopID, data)
		})
		if err != nil {
			return fmt.Errorf("subscribe workshop %s: %w", workshopID, err)
		}
		cm.unsubscribers[workshopID] = unsubscribe
		cm.workshopConnections[workshopID] = make(map[*Connection]bool)

		log.Info().Str("workshop_id", workshopID.String()).Msg("subscribed to workshop topic")
	}
	cm.workshopConnections[conn.WorkshopID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("workshop_id", conn.WorkshopID.String()).
		Int("total_connections", len(cm.workshopConnections[conn.WorkshopID])).
		Msg("connection registered")
	return nil
}

// unregisterConnection removes a connection and drops the topic
// subscription with the last one.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	var unsubscribe func()

	cm.mu.Lock()
	if connections, exists := cm.workshopConnections[conn.WorkshopID]; exists {
		if _, exists := connections[conn]; exists {
			delete(connections, conn)
			close(conn.Send)

			if len(connections) == 0 {
				delete(cm.workshopConnections, conn.WorkshopID)
				unsubscribe = cm.unsubscribers[conn.WorkshopID]
				delete(cm.unsubscribers, conn.WorkshopID)
			}

			log.Info().
				Str("connection_id", conn.ID).
				Str("workshop_id", conn.WorkshopID.String()).
				Msg("connection unregistered")
		}
	}
	cm.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
		log.Info().Str("workshop_id", conn.WorkshopID.String()).Msg("unsubscribed from workshop topic")
	}
}

// BroadcastToWorkshop queues data for every screen of a workshop. Messages
// that are not valid envelopes are dropped here.
func (cm *ConnectionManager) BroadcastToWorkshop(workshopID uuid.UUID, data []byte) {
	if _, err := broadcast.Decode(data); err != nil {
		log.Warn().Err(err).Str("workshop_id", workshopID.String()).Msg("dropping undecodable broadcast")
		return
	}

	select {
	case cm.broadcastCh <- BroadcastMessage{WorkshopID: workshopID, Data: data}:
	default:
		log.Warn().Str("workshop_id", workshopID.String()).Msg("broadcast channel full, dropping message")
	}
}

// handleBroadcast fans one message out. Sends happen under the read lock so
// they never race with a Send channel being closed.
func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	var slow []*Connection

	cm.mu.RLock()
	connections := cm.workshopConnections[message.WorkshopID]
	for conn := range connections {
		select {
		case conn.Send <- message.Data:
		default:
			slow = append(slow, conn)
		}
	}
	delivered := len(connections) - len(slow)
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("workshop_id", conn.WorkshopID.String()).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Str("workshop_id", message.WorkshopID.String()).
		Int("connections", delivered).
		Msg("snapshot broadcasted")
}

// Stats summarizes the active connections
type Stats struct {
	TotalConnections    int            `json:"total_connections"`
	ActiveWorkshops     int            `json:"active_workshops"`
	WorkshopConnections map[string]int `json:"workshop_connections"`
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() Stats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := Stats{
		ActiveWorkshops:     len(cm.workshopConnections),
		WorkshopConnections: make(map[string]int, len(cm.workshopConnections)),
	}
	for workshopID, connections := range cm.workshopConnections {
		stats.TotalConnections += len(connections)
		stats.WorkshopConnections[workshopID.String()] = len(connections)
	}
	return stats
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	var all []*Connection
	for _, connections := range cm.workshopConnections {
		for conn := range connections {
			all = append(all, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range all {
		cm.unregisterConnection(conn)
	}
}

// writePump handles sending messages to the websocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to websocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump keeps the read deadline fresh. Screens are read-only, so anything
// they send is discarded.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected websocket close error")
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
