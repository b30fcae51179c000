package websockets

import (
	"context"
	"sync"
	"time"
	"zappygames/internal/offline"
	"zappygames/internal/services"
	"zappygames/internal/session"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	MESSAGE_TYPE_PING               = "ping"
	MESSAGE_TYPE_PONG               = "pong"
	MESSAGE_TYPE_ERROR              = "error"
	MESSAGE_TYPE_AUTH_REQUEST       = "auth_request"
	MESSAGE_TYPE_AUTH_RESPONSE      = "auth_response"
	MESSAGE_TYPE_AUTH_SUCCESS       = "auth_success"
	MESSAGE_TYPE_AUTH_FAILURE       = "auth_failure"
	MESSAGE_TYPE_SIGN_OUT           = "sign_out"
	MESSAGE_TYPE_SESSION_CHANGED    = "session_changed"
	MESSAGE_TYPE_PLAN               = "plan"
	MESSAGE_TYPE_WORKER             = "worker"
	MESSAGE_TYPE_WORKER_STATUS      = "worker_status"
	MESSAGE_TYPE_SYNC               = "sync"
	MESSAGE_TYPE_SYNC_COMPLETE      = "sync_complete"
	MESSAGE_TYPE_NOTIFICATION       = "notification"
	MESSAGE_TYPE_NOTIFICATION_CLICK = "notification_click"
	MESSAGE_TYPE_NOTIFICATION_CLOSE = "notification_close"
	MESSAGE_TYPE_NAVIGATE           = "navigate"

	CHANNEL_SYSTEM       = "system"
	CHANNEL_WORKER       = "worker"
	CHANNEL_NOTIFICATION = "notification"

	PING_INTERVAL          = 30 * time.Second
	PONG_TIMEOUT           = 60 * time.Second
	WRITE_TIMEOUT          = 10 * time.Second
	MAX_MESSAGE_SIZE       = 64 * 1024
	SEND_CHANNEL_SIZE      = 64
	BROADCAST_CHANNEL_SIZE = 256
	COMMAND_TIMEOUT        = 30 * time.Second
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Action    string         `json:"action,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func newMessage(messageType, channel, action string, data map[string]any) Message {
	return Message{
		ID:        uuid.New().String(),
		Type:      messageType,
		Channel:   channel,
		Action:    action,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Connection is the part of *websocket.Conn the pumps use.
type Connection interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one browser tab. It owns its session state for the lifetime of
// the connection.
type Client struct {
	ID         string
	Connection Connection
	Manager    *Manager

	mu          sync.RWMutex
	session     *session.State
	unsubscribe func()
	plan        *offline.Plan

	sendMu sync.Mutex
	send   chan Message
	closed bool
}

func (c *Client) Session() *session.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) Plan() *offline.Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.plan
}

func (c *Client) wantsReminder() bool {
	plan := c.Plan()
	return plan != nil && plan.DailyReminder
}

// queue drops the message when the tab is not draining its buffer or the
// hub has already closed the client.
func (c *Client) queue(message Message) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

type Manager struct {
	hub      *Hub
	sessions *session.Service
	offline  *services.OfflineService
	validate *validator.Validate
	log      logger.Logger
}

// New starts the hub and registers the manager as a notification sink so
// worker notifications reach every tab.
func New(sessions *session.Service, offlineService *services.OfflineService) *Manager {
	log := logger.New("websockets")

	manager := &Manager{
		hub:      newHub(),
		sessions: sessions,
		offline:  offlineService,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	offlineService.Notifications.AddSink(manager)

	return manager
}

func (m *Manager) Close() {
	m.hub.stop()
}

func (m *Manager) ClientCount() int {
	return m.hub.count()
}

// HandleWebSocket serves one tab until it disconnects.
func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	m.Serve(c)
}

func (m *Manager) Serve(conn Connection) {
	log := m.log.Function("Serve")

	client := m.newClient(conn)
	ctx := client.context()

	if err := conn.WriteJSON(newMessage(MESSAGE_TYPE_AUTH_REQUEST, CHANNEL_SYSTEM, "authenticate", nil)); err != nil {
		log.Er("failed to send auth request", err, "clientID", client.ID)
		_ = conn.Close()
		return
	}

	if !m.hub.add(client) {
		_ = conn.Close()
		return
	}
	defer m.release(ctx, client)

	m.connectWorker(ctx, client)

	go client.writePump()
	client.readPump()
}

func (m *Manager) newClient(conn Connection) *Client {
	client := &Client{
		ID:         uuid.New().String(),
		Connection: conn,
		Manager:    m,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}
	client.attach(m.sessions.Open(client.context(), ""))
	return client
}

func (m *Manager) connectWorker(ctx context.Context, client *Client) {
	log := m.log.Function("connectWorker")

	version, err := m.offline.Coordinator.Connect(ctx, client.ID)
	if err != nil {
		log.Er("failed to connect client to worker", err, "clientID", client.ID)
		return
	}

	client.queue(newMessage(MESSAGE_TYPE_WORKER, CHANNEL_WORKER, "connected", map[string]any{
		"clientId":   client.ID,
		"controlled": version != "",
		"version":    version,
	}))

	for _, notification := range m.offline.Notifications.Visible() {
		if notification.Tag == offline.REMINDER_TAG {
			continue
		}
		client.queue(newMessage(MESSAGE_TYPE_NOTIFICATION, CHANNEL_NOTIFICATION, "show", toData(notification)))
	}
}

func (m *Manager) release(ctx context.Context, client *Client) {
	log := m.log.Function("release")

	m.hub.remove(client)

	if err := m.offline.Coordinator.Disconnect(ctx, client.ID); err != nil {
		log.Er("failed to disconnect client from worker", err, "clientID", client.ID)
	}

	client.mu.Lock()
	if client.unsubscribe != nil {
		client.unsubscribe()
	}
	client.session.Close()
	client.mu.Unlock()

	_ = client.Connection.Close()
	log.Info("Client disconnected", "clientID", client.ID)
}

func (c *Client) context() context.Context {
	return logger.ContextWithTraceID(context.Background(), c.ID)
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		return c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT))
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			return
		}

		message.Timestamp = time.Now()
		c.routeMessage(message)
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID, "type", message.Type)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
