package websockets

import (
	"sync"
	"zappygames/internal/offline"

	"github.com/goccy/go-json"
)

type delivery struct {
	message Message
	accept  func(*Client) bool
}

type Hub struct {
	broadcast  chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	clients    map[string]*Client
	mutex      sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		broadcast:  make(chan delivery, BROADCAST_CHANNEL_SIZE),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
	}
}

func (h *Hub) run(m *Manager) {
	for {
		select {
		case client := <-h.register:
			m.registerClient(client)

		case client := <-h.unregister:
			m.unregisterClient(client)

		case next := <-h.broadcast:
			h.broadcastMessage(next, m)

		case <-h.done:
			h.mutex.Lock()
			for id, client := range h.clients {
				client.closeSend()
				delete(h.clients, id)
			}
			h.mutex.Unlock()
			return
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) publish(message Message, accept func(*Client) bool) bool {
	select {
	case h.broadcast <- delivery{message: message, accept: accept}:
		return true
	case <-h.done:
		return false
	default:
		return false
	}
}

func (m *Manager) registerClient(client *Client) {
	log := m.log.Function("registerClient")

	m.hub.mutex.Lock()
	m.hub.clients[client.ID] = client
	m.hub.mutex.Unlock()

	log.Info("Client registered", "clientID", client.ID)
}

func (m *Manager) unregisterClient(client *Client) {
	log := m.log.Function("unregisterClient")

	m.hub.mutex.Lock()
	delete(m.hub.clients, client.ID)
	m.hub.mutex.Unlock()

	client.closeSend()
	log.Info("Client unregistered", "clientID", client.ID)
}

func (h *Hub) broadcastMessage(next delivery, m *Manager) {
	log := m.log.Function("broadcastMessage")

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sent := 0
	for _, client := range h.clients {
		if next.accept != nil && !next.accept(client) {
			continue
		}
		if !client.queue(next.message) {
			log.Warn("Client send channel full, dropping message", "clientID", client.ID)
			continue
		}
		sent++
	}

	log.Debug("Message broadcast", "type", next.message.Type, "clientCount", sent)
}

// ShowNotification delivers a notification to the tabs. The daily reminder
// only goes to tabs whose plan asked for it.
func (m *Manager) ShowNotification(notification offline.Notification) {
	log := m.log.Function("ShowNotification")

	var accept func(*Client) bool
	if notification.Tag == offline.REMINDER_TAG {
		accept = (*Client).wantsReminder
	}

	message := newMessage(MESSAGE_TYPE_NOTIFICATION, CHANNEL_NOTIFICATION, "show", toData(notification))
	if !m.hub.publish(message, accept) {
		log.Warn("Broadcast channel is full, dropping notification", "tag", notification.Tag)
	}
}

func (m *Manager) CloseNotification(tag string) {
	m.hub.publish(newMessage(MESSAGE_TYPE_NOTIFICATION_CLOSE, CHANNEL_NOTIFICATION, "close",
		map[string]any{"tag": tag}), nil)
}

func (m *Manager) OpenWindow(path string) {
	m.hub.publish(newMessage(MESSAGE_TYPE_NAVIGATE, CHANNEL_NOTIFICATION, "open",
		map[string]any{"path": path}), nil)
}

func toData(value any) map[string]any {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}

func fromData(data map[string]any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
