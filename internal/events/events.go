package events

import (
	"context"
	"sync"
	"time"
	"zappygames/internal/database"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type Channel string

func (c Channel) String() string {
	return string(c)
}

const (
	PUSH_CHANNEL      Channel = "offline.push"
	BROADCAST_CHANNEL Channel = "broadcast"
)

type MessageType string

const (
	PUSH      MessageType = "push"
	BROADCAST MessageType = "broadcast"
)

type Event struct {
	ID        string         `json:"id"`
	Type      MessageType    `json:"type"`
	Channel   Channel        `json:"channel"`
	UserID    *uuid.UUID     `json:"userId,omitempty"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type EventHandler func(event Event) error

// EventBus fans events out to every instance through valkey pub/sub. With
// no valkey client it delivers to the local handlers only.
type EventBus struct {
	client    database.CacheClient
	logger    logger.Logger
	handlers  map[Channel][]EventHandler
	listening map[Channel]bool
	mutex     sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(client database.CacheClient) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventBus{
		client:    client,
		logger:    logger.New("EventBus"),
		handlers:  make(map[Channel][]EventHandler),
		listening: make(map[Channel]bool),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (eb *EventBus) Distributed() bool {
	return eb.client != nil
}

// Publish delivers event on channel. Through valkey the local handlers
// receive it from the subscription, so it is never delivered twice.
func (eb *EventBus) Publish(ctx context.Context, channel Channel, event Event) error {
	log := eb.logger.TraceFromContext(ctx).Function("Publish")

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Channel == "" {
		event.Channel = channel
	}

	if !eb.Distributed() {
		eb.notifyLocalHandlers(channel, event)
		return nil
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "eventID", event.ID)
	}

	if err := database.NewCacheBuilder(eb.client, channel.String()).
		WithContext(ctx).
		WithValue(string(eventData)).
		Publish(); err != nil {
		return log.Err("failed to publish event to valkey", err,
			"channel", channel,
			"eventID", event.ID,
		)
	}

	log.Info("Event published", "channel", channel, "eventID", event.ID, "eventType", event.Type)
	return nil
}

func (eb *EventBus) Subscribe(channel Channel, handler EventHandler) error {
	log := eb.logger.Function("Subscribe")

	eb.mutex.Lock()
	eb.handlers[channel] = append(eb.handlers[channel], handler)
	startListener := eb.Distributed() && !eb.listening[channel]
	eb.listening[channel] = true
	eb.mutex.Unlock()

	log.Info("Handler subscribed to channel", "channel", channel)

	if startListener {
		go eb.listenToChannel(channel)
	}

	return nil
}

func (eb *EventBus) notifyLocalHandlers(channel Channel, event Event) {
	log := eb.logger.Function("notifyLocalHandlers")

	eb.mutex.RLock()
	handlers := append([]EventHandler(nil), eb.handlers[channel]...)
	eb.mutex.RUnlock()

	for i, handler := range handlers {
		go func(h EventHandler, handlerIndex int) {
			if err := h(event); err != nil {
				log.Er("handler failed", err,
					"channel", channel,
					"eventID", event.ID,
					"handlerIndex", handlerIndex,
				)
			}
		}(handler, i)
	}
}

func (eb *EventBus) listenToChannel(channel Channel) {
	log := eb.logger.Function("listenToChannel")
	log.Info("Starting to listen to channel", "channel", channel)

	err := eb.client.Receive(
		eb.ctx,
		eb.client.B().Subscribe().Channel(channel.String()).Build(),
		func(msg valkey.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Er("failed to unmarshal event", err, "channel", channel, "message", msg.Message)
				return
			}

			log.Debug("Received event from valkey", "channel", channel, "eventID", event.ID)
			eb.notifyLocalHandlers(channel, event)
		},
	)
	if err != nil && eb.ctx.Err() == nil {
		log.Er("failed to listen to channel", err, "channel", channel)
	}
}

func (eb *EventBus) Close() error {
	eb.cancel()
	eb.logger.Function("Close").Info("EventBus closed")
	return nil
}

// PublishPush fans a push payload out to every instance's offline worker.
func (eb *EventBus) PublishPush(ctx context.Context, payload string) error {
	return eb.Publish(ctx, PUSH_CHANNEL, Event{
		Type: PUSH,
		Data: map[string]any{"payload": payload},
	})
}

// PushPayload extracts the payload of a PUSH event.
func PushPayload(event Event) string {
	payload, _ := event.Data["payload"].(string)
	return payload
}
