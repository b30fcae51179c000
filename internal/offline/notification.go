package offline

import (
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	NOTIFICATION_TITLE = "ZappyGames"
	NOTIFICATION_TAG   = "ZappyGames-notification"
	DEFAULT_PUSH_BODY  = "New games available!"
	NOTIFICATION_BADGE = "/icons/icon-72x72.png"

	ActionExplore = "explore"
	ActionClose   = "close"

	REMINDER_TAG   = "daily-reminder"
	REMINDER_TITLE = "ZappyGames - Daily Gaming Time!"
	REMINDER_BODY  = "Check out new games and continue your favorites!"

	HomePath = "/"
)

type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

type Notification struct {
	Title              string               `json:"title"`
	Body               string               `json:"body"`
	Tag                string               `json:"tag"`
	Icon               string               `json:"icon"`
	Badge              string               `json:"badge"`
	Vibrate            []int                `json:"vibrate,omitempty"`
	Actions            []NotificationAction `json:"actions,omitempty"`
	RequireInteraction bool                 `json:"requireInteraction"`
	ArrivedAt          time.Time            `json:"arrivedAt"`
}

// PushNotification builds the notification shown for a push payload. An
// empty payload gets the default body.
func PushNotification(payload string, now time.Time) Notification {
	body := payload
	if body == "" {
		body = DEFAULT_PUSH_BODY
	}

	return Notification{
		Title:   NOTIFICATION_TITLE,
		Body:    body,
		Tag:     NOTIFICATION_TAG,
		Icon:    PlaceholderIcon,
		Badge:   NOTIFICATION_BADGE,
		Vibrate: []int{100, 50, 100},
		Actions: []NotificationAction{
			{Action: ActionExplore, Title: "Play Now", Icon: "/icons/play-action.png"},
			{Action: ActionClose, Title: "Close", Icon: "/icons/close-action.png"},
		},
		RequireInteraction: true,
		ArrivedAt:          now,
	}
}

// ReminderNotification is the locally scheduled daily reminder used when
// push is unavailable.
func ReminderNotification(now time.Time) Notification {
	return Notification{
		Title:     REMINDER_TITLE,
		Body:      REMINDER_BODY,
		Tag:       REMINDER_TAG,
		Icon:      PlaceholderIcon,
		Badge:     NOTIFICATION_BADGE,
		ArrivedAt: now,
	}
}

// Sink is where notifications become visible, normally every connected
// tab.
type Sink interface {
	ShowNotification(notification Notification)
	CloseNotification(tag string)
	OpenWindow(path string)
}

// NotificationCenter tracks displayed notifications by tag. Showing a
// notification with a tag already on screen replaces it.
type NotificationCenter struct {
	mu      sync.Mutex
	visible map[string]Notification
	sinks   []Sink
}

func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{visible: make(map[string]Notification)}
}

func (n *NotificationCenter) AddSink(sink Sink) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sinks = append(n.sinks, sink)
}

func (n *NotificationCenter) Show(notification Notification) {
	n.mu.Lock()
	n.visible[notification.Tag] = notification
	sinks := slices.Clone(n.sinks)
	n.mu.Unlock()

	for _, sink := range sinks {
		sink.ShowNotification(notification)
	}
}

func (n *NotificationCenter) Close(tag string) (Notification, bool) {
	n.mu.Lock()
	notification, ok := n.visible[tag]
	delete(n.visible, tag)
	sinks := slices.Clone(n.sinks)
	n.mu.Unlock()

	if ok {
		for _, sink := range sinks {
			sink.CloseNotification(tag)
		}
	}
	return notification, ok
}

func (n *NotificationCenter) Open(path string) {
	n.mu.Lock()
	sinks := slices.Clone(n.sinks)
	n.mu.Unlock()

	for _, sink := range sinks {
		sink.OpenWindow(path)
	}
}

// Visible returns the displayed notifications ordered by tag.
func (n *NotificationCenter) Visible() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, 0, len(n.visible))
	for _, notification := range n.visible {
		out = append(out, notification)
	}
	slices.SortFunc(out, func(a, b Notification) int {
		return strings.Compare(a.Tag, b.Tag)
	})
	return out
}
