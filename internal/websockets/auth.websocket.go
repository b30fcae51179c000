package websockets

import (
	"context"
	"zappygames/internal/session"
)

// handleAuthResponse replaces the tab's session with the one behind the
// token. An unknown token leaves the tab signed out but connected, so it
// still receives notifications.
func (c *Client) handleAuthResponse(ctx context.Context, message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	token, _ := message.Data["token"].(string)
	next := c.Manager.sessions.Open(ctx, token)
	c.attach(next)

	current := next.Current()
	if token != "" && !current.Authenticated {
		log.Info("Client presented an invalid token", "clientID", c.ID)
		c.queue(newMessage(MESSAGE_TYPE_AUTH_FAILURE, CHANNEL_SYSTEM, "authentication_failed",
			map[string]any{"reason": "Session expired or invalid"}))
		return
	}

	log.Info("Client session attached",
		"clientID", c.ID,
		"authenticated", current.Authenticated,
		"userID", current.UserID(),
	)
	c.queue(c.sessionMessage(MESSAGE_TYPE_AUTH_SUCCESS, "authenticated", current))
}

func (c *Client) handleSignOut(ctx context.Context) {
	log := c.Manager.log.Function("handleSignOut")

	if err := c.Session().SignOut(ctx); err != nil {
		log.Er("failed to sign out", err, "clientID", c.ID)
		c.sendError(MESSAGE_TYPE_SIGN_OUT, err)
	}
}

// attach swaps the session, closing the previous one and forwarding later
// changes to the tab.
func (c *Client) attach(next *session.State) {
	unsubscribe := next.OnChange(func(snapshot session.Snapshot) {
		c.queue(c.sessionMessage(MESSAGE_TYPE_SESSION_CHANGED, "changed", snapshot))
	})

	c.mu.Lock()
	previous, previousUnsubscribe := c.session, c.unsubscribe
	c.session, c.unsubscribe = next, unsubscribe
	c.mu.Unlock()

	if previousUnsubscribe != nil {
		previousUnsubscribe()
	}
	if previous != nil {
		previous.Close()
	}
}

func (c *Client) sessionMessage(messageType, action string, snapshot session.Snapshot) Message {
	message := newMessage(messageType, CHANNEL_SYSTEM, action, toData(snapshot))
	if snapshot.Authenticated {
		message.UserID = snapshot.UserID().String()
	}
	return message
}
