package websockets

import (
	"context"
	"zappygames/internal/offline"
)

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	ctx, cancel := context.WithTimeout(c.context(), COMMAND_TIMEOUT)
	defer cancel()

	switch message.Type {
	case MESSAGE_TYPE_PING:
		c.queue(newMessage(MESSAGE_TYPE_PONG, CHANNEL_SYSTEM, "", nil))
	case MESSAGE_TYPE_AUTH_RESPONSE:
		c.handleAuthResponse(ctx, message)
	case MESSAGE_TYPE_SIGN_OUT:
		c.handleSignOut(ctx)
	case MESSAGE_TYPE_PLAN:
		c.handlePlan(message)
	case MESSAGE_TYPE_WORKER_STATUS:
		c.handleWorkerStatus(ctx)
	case MESSAGE_TYPE_SYNC:
		c.handleSync(ctx, message)
	case MESSAGE_TYPE_NOTIFICATION_CLICK:
		c.handleNotificationClick(ctx, message)
	default:
		log.Warn("Unknown message type", "clientID", c.ID, "type", message.Type)
		c.queue(newMessage(MESSAGE_TYPE_ERROR, CHANNEL_SYSTEM, message.Type,
			map[string]any{"reason": "Unknown message type"}))
	}
}

// handlePlan stores the tab's offline strategy. The plan decides whether
// the tab receives the daily reminder.
func (c *Client) handlePlan(message Message) {
	log := c.Manager.log.Function("handlePlan")

	var capabilities offline.Capabilities
	if err := fromData(message.Data, &capabilities); err != nil {
		c.sendError(MESSAGE_TYPE_PLAN, err)
		return
	}
	if err := c.Manager.validate.Struct(capabilities); err != nil {
		c.sendError(MESSAGE_TYPE_PLAN, err)
		return
	}

	plan := c.Manager.offline.Plan(capabilities)

	c.mu.Lock()
	c.plan = &plan
	c.mu.Unlock()

	log.Info("Client plan set", "clientID", c.ID, "mode", plan.Mode, "reminder", plan.DailyReminder)
	c.queue(newMessage(MESSAGE_TYPE_PLAN, CHANNEL_WORKER, "planned", toData(plan)))
}

func (c *Client) handleWorkerStatus(ctx context.Context) {
	status, err := c.Manager.offline.Coordinator.Status(ctx)
	if err != nil {
		c.sendError(MESSAGE_TYPE_WORKER_STATUS, err)
		return
	}
	c.queue(newMessage(MESSAGE_TYPE_WORKER, CHANNEL_WORKER, "status", toData(status)))
}

func (c *Client) handleSync(ctx context.Context, message Message) {
	log := c.Manager.log.Function("handleSync")

	tag, _ := message.Data["tag"].(string)
	if tag == "" {
		tag = offline.SyncTagBackground
	}

	if err := c.Manager.offline.Coordinator.Sync(ctx, tag); err != nil {
		log.Warn("Sync failed", "clientID", c.ID, "tag", tag, "error", err)
		c.sendError(MESSAGE_TYPE_SYNC, err)
		return
	}
	c.queue(newMessage(MESSAGE_TYPE_SYNC_COMPLETE, CHANNEL_WORKER, "synced", map[string]any{"tag": tag}))
}

// handleNotificationClick forwards the click to the worker. The close and
// navigate messages reach the tabs through the notification sink.
func (c *Client) handleNotificationClick(ctx context.Context, message Message) {
	tag, _ := message.Data["tag"].(string)
	if tag == "" {
		tag = offline.NOTIFICATION_TAG
	}
	action, _ := message.Data["action"].(string)

	if _, err := c.Manager.offline.Coordinator.NotificationClick(ctx, tag, action); err != nil {
		c.sendError(MESSAGE_TYPE_NOTIFICATION_CLICK, err)
	}
}

func (c *Client) sendError(action string, err error) {
	c.queue(newMessage(MESSAGE_TYPE_ERROR, CHANNEL_SYSTEM, action, map[string]any{"reason": err.Error()}))
}
