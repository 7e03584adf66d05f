package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultHeartbeat = 25 * time.Second

// EventsHandler streams order status changes to the signed-in user.
type EventsHandler struct {
	facade    EventsFacade
	heartbeat time.Duration
}

// NewEventsHandler constructs EventsHandler.
func NewEventsHandler(facade EventsFacade) *EventsHandler {
	return &EventsHandler{facade: facade, heartbeat: defaultHeartbeat}
}

// Stream handles GET /api/orders/events as server-sent events.
func (h *EventsHandler) Stream(c *gin.Context) {
	events, cancel := h.facade.SubscribeOrders(CurrentUserID(c))
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("order", event)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
