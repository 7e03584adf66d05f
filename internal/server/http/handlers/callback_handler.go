package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/topupshop/internal/server/http/dto"
)

// CallbackHandler receives provider status webhooks.
type CallbackHandler struct {
	facade CallbackFacade
}

// NewCallbackHandler constructs CallbackHandler.
func NewCallbackHandler(facade CallbackFacade) *CallbackHandler {
	return &CallbackHandler{facade: facade}
}

// Receive handles POST /api/orders/callback.
func (h *CallbackHandler) Receive(c *gin.Context) {
	var req dto.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}
	externalID := req.Identifier()
	if externalID == "" {
		writeMessage(c, http.StatusBadRequest, "missing order id")
		return
	}

	order, applied, err := h.facade.HandleCallback(c.Request.Context(), externalID, req.ProviderStatus(), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CallbackResponse{Success: true, OrderID: order.ID, Applied: applied})
}
