package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/topupshop/internal/domain/model"
	"github.com/polkiloo/topupshop/internal/server/http/dto"
)

// AdminHandler serves moderation endpoints. Routes must be guarded by
// middleware.AdminRequired.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Topups handles GET /api/admin/topups?status=.
func (h *AdminHandler) Topups(c *gin.Context) {
	status := model.TopupStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	topups, err := h.facade.TopupsByStatus(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTopupList(topups))
}

// ApproveTopup handles PATCH /api/admin/topups/:id/approve.
func (h *AdminHandler) ApproveTopup(c *gin.Context) {
	h.review(c, h.facade.ApproveTopup)
}

// RejectTopup handles PATCH /api/admin/topups/:id/reject.
func (h *AdminHandler) RejectTopup(c *gin.Context) {
	h.review(c, h.facade.RejectTopup)
}

func (h *AdminHandler) review(c *gin.Context, resolve func(ctx context.Context, id int64, note string) (*model.Topup, error)) {
	id, ok := pathInt64(c, "id")
	if !ok {
		writeMessage(c, http.StatusBadRequest, "invalid topup id")
		return
	}
	var req dto.ReviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeMessage(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	topup, err := resolve(c.Request.Context(), id, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTopupResponse(*topup))
}

// SetOrderStatus handles PATCH /api/admin/orders/:id/status.
func (h *AdminHandler) SetOrderStatus(c *gin.Context) {
	var req dto.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeMessage(c, http.StatusBadRequest, "status is required")
		return
	}
	status := model.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))

	order, applied, err := h.facade.SetOrderStatus(c.Request.Context(), c.Param("id"), status, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderStatusResponse{Order: dto.NewOrderResponse(*order), Applied: applied})
}

// SetUserBanned handles PATCH /api/admin/users/:id/ban.
func (h *AdminHandler) SetUserBanned(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		writeMessage(c, http.StatusBadRequest, "invalid user id")
		return
	}
	var req dto.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeMessage(c, http.StatusBadRequest, "banned is required")
		return
	}

	if err := h.facade.SetUserBanned(c.Request.Context(), id, *req.Banned, req.Reason); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
