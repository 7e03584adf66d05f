package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/topupshop/internal/server/http/dto"
)

const (
	defaultEntriesLimit = 50
	maxEntriesLimit     = 500
)

// BalanceHandler manages wallet endpoints.
type BalanceHandler struct {
	facade BalanceFacade
}

// NewBalanceHandler constructs BalanceHandler.
func NewBalanceHandler(facade BalanceFacade) *BalanceHandler {
	return &BalanceHandler{facade: facade}
}

// Summary handles GET /api/balance.
func (h *BalanceHandler) Summary(c *gin.Context) {
	summary, err := h.facade.Balance(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Current: summary.Current, Spent: summary.Spent})
}

// Entries handles GET /api/balance/entries?limit=N.
func (h *BalanceHandler) Entries(c *gin.Context) {
	limit := defaultEntriesLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeMessage(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxEntriesLimit)
	}

	entries, err := h.facade.LedgerEntries(c.Request.Context(), CurrentUserID(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLedgerEntries(entries))
}

// RequestTopup handles POST /api/topups.
func (h *BalanceHandler) RequestTopup(c *gin.Context) {
	var req dto.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	topup, err := h.facade.RequestTopup(c.Request.Context(), CurrentUserID(c), req.Method, req.Amount, req.TransactionRef)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTopupResponse(*topup))
}

// Topups handles GET /api/topups.
func (h *BalanceHandler) Topups(c *gin.Context) {
	topups, err := h.facade.Topups(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTopupList(topups))
}
