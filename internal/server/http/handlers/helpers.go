package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/server/http/dto"
	"github.com/polkiloo/topupshop/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

func pathInt64(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeMessage(c *gin.Context, status int, message string) {
	c.JSON(status, dto.ErrorResponse{Message: message})
}

// writeError maps domain errors to HTTP responses. Unknown errors are 500 and
// recorded on the context for the request logger.
func writeError(c *gin.Context, err error) {
	var funds *domainErrors.InsufficientFundsError
	var rejected *domainErrors.ProviderRejectedError

	switch {
	case errors.As(err, &funds):
		c.JSON(http.StatusBadRequest, dto.InsufficientFundsResponse{
			Message:  "insufficient balance",
			Required: funds.Required,
			Current:  funds.Current,
			Shortage: funds.Shortage,
		})
	case errors.Is(err, domainErrors.ErrCompensationFailed):
		_ = c.Error(err)
		writeMessage(c, http.StatusInternalServerError, "order failed and the refund is pending manual review")
	case errors.As(err, &rejected):
		status := rejected.StatusCode
		if status < http.StatusBadRequest || status > 599 {
			status = http.StatusBadGateway
		}
		if len(rejected.Body) > 0 {
			c.Data(status, "application/json; charset=utf-8", rejected.Body)
			return
		}
		writeMessage(c, status, "provider rejected the order")
	case errors.Is(err, domainErrors.ErrProviderUnavailable):
		_ = c.Error(err)
		if errors.Is(err, context.DeadlineExceeded) {
			writeMessage(c, http.StatusGatewayTimeout, "provider timed out")
			return
		}
		writeMessage(c, http.StatusBadGateway, "provider unavailable")
	case errors.Is(err, domainErrors.ErrInvalidInput), errors.Is(err, domainErrors.ErrInvalidAmount):
		writeMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		writeMessage(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domainErrors.ErrUserBanned):
		writeMessage(c, http.StatusForbidden, "account is banned")
	case errors.Is(err, domainErrors.ErrForbidden):
		writeMessage(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, domainErrors.ErrNotFound):
		writeMessage(c, http.StatusNotFound, "not found")
	case errors.Is(err, domainErrors.ErrAlreadyExists), errors.Is(err, domainErrors.ErrAlreadyProcessed):
		writeMessage(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
	}
}
