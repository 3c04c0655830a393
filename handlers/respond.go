package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"quickbites-api/api"
	"quickbites-api/orders"
	"quickbites-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// isUniqueViolation reports whether err came from a unique index. GORM only
// translates driver errors when TranslateError is set, so the sqlite message
// is matched as a fallback.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// parseID reads the :id route parameter. Zero means malformed; lookups on
// zero fail with not-found downstream.
func parseID(c *gin.Context) uint {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id)
}

// respondOrderError maps order-service failures onto the API error contract.
func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "Order not found")
	case errors.Is(err, statemachine.ErrInvalidTransition):
		api.Error(c, http.StatusConflict, api.CodeInvalidTransition, err.Error())
	case errors.Is(err, orders.ErrPartnerTaken):
		api.Error(c, http.StatusConflict, api.CodeConflict, "Order has already been taken by another delivery partner")
	case errors.Is(err, orders.ErrConflict):
		api.Error(c, http.StatusConflict, api.CodeConflict, "Order was modified concurrently, please retry")
	default:
		log.Error().Err(err).Msg("order operation failed")
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Something went wrong")
	}
}
