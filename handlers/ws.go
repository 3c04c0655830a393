package handlers

import (
	"strconv"
	"strings"

	"quickbites-api/auth"
	"quickbites-api/middleware"
	"quickbites-api/models"
	"quickbites-api/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WSHandler struct {
	DB  *gorm.DB
	Hub *ws.Hub
}

// Connect upgrades an authenticated request to a websocket. The client then
// subscribes to channels with join messages; each join is authorized against
// the caller's identity.
func (h *WSHandler) Connect(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	h.Hub.Serve(c, identity, h.canJoin)
}

// canJoin restricts channels to involved parties: your own user/delivery
// channel, restaurants you own, orders you participate in. Admins may watch
// anything.
func (h *WSHandler) canJoin(identity auth.Identity, channel string) bool {
	if identity.Role == models.RoleAdmin {
		return true
	}

	kind, rawID, ok := strings.Cut(channel, ":")
	if !ok {
		return false
	}
	id64, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return false
	}
	id := uint(id64)

	switch kind {
	case "user":
		return identity.UserID == id
	case "delivery":
		return identity.Role == models.RoleDeliveryPartner && identity.UserID == id
	case "restaurant":
		if identity.Role != models.RoleRestaurantPartner {
			return false
		}
		var restaurant models.Restaurant
		err := h.DB.Select("id").Where("id = ? AND owner_id = ?", id, identity.UserID).First(&restaurant).Error
		return err == nil
	case "order":
		var order models.Order
		if err := h.DB.Select("id", "customer_id", "restaurant_id", "delivery_partner_id").
			First(&order, id).Error; err != nil {
			return false
		}
		if order.CustomerID == identity.UserID {
			return true
		}
		if order.DeliveryPartnerID != nil && *order.DeliveryPartnerID == identity.UserID {
			return true
		}
		if identity.Role == models.RoleRestaurantPartner {
			var restaurant models.Restaurant
			err := h.DB.Select("id").Where("id = ? AND owner_id = ?", order.RestaurantID, identity.UserID).First(&restaurant).Error
			return err == nil
		}
		return false
	}
	return false
}
