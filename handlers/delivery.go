package handlers

import (
	"net/http"

	"quickbites-api/api"
	"quickbites-api/middleware"
	"quickbites-api/models"
	"quickbites-api/orders"
	"quickbites-api/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DeliveryHandler struct {
	DB     *gorm.DB
	Orders *orders.Service
	Hub    *ws.Hub
}

// GetAvailableOrders lists orders ready for pickup with no partner assigned.
func (h *DeliveryHandler) GetAvailableOrders(c *gin.Context) {
	var list []models.Order
	h.DB.Preload("Restaurant").
		Where("status = ? AND delivery_partner_id IS NULL", models.StatusReadyForPickup).
		Order("placed_at asc").
		Find(&list)
	api.OK(c, http.StatusOK, gin.H{"count": len(list), "orders": list}, "")
}

// GetMyDeliveries lists orders assigned to the calling partner.
func (h *DeliveryHandler) GetMyDeliveries(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	var list []models.Order
	h.DB.Preload("Items.Customizations").Preload("Restaurant").Preload("Customer").
		Where("delivery_partner_id = ?", identity.UserID).
		Order("updated_at desc").
		Find(&list)
	api.OK(c, http.StatusOK, gin.H{"count": len(list), "orders": list}, "")
}

// AcceptOrder claims a ready order for the calling partner and moves it to
// out_for_delivery. Two partners racing for the same order: one wins, the
// other gets a conflict.
func (h *DeliveryHandler) AcceptOrder(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	updated, err := h.Orders.AssignPartner(c.Request.Context(), parseID(c), identity.UserID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"order": updated}, "Order picked up")
}

// CompleteDelivery transitions out_for_delivery → delivered for the assigned
// partner.
func (h *DeliveryHandler) CompleteDelivery(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	order, err := h.Orders.Get(c.Request.Context(), parseID(c))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if order.DeliveryPartnerID == nil || *order.DeliveryPartnerID != identity.UserID {
		api.Error(c, http.StatusForbidden, api.CodeForbidden, "You are not the assigned partner for this order")
		return
	}

	updated, err := h.Orders.Transition(c.Request.Context(), order.ID, models.StatusDelivered)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"order": updated}, "Order delivered")
}

type LocationUpdateRequest struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

// UpdateLocation pushes the partner's coordinates to the order's tracking
// channel. No state changes: this is fan-out only.
func (h *DeliveryHandler) UpdateLocation(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	order, err := h.Orders.Get(c.Request.Context(), parseID(c))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if order.DeliveryPartnerID == nil || *order.DeliveryPartnerID != identity.UserID {
		api.Error(c, http.StatusForbidden, api.CodeForbidden, "You are not the assigned partner for this order")
		return
	}

	var req LocationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	h.Hub.PublishLocationUpdate(order.ID, req.Latitude, req.Longitude)
	api.OK(c, http.StatusOK, nil, "Location update published")
}
