package handlers

import (
	"net/http"

	"quickbites-api/api"
	"quickbites-api/middleware"
	"quickbites-api/models"
	"quickbites-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetRestaurantOrders returns orders for the caller's restaurant, with a
// per-status summary for the dashboard.
func (h *RestaurantHandler) GetRestaurantOrders(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var restaurant models.Restaurant
	if err := h.DB.Where("owner_id = ?", identity.UserID).First(&restaurant).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "No restaurant found for your account")
		return
	}

	query := h.DB.Preload("Items.Customizations").Preload("Customer").
		Where("restaurant_id = ?", restaurant.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var list []models.Order
	query.Order("placed_at desc").Find(&list)

	summary := map[string]int{}
	for _, o := range list {
		summary[string(o.Status)]++
	}

	api.OK(c, http.StatusOK, gin.H{
		"restaurant":    restaurant.Name,
		"order_summary": summary,
		"count":         len(list),
		"orders":        list,
	}, "")
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// restaurantStatuses are the transitions the restaurant side may trigger.
var restaurantStatuses = map[models.OrderStatus]bool{
	models.StatusConfirmed:      true,
	models.StatusPreparing:      true,
	models.StatusReadyForPickup: true,
	models.StatusCancelled:      true,
}

// UpdateOrderStatus moves one of the restaurant's orders through the
// lifecycle. Illegal jumps are rejected; a concurrent writer surfaces as a
// conflict, never as a lost update.
func (h *RestaurantHandler) UpdateOrderStatus(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var restaurant models.Restaurant
	if err := h.DB.Where("owner_id = ?", identity.UserID).First(&restaurant).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "No restaurant found for your account")
		return
	}

	order, err := h.Orders.Get(c.Request.Context(), parseID(c))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if order.RestaurantID != restaurant.ID {
		api.Error(c, http.StatusForbidden, api.CodeForbidden, "This order does not belong to your restaurant")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}
	if !restaurantStatuses[req.Status] {
		api.Error(c, http.StatusForbidden, api.CodeForbidden,
			"Restaurants may set: confirmed, preparing, ready_for_pickup or cancelled")
		return
	}

	updated, err := h.Orders.Transition(c.Request.Context(), order.ID, req.Status)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	api.OK(c, http.StatusOK, gin.H{
		"order":             updated,
		"previous_status":   order.Status,
		"current_status":    updated.Status,
		"valid_next_states": statemachine.ValidTransitionsFrom(updated.Status),
	}, "Order status updated")
}
