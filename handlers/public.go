package handlers

import (
	"net/http"

	"quickbites-api/api"
	"quickbites-api/models"
	"quickbites-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PublicHandler struct {
	DB *gorm.DB
}

// ListRestaurants returns restaurants with optional filters (public).
func (h *PublicHandler) ListRestaurants(c *gin.Context) {
	query := h.DB.Model(&models.Restaurant{})

	if cuisine := c.Query("cuisine"); cuisine != "" {
		query = query.Where("cuisine LIKE ?", "%"+cuisine+"%")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if open := c.Query("open"); open == "true" {
		query = query.Where("is_open = ?", true)
	}

	var list []models.Restaurant
	query.Find(&list)
	api.OK(c, http.StatusOK, gin.H{"count": len(list), "restaurants": list}, "")
}

// GetRestaurant returns a single restaurant with its menu.
func (h *PublicHandler) GetRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.DB.Preload("MenuItems").First(&restaurant, c.Param("id")).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "Restaurant not found")
		return
	}
	api.OK(c, http.StatusOK, gin.H{"restaurant": restaurant}, "")
}

// GetMenu returns a restaurant's menu with optional filters.
func (h *PublicHandler) GetMenu(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "Restaurant not found")
		return
	}

	query := h.DB.Where("restaurant_id = ?", restaurant.ID)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if c.Query("is_veg") == "true" {
		query = query.Where("is_veg = ?", true)
	}

	var items []models.MenuItem
	query.Find(&items)

	api.OK(c, http.StatusOK, gin.H{
		"restaurant": restaurant.Name,
		"count":      len(items),
		"menu":       items,
	}, "")
}

// GetStateMachineInfo documents the order lifecycle for API consumers.
func (h *PublicHandler) GetStateMachineInfo(c *gin.Context) {
	forward := []models.OrderStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReadyForPickup,
		models.StatusOutForDelivery,
		models.StatusDelivered,
	}

	transitions := []gin.H{}
	for _, status := range forward {
		transitions = append(transitions, gin.H{
			"from": status,
			"to":   statemachine.ValidTransitionsFrom(status),
		})
	}

	api.OK(c, http.StatusOK, gin.H{
		"state_machine":   transitions,
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"description":     "Order lifecycle: forward one step at a time, cancel from any non-terminal state",
	}, "")
}
