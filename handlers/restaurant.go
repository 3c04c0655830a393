package handlers

import (
	"net/http"

	"quickbites-api/api"
	"quickbites-api/middleware"
	"quickbites-api/models"
	"quickbites-api/orders"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RestaurantHandler struct {
	DB     *gorm.DB
	Orders *orders.Service
}

type CreateRestaurantRequest struct {
	Name        string  `json:"name" binding:"required"`
	Cuisine     string  `json:"cuisine"`
	Address     string  `json:"address" binding:"required"`
	Description string  `json:"description"`
	DeliveryFee float64 `json:"delivery_fee" binding:"min=0"`
}

// CreateRestaurant lets a restaurant partner create their restaurant.
func (h *RestaurantHandler) CreateRestaurant(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	restaurant := models.Restaurant{
		OwnerID:     identity.UserID,
		Name:        req.Name,
		Cuisine:     req.Cuisine,
		Address:     req.Address,
		Description: req.Description,
		DeliveryFee: req.DeliveryFee,
		IsOpen:      true,
	}
	if err := h.DB.Create(&restaurant).Error; err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to create restaurant")
		return
	}
	api.OK(c, http.StatusCreated, gin.H{"restaurant": restaurant}, "Restaurant created")
}

// GetMyRestaurant fetches the restaurant owned by the caller.
func (h *RestaurantHandler) GetMyRestaurant(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	var restaurant models.Restaurant
	if err := h.DB.Preload("MenuItems").Where("owner_id = ?", identity.UserID).First(&restaurant).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "No restaurant found for your account")
		return
	}
	api.OK(c, http.StatusOK, gin.H{"restaurant": restaurant}, "")
}

type UpdateRestaurantRequest struct {
	Name        *string  `json:"name"`
	Cuisine     *string  `json:"cuisine"`
	Address     *string  `json:"address"`
	Description *string  `json:"description"`
	IsOpen      *bool    `json:"is_open"`
	DeliveryFee *float64 `json:"delivery_fee"`
}

// UpdateRestaurant updates the caller's restaurant details.
func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	var restaurant models.Restaurant
	if err := h.DB.Where("owner_id = ?", identity.UserID).First(&restaurant).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "No restaurant found for your account")
		return
	}

	var req UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Cuisine != nil {
		updates["cuisine"] = *req.Cuisine
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsOpen != nil {
		updates["is_open"] = *req.IsOpen
	}
	if req.DeliveryFee != nil && *req.DeliveryFee >= 0 {
		updates["delivery_fee"] = *req.DeliveryFee
	}
	if len(updates) > 0 {
		if err := h.DB.Model(&restaurant).Updates(updates).Error; err != nil {
			api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to update restaurant")
			return
		}
	}
	api.OK(c, http.StatusOK, gin.H{"restaurant": restaurant}, "Restaurant updated")
}

type MenuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,min=0"`
	Category    string  `json:"category"`
	IsAvailable *bool   `json:"is_available"`
	IsVeg       bool    `json:"is_veg"`
}

// AddMenuItem adds an item to the caller's menu.
func (h *RestaurantHandler) AddMenuItem(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	var restaurant models.Restaurant
	if err := h.DB.Where("owner_id = ?", identity.UserID).First(&restaurant).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "No restaurant found for your account")
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	item := models.MenuItem{
		RestaurantID: restaurant.ID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		IsAvailable:  req.IsAvailable == nil || *req.IsAvailable,
		IsVeg:        req.IsVeg,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to add menu item")
		return
	}
	api.OK(c, http.StatusCreated, gin.H{"menu_item": item}, "Menu item added")
}

// UpdateMenuItem updates one of the caller's menu items.
func (h *RestaurantHandler) UpdateMenuItem(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	item, ok := h.ownedMenuItem(c, identity.UserID)
	if !ok {
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	updates := map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"category":    req.Category,
		"is_veg":      req.IsVeg,
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if err := h.DB.Model(item).Updates(updates).Error; err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to update menu item")
		return
	}
	api.OK(c, http.StatusOK, gin.H{"menu_item": item}, "Menu item updated")
}

// DeleteMenuItem removes one of the caller's menu items.
func (h *RestaurantHandler) DeleteMenuItem(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	item, ok := h.ownedMenuItem(c, identity.UserID)
	if !ok {
		return
	}
	if err := h.DB.Delete(item).Error; err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to delete menu item")
		return
	}
	api.OK(c, http.StatusOK, nil, "Menu item deleted")
}

func (h *RestaurantHandler) ownedMenuItem(c *gin.Context, ownerID uint) (*models.MenuItem, bool) {
	var restaurant models.Restaurant
	if err := h.DB.Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "No restaurant found for your account")
		return nil, false
	}
	var item models.MenuItem
	if err := h.DB.Where("id = ? AND restaurant_id = ?", c.Param("itemId"), restaurant.ID).First(&item).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "Menu item not found")
		return nil, false
	}
	return &item, true
}
