package handlers

import (
	"net/http"

	"quickbites-api/api"
	"quickbites-api/auth"
	"quickbites-api/config"
	"quickbites-api/email"
	"quickbites-api/middleware"
	"quickbites-api/models"
	"quickbites-api/orders"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CustomerHandler struct {
	DB     *gorm.DB
	Orders *orders.Service
	Mail   email.Sender
	Cfg    *config.Config
}

type PlaceOrderItem struct {
	MenuItemID     uint `json:"menu_item_id" binding:"required"`
	Quantity       int  `json:"quantity" binding:"required,min=1"`
	Customizations []struct {
		Name   string  `json:"name" binding:"required"`
		Option string  `json:"option"`
		Price  float64 `json:"price" binding:"min=0"`
	} `json:"customizations"`
}

type PlaceOrderRequest struct {
	RestaurantID   uint                 `json:"restaurant_id" binding:"required"`
	Items          []PlaceOrderItem     `json:"items" binding:"required,min=1"`
	PaymentMethod  models.PaymentMethod `json:"payment_method" binding:"required"`
	AddressID      uint                 `json:"address_id"`
	CouponDiscount float64              `json:"coupon_discount" binding:"min=0"`
	Instructions   string               `json:"instructions" binding:"max=200"`
	Notes          string               `json:"notes" binding:"max=500"`
}

func validPaymentMethod(m models.PaymentMethod) bool {
	switch m {
	case models.PaymentGateway, models.PaymentWallet, models.PaymentCashOnDelivery:
		return true
	}
	return false
}

// PlaceOrder creates a new order. Prices come from the menu here, not from
// the client: whatever the cart showed, totals are re-derived at commit time.
func (h *CustomerHandler) PlaceOrder(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}
	if !validPaymentMethod(req.PaymentMethod) {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed,
			"Invalid payment method. Must be: gateway, wallet or cash_on_delivery")
		return
	}

	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, req.RestaurantID).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "Restaurant not found")
		return
	}
	if !restaurant.IsOpen {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, "Restaurant is currently closed")
		return
	}

	delivery, ok := h.resolveDeliveryAddress(c, identity.UserID, req)
	if !ok {
		return
	}

	var orderItems []models.OrderItem
	for _, reqItem := range req.Items {
		var menuItem models.MenuItem
		if err := h.DB.First(&menuItem, reqItem.MenuItemID).Error; err != nil {
			api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, "Menu item not found")
			return
		}
		if menuItem.RestaurantID != req.RestaurantID {
			api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, "Menu item does not belong to this restaurant")
			return
		}
		if !menuItem.IsAvailable {
			api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, "Menu item '"+menuItem.Name+"' is not available")
			return
		}

		item := models.OrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   reqItem.Quantity,
			Price:      menuItem.Price,
		}
		for _, custom := range reqItem.Customizations {
			item.Customizations = append(item.Customizations, models.OrderItemCustomization{
				Name:   custom.Name,
				Option: custom.Option,
				Price:  custom.Price,
			})
		}
		orderItems = append(orderItems, item)
	}

	// Base 30 minutes plus 5 per line item.
	delivery.EstimatedTime = 30 + 5*len(req.Items)
	delivery.Instructions = req.Instructions

	order, err := h.Orders.Place(c.Request.Context(), orders.PlaceInput{
		CustomerID:     identity.UserID,
		RestaurantID:   req.RestaurantID,
		Items:          orderItems,
		DeliveryFee:    restaurant.DeliveryFee,
		CouponDiscount: req.CouponDiscount,
		PaymentMethod:  req.PaymentMethod,
		Delivery:       delivery,
		Notes:          req.Notes,
	})
	if err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	// Receipt mail is fire-and-forget; the order stands regardless.
	if err := h.Mail.Send(identity.Email, email.TemplateOrderConfirmation,
		email.OrderConfirmationData(order.OrderNumber, order.Pricing.TotalAmount, order.Delivery.EstimatedTime)); err != nil {
		log.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("order confirmation email failed")
	}

	api.OK(c, http.StatusCreated, gin.H{"order": order}, "Order placed successfully")
}

func (h *CustomerHandler) resolveDeliveryAddress(c *gin.Context, userID uint, req PlaceOrderRequest) (models.Delivery, bool) {
	var profile models.CustomerProfile
	if err := h.DB.Preload("Addresses").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, "No customer profile found")
		return models.Delivery{}, false
	}

	var addr *models.Address
	for i := range profile.Addresses {
		if req.AddressID != 0 && profile.Addresses[i].ID == req.AddressID {
			addr = &profile.Addresses[i]
			break
		}
		if req.AddressID == 0 && profile.Addresses[i].IsDefault {
			addr = &profile.Addresses[i]
		}
	}
	if addr == nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, "No delivery address found; add one to your profile")
		return models.Delivery{}, false
	}

	return models.Delivery{
		StreetAddress: addr.StreetAddress,
		City:          addr.City,
		State:         addr.State,
		Pincode:       addr.Pincode,
		Latitude:      addr.Latitude,
		Longitude:     addr.Longitude,
	}, true
}

// GetMyOrders returns the customer's orders, newest first.
func (h *CustomerHandler) GetMyOrders(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	var list []models.Order
	h.DB.Preload("Items.Customizations").Preload("Restaurant").
		Where("customer_id = ?", identity.UserID).
		Order("placed_at desc").
		Find(&list)
	api.OK(c, http.StatusOK, gin.H{"count": len(list), "orders": list}, "")
}

// GetOrderDetail returns a single order; customers only see their own.
func (h *CustomerHandler) GetOrderDetail(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var order models.Order
	if err := h.DB.Preload("Items.Customizations").Preload("Restaurant").Preload("DeliveryPartner").
		First(&order, c.Param("id")).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "Order not found")
		return
	}
	if !auth.OwnsResource(identity, order.CustomerID) {
		api.Error(c, http.StatusForbidden, api.CodeForbidden, "This order does not belong to you")
		return
	}
	api.OK(c, http.StatusOK, gin.H{"order": order}, "")
}

// CancelOrder cancels a non-terminal order owned by the caller.
func (h *CustomerHandler) CancelOrder(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	order, err := h.Orders.Get(c.Request.Context(), parseID(c))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if !auth.OwnsResource(identity, order.CustomerID) {
		api.Error(c, http.StatusForbidden, api.CodeForbidden, "This order does not belong to you")
		return
	}

	updated, err := h.Orders.Transition(c.Request.Context(), order.ID, models.StatusCancelled)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"order": updated}, "Order cancelled successfully")
}
