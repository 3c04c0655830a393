package handlers

import (
	"net/http"

	"quickbites-api/api"
	"quickbites-api/models"
	"quickbites-api/orders"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB     *gorm.DB
	Orders *orders.Service
}

// GetAllOrders returns every order with filters and a revenue summary.
func (h *AdminHandler) GetAllOrders(c *gin.Context) {
	query := h.DB.Preload("Items.Customizations").Preload("Customer").Preload("Restaurant").Preload("DeliveryPartner")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		query = query.Where("restaurant_id = ?", restaurantID)
	}

	var list []models.Order
	query.Order("placed_at desc").Find(&list)

	summary := map[string]int{}
	var totalRevenue float64
	for _, o := range list {
		summary[string(o.Status)]++
		if o.Status == models.StatusDelivered {
			totalRevenue += o.Pricing.TotalAmount
		}
	}

	api.OK(c, http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": totalRevenue,
		"count":         len(list),
		"orders":        list,
	}, "")
}

// GetAllUsers returns all users, optionally filtered by role.
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	query := h.DB
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	var users []models.User
	query.Find(&users)

	out := make([]map[string]any, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	api.OK(c, http.StatusOK, gin.H{"count": len(out), "users": out}, "")
}

// CancelOrder lets an admin cancel any non-terminal order. Admins still go
// through the state machine: a delivered order stays delivered.
func (h *AdminHandler) CancelOrder(c *gin.Context) {
	updated, err := h.Orders.Transition(c.Request.Context(), parseID(c), models.StatusCancelled)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"order": updated}, "Order cancelled by admin")
}

type PaymentStatusRequest struct {
	Status            models.PaymentStatus `json:"status" binding:"required"`
	ExternalID        string               `json:"external_id"`
	ExternalPaymentID string               `json:"external_payment_id"`
}

func validPaymentStatus(s models.PaymentStatus) bool {
	switch s {
	case models.PaymentPending, models.PaymentPaid, models.PaymentFailed, models.PaymentRefunded:
		return true
	}
	return false
}

// UpdatePaymentStatus records the gateway's outcome for an order. Stands in
// for the payment-webhook surface.
func (h *AdminHandler) UpdatePaymentStatus(c *gin.Context) {
	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}
	if !validPaymentStatus(req.Status) {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed,
			"Invalid payment status. Must be: pending, paid, failed or refunded")
		return
	}

	if err := h.Orders.SetPaymentStatus(c.Request.Context(), parseID(c), req.Status, req.ExternalID, req.ExternalPaymentID); err != nil {
		respondOrderError(c, err)
		return
	}
	api.OK(c, http.StatusOK, nil, "Payment status updated")
}

// SetUserActive activates or deactivates an account. Takes effect on the
// user's next authenticated request, valid token or not.
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, parseID(c)).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeUserNotFound, "User not found")
		return
	}
	if err := h.DB.Model(&user).Update("is_active", *req.IsActive).Error; err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to update user")
		return
	}
	api.OK(c, http.StatusOK, gin.H{"user": user.Public()}, "User updated")
}
