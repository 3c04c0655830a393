package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quickbites-api/auth"
	"quickbites-api/config"
	"quickbites-api/middleware"
	"quickbites-api/models"
	"quickbites-api/orders"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// orderFlowHarness wires the customer, restaurant, delivery and admin order
// surfaces against one database, the way the router composes them.
type orderFlowHarness struct {
	db      *gorm.DB
	router  *gin.Engine
	tokens  *auth.TokenManager
	service *orders.Service

	customer   *models.User
	owner      *models.User
	partner    *models.User
	restaurant *models.Restaurant
	burger     *models.MenuItem
	fries      *models.MenuItem
}

func newOrderFlowHarness(t *testing.T) *orderFlowHarness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.CustomerProfile{}, &models.Address{},
		&models.Restaurant{}, &models.MenuItem{},
		&models.Order{}, &models.OrderItem{}, &models.OrderItemCustomization{},
	))

	h := &orderFlowHarness{db: db}
	h.tokens = auth.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	h.service = orders.NewService(db, nil, 0.05)

	h.customer = h.seedUser(t, "customer@example.com", "9000000001", models.RoleCustomer)
	h.owner = h.seedUser(t, "owner@example.com", "9000000002", models.RoleRestaurantPartner)
	h.partner = h.seedUser(t, "rider@example.com", "9000000003", models.RoleDeliveryPartner)

	profile := &models.CustomerProfile{UserID: h.customer.ID}
	require.NoError(t, db.Create(profile).Error)
	require.NoError(t, db.Create(&models.Address{
		ProfileID: profile.ID, Label: "home",
		StreetAddress: "12 MG Road", City: "Bengaluru", State: "KA", Pincode: "560001",
		IsDefault: true,
	}).Error)

	h.restaurant = &models.Restaurant{
		OwnerID: h.owner.ID, Name: "Spice Villa", Cuisine: "indian",
		IsOpen: true, DeliveryFee: 20,
	}
	require.NoError(t, db.Create(h.restaurant).Error)
	h.burger = &models.MenuItem{RestaurantID: h.restaurant.ID, Name: "Burger", Price: 100, IsAvailable: true}
	h.fries = &models.MenuItem{RestaurantID: h.restaurant.ID, Name: "Fries", Price: 50, IsAvailable: true}
	require.NoError(t, db.Create(h.burger).Error)
	require.NoError(t, db.Create(h.fries).Error)

	authenticator := auth.NewAuthenticator(db, h.tokens)
	cfg := &config.Config{GinMode: "debug"}

	customerH := &CustomerHandler{DB: db, Orders: h.service, Mail: &captureSender{}, Cfg: cfg}
	restaurantH := &RestaurantHandler{DB: db, Orders: h.service}
	deliveryH := &DeliveryHandler{DB: db, Orders: h.service}
	adminH := &AdminHandler{DB: db, Orders: h.service}

	r := gin.New()
	authed := r.Group("/api", middleware.AuthRequired(authenticator))

	customer := authed.Group("/customer", middleware.RoleRequired(models.RoleCustomer))
	customer.POST("/orders", customerH.PlaceOrder)
	customer.GET("/orders", customerH.GetMyOrders)
	customer.GET("/orders/:id", customerH.GetOrderDetail)
	customer.PUT("/orders/:id/cancel", customerH.CancelOrder)

	restaurant := authed.Group("/restaurant", middleware.RoleRequired(models.RoleRestaurantPartner))
	restaurant.GET("/orders", restaurantH.GetRestaurantOrders)
	restaurant.PUT("/orders/:id/status", restaurantH.UpdateOrderStatus)

	delivery := authed.Group("/delivery", middleware.RoleRequired(models.RoleDeliveryPartner))
	delivery.GET("/orders/available", deliveryH.GetAvailableOrders)
	delivery.PUT("/orders/:id/accept", deliveryH.AcceptOrder)
	delivery.PUT("/orders/:id/deliver", deliveryH.CompleteDelivery)

	admin := authed.Group("/admin", middleware.RoleRequired(models.RoleAdmin))
	admin.PUT("/orders/:id/cancel", adminH.CancelOrder)

	h.router = r
	return h
}

func (h *orderFlowHarness) seedUser(t *testing.T, emailAddr, phone string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: "Test", Email: emailAddr, Phone: phone,
		Role: role, IsActive: true, IsVerified: true,
	}
	require.NoError(t, h.db.Create(user).Error)
	return user
}

func (h *orderFlowHarness) doAs(t *testing.T, user *models.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	pair, err := h.tokens.IssuePair(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *orderFlowHarness) placeOrder(t *testing.T) uint {
	t.Helper()
	rec := h.doAs(t, h.customer, http.MethodPost, "/api/customer/orders", map[string]any{
		"restaurant_id":  h.restaurant.ID,
		"payment_method": "cash_on_delivery",
		"items": []map[string]any{
			{"menu_item_id": h.burger.ID, "quantity": 2},
			{"menu_item_id": h.fries.ID, "quantity": 1,
				"customizations": []map[string]any{{"name": "Extra cheese", "price": 10}}},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeBody(t, rec)["data"].(map[string]any)["order"].(map[string]any)
	return uint(order["id"].(float64))
}

func (h *orderFlowHarness) setStatus(t *testing.T, orderID uint, status models.OrderStatus) *httptest.ResponseRecorder {
	t.Helper()
	return h.doAs(t, h.owner, http.MethodPut,
		fmt.Sprintf("/api/restaurant/orders/%d/status", orderID),
		map[string]any{"status": status})
}

func TestPlaceOrderDerivesPricingFromMenu(t *testing.T) {
	h := newOrderFlowHarness(t)

	rec := h.doAs(t, h.customer, http.MethodPost, "/api/customer/orders", map[string]any{
		"restaurant_id":   h.restaurant.ID,
		"payment_method":  "cash_on_delivery",
		"coupon_discount": 15,
		"items": []map[string]any{
			{"menu_item_id": h.burger.ID, "quantity": 2},
			{"menu_item_id": h.fries.ID, "quantity": 1,
				"customizations": []map[string]any{{"name": "Extra cheese", "price": 10}}},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	order := decodeBody(t, rec)["data"].(map[string]any)["order"].(map[string]any)
	assert.Equal(t, "pending", order["status"])
	pricing := order["pricing"].(map[string]any)
	assert.Equal(t, float64(260), pricing["subtotal"])
	assert.Equal(t, float64(20), pricing["delivery_fee"])
	assert.Equal(t, float64(13), pricing["taxes"])
	assert.Equal(t, float64(278), pricing["total_amount"])

	delivery := order["delivery"].(map[string]any)
	assert.Equal(t, "12 MG Road", delivery["street_address"], "address is snapshotted from the default")
	assert.Equal(t, float64(40), delivery["estimated_time_minutes"], "30 base + 5 per line")
}

func TestPlaceOrderRejectsClosedRestaurant(t *testing.T) {
	h := newOrderFlowHarness(t)
	require.NoError(t, h.db.Model(h.restaurant).Update("is_open", false).Error)

	rec := h.doAs(t, h.customer, http.MethodPost, "/api/customer/orders", map[string]any{
		"restaurant_id":  h.restaurant.ID,
		"payment_method": "cash_on_delivery",
		"items":          []map[string]any{{"menu_item_id": h.burger.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderRejectsForeignMenuItem(t *testing.T) {
	h := newOrderFlowHarness(t)

	other := &models.Restaurant{OwnerID: h.owner.ID, Name: "Other Place", IsOpen: true}
	require.NoError(t, h.db.Create(other).Error)
	foreign := &models.MenuItem{RestaurantID: other.ID, Name: "Pizza", Price: 200, IsAvailable: true}
	require.NoError(t, h.db.Create(foreign).Error)

	rec := h.doAs(t, h.customer, http.MethodPost, "/api/customer/orders", map[string]any{
		"restaurant_id":  h.restaurant.ID,
		"payment_method": "cash_on_delivery",
		"items":          []map[string]any{{"menu_item_id": foreign.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFullOrderLifecycle(t *testing.T) {
	h := newOrderFlowHarness(t)
	orderID := h.placeOrder(t)

	for _, status := range []models.OrderStatus{
		models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup,
	} {
		rec := h.setStatus(t, orderID, status)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	// Partner sees the ready order and claims it.
	rec := h.doAs(t, h.partner, http.MethodGet, "/api/delivery/orders/available", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["data"].(map[string]any)["count"])

	rec = h.doAs(t, h.partner, http.MethodPut, fmt.Sprintf("/api/delivery/orders/%d/accept", orderID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.doAs(t, h.partner, http.MethodPut, fmt.Sprintf("/api/delivery/orders/%d/deliver", orderID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var order models.Order
	require.NoError(t, h.db.First(&order, orderID).Error)
	assert.Equal(t, models.StatusDelivered, order.Status)
	assert.NotNil(t, order.ConfirmedAt)
	assert.NotNil(t, order.PreparingAt)
	assert.NotNil(t, order.ReadyAt)
	assert.NotNil(t, order.PickedUpAt)
	assert.NotNil(t, order.DeliveredAt)
	assert.Nil(t, order.CancelledAt)
}

func TestRestaurantCannotSkipStates(t *testing.T) {
	h := newOrderFlowHarness(t)
	orderID := h.placeOrder(t)

	rec := h.setStatus(t, orderID, models.StatusReadyForPickup)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, rec))

	var order models.Order
	require.NoError(t, h.db.First(&order, orderID).Error)
	assert.Equal(t, models.StatusPending, order.Status)
}

func TestRestaurantCannotTouchForeignOrders(t *testing.T) {
	h := newOrderFlowHarness(t)
	orderID := h.placeOrder(t)

	stranger := h.seedUser(t, "stranger@example.com", "9000000009", models.RoleRestaurantPartner)
	require.NoError(t, h.db.Create(&models.Restaurant{OwnerID: stranger.ID, Name: "Rival", IsOpen: true}).Error)

	rec := h.doAs(t, stranger, http.MethodPut,
		fmt.Sprintf("/api/restaurant/orders/%d/status", orderID),
		map[string]any{"status": models.StatusConfirmed})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomerCancelOwnOrderOnly(t *testing.T) {
	h := newOrderFlowHarness(t)
	orderID := h.placeOrder(t)

	other := h.seedUser(t, "other@example.com", "9000000008", models.RoleCustomer)
	rec := h.doAs(t, other, http.MethodPut, fmt.Sprintf("/api/customer/orders/%d/cancel", orderID), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.doAs(t, h.customer, http.MethodPut, fmt.Sprintf("/api/customer/orders/%d/cancel", orderID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var order models.Order
	require.NoError(t, h.db.First(&order, orderID).Error)
	assert.Equal(t, models.StatusCancelled, order.Status)
	assert.NotNil(t, order.CancelledAt)
}

func TestCancelDeliveredOrderFails(t *testing.T) {
	h := newOrderFlowHarness(t)
	orderID := h.placeOrder(t)

	for _, status := range []models.OrderStatus{
		models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup,
	} {
		require.Equal(t, http.StatusOK, h.setStatus(t, orderID, status).Code)
	}
	h.doAs(t, h.partner, http.MethodPut, fmt.Sprintf("/api/delivery/orders/%d/accept", orderID), nil)
	h.doAs(t, h.partner, http.MethodPut, fmt.Sprintf("/api/delivery/orders/%d/deliver", orderID), nil)

	rec := h.doAs(t, h.customer, http.MethodPut, fmt.Sprintf("/api/customer/orders/%d/cancel", orderID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, rec))
}

func TestSecondPartnerCannotClaim(t *testing.T) {
	h := newOrderFlowHarness(t)
	orderID := h.placeOrder(t)

	for _, status := range []models.OrderStatus{
		models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup,
	} {
		require.Equal(t, http.StatusOK, h.setStatus(t, orderID, status).Code)
	}

	rec := h.doAs(t, h.partner, http.MethodPut, fmt.Sprintf("/api/delivery/orders/%d/accept", orderID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rival := h.seedUser(t, "rival@example.com", "9000000007", models.RoleDeliveryPartner)
	rec = h.doAs(t, rival, http.MethodPut, fmt.Sprintf("/api/delivery/orders/%d/accept", orderID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, rec))

	// Only the assigned partner may complete.
	rec = h.doAs(t, rival, http.MethodPut, fmt.Sprintf("/api/delivery/orders/%d/deliver", orderID), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoleGates(t *testing.T) {
	h := newOrderFlowHarness(t)
	orderID := h.placeOrder(t)

	// A customer may not drive restaurant-side transitions.
	rec := h.doAs(t, h.customer, http.MethodPut,
		fmt.Sprintf("/api/restaurant/orders/%d/status", orderID),
		map[string]any{"status": models.StatusConfirmed})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A delivery partner may not place orders.
	rec = h.doAs(t, h.partner, http.MethodPost, "/api/customer/orders", map[string]any{
		"restaurant_id":  h.restaurant.ID,
		"payment_method": "cash_on_delivery",
		"items":          []map[string]any{{"menu_item_id": h.burger.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminCancelGoesThroughLifecycle(t *testing.T) {
	h := newOrderFlowHarness(t)
	orderID := h.placeOrder(t)
	admin := h.seedUser(t, "admin@example.com", "9000000006", models.RoleAdmin)

	rec := h.doAs(t, admin, http.MethodPut, fmt.Sprintf("/api/admin/orders/%d/cancel", orderID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Even an admin cannot cancel a delivered order.
	secondID := h.placeOrder(t)
	for _, status := range []models.OrderStatus{
		models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup,
	} {
		require.Equal(t, http.StatusOK, h.setStatus(t, secondID, status).Code)
	}
	h.doAs(t, h.partner, http.MethodPut, fmt.Sprintf("/api/delivery/orders/%d/accept", secondID), nil)
	h.doAs(t, h.partner, http.MethodPut, fmt.Sprintf("/api/delivery/orders/%d/deliver", secondID), nil)

	rec = h.doAs(t, admin, http.MethodPut, fmt.Sprintf("/api/admin/orders/%d/cancel", secondID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, rec))
}
