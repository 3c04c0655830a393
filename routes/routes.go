package routes

import (
	"quickbites-api/handlers"
	"quickbites-api/middleware"
	"quickbites-api/models"

	"quickbites-api/auth"

	"github.com/gin-gonic/gin"
)

// Deps bundles the wired handlers for registration.
type Deps struct {
	Authenticator *auth.Authenticator
	Auth          *handlers.AuthHandler
	Public        *handlers.PublicHandler
	Customer      *handlers.CustomerHandler
	Restaurant    *handlers.RestaurantHandler
	Delivery      *handlers.DeliveryHandler
	Admin         *handlers.AdminHandler
	WS            *handlers.WSHandler
}

func SetupRoutes(r *gin.Engine, d Deps) {
	authRequired := middleware.AuthRequired(d.Authenticator)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", d.Auth.Register)
		public.POST("/auth/login", d.Auth.Login)
		public.POST("/auth/refresh", d.Auth.Refresh)
		public.POST("/auth/logout", d.Auth.Logout)
		public.POST("/auth/verify-email", d.Auth.VerifyEmail)
		public.POST("/auth/forgot-password", d.Auth.ForgotPassword)
		public.POST("/auth/reset-password", d.Auth.ResetPassword)

		public.GET("/restaurants", d.Public.ListRestaurants)
		public.GET("/restaurants/:id", d.Public.GetRestaurant)
		public.GET("/restaurants/:id/menu", d.Public.GetMenu)

		public.GET("/state-machine", d.Public.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(authRequired)
	{
		authed.GET("/profile", d.Auth.GetProfile)
		authed.GET("/ws", d.WS.Connect)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(authRequired, middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", d.Customer.PlaceOrder)
		customer.GET("/orders", d.Customer.GetMyOrders)
		customer.GET("/orders/:id", d.Customer.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", d.Customer.CancelOrder)

		customer.GET("/profile", d.Customer.GetMyProfile)
		customer.POST("/addresses", d.Customer.AddAddress)
		customer.PUT("/addresses/:id/default", d.Customer.SetDefaultAddress)
		customer.DELETE("/addresses/:id", d.Customer.DeleteAddress)
	}

	// ── Restaurant partner routes ──────────────────────────────────
	restaurant := r.Group("/api/restaurant")
	restaurant.Use(authRequired, middleware.RoleRequired(models.RoleRestaurantPartner))
	{
		restaurant.POST("/", d.Restaurant.CreateRestaurant)
		restaurant.GET("/", d.Restaurant.GetMyRestaurant)
		restaurant.PUT("/", d.Restaurant.UpdateRestaurant)

		restaurant.POST("/menu", d.Restaurant.AddMenuItem)
		restaurant.PUT("/menu/:itemId", d.Restaurant.UpdateMenuItem)
		restaurant.DELETE("/menu/:itemId", d.Restaurant.DeleteMenuItem)

		restaurant.GET("/orders", d.Restaurant.GetRestaurantOrders)
		restaurant.PUT("/orders/:id/status", d.Restaurant.UpdateOrderStatus)
	}

	// ── Delivery partner routes ────────────────────────────────────
	delivery := r.Group("/api/delivery")
	delivery.Use(authRequired, middleware.RoleRequired(models.RoleDeliveryPartner))
	{
		delivery.GET("/orders/available", d.Delivery.GetAvailableOrders)
		delivery.GET("/orders/my-deliveries", d.Delivery.GetMyDeliveries)
		delivery.PUT("/orders/:id/accept", d.Delivery.AcceptOrder)
		delivery.PUT("/orders/:id/deliver", d.Delivery.CompleteDelivery)
		delivery.POST("/orders/:id/location", d.Delivery.UpdateLocation)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(authRequired, middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", d.Admin.GetAllOrders)
		admin.PUT("/orders/:id/cancel", d.Admin.CancelOrder)
		admin.PUT("/orders/:id/payment", d.Admin.UpdatePaymentStatus)
		admin.GET("/users", d.Admin.GetAllUsers)
		admin.PUT("/users/:id/active", d.Admin.SetUserActive)
	}
}
