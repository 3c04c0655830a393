package main

import (
	"net/http"

	"quickbites-api/auth"
	"quickbites-api/cache"
	"quickbites-api/config"
	"quickbites-api/email"
	"quickbites-api/handlers"
	"quickbites-api/orders"
	"quickbites-api/routes"
	"quickbites-api/ws"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	gin.SetMode(cfg.GinMode)

	db, err := config.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}

	// Cache is optional infrastructure: without Redis the service runs on
	// the in-memory store and only loses cross-restart sessions.
	var store cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, falling back to in-memory cache")
			store = cache.NewMemoryStore()
		} else {
			store = redisStore
		}
	} else {
		store = cache.NewMemoryStore()
	}
	sharedCache := cache.New(store)
	defer sharedCache.Close()

	tokens := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	sessions := auth.NewSessionStore(sharedCache, cfg.SessionTTL, cfg.VerificationTokenTTL, cfg.ResetTokenTTL)
	authenticator := auth.NewAuthenticator(db, tokens)
	mail := email.LogSender{}

	hub := ws.NewHub()
	go hub.Run()

	orderSvc := orders.NewService(db, hub, cfg.TaxRate)

	r := gin.Default()

	// CORS for the web client.
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "QuickBites Order API",
		})
	})

	routes.SetupRoutes(r, routes.Deps{
		Authenticator: authenticator,
		Auth:          &handlers.AuthHandler{DB: db, Tokens: tokens, Sessions: sessions, Mail: mail, Cfg: cfg},
		Public:        &handlers.PublicHandler{DB: db},
		Customer:      &handlers.CustomerHandler{DB: db, Orders: orderSvc, Mail: mail, Cfg: cfg},
		Restaurant:    &handlers.RestaurantHandler{DB: db, Orders: orderSvc},
		Delivery:      &handlers.DeliveryHandler{DB: db, Orders: orderSvc, Hub: hub},
		Admin:         &handlers.AdminHandler{DB: db, Orders: orderSvc},
		WS:            &handlers.WSHandler{DB: db, Hub: hub},
	})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("server starting")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
