// cmd/server/main.go - SocialSale Admin Backend Server
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/config"
	"github.com/highgoal215/socialsale-backend/internal/database"
	"github.com/highgoal215/socialsale-backend/internal/handlers"
	"github.com/highgoal215/socialsale-backend/internal/logger"
	"github.com/highgoal215/socialsale-backend/internal/middleware"
	"github.com/highgoal215/socialsale-backend/internal/services"
	"github.com/highgoal215/socialsale-backend/pkg/auth"
	"github.com/highgoal215/socialsale-backend/pkg/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

var serverStartTime = time.Now()

const appVersion = "1.0.0"

type appHandlers struct {
	auth         *handlers.AuthHandler
	users        *handlers.UserHandler
	orders       *handlers.OrderHandler
	services     *handlers.ServiceHandler
	reviews      *handlers.ReviewHandler
	blog         *handlers.BlogHandler
	coupons      *handlers.CouponHandler
	seo          *handlers.SEOHandler
	dashboard    *handlers.DashboardHandler
	notification *handlers.NotificationHandler
	preferences  *handlers.PreferencesHandler
}

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Env, cfg.LogLevel)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewMongoDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Error disconnecting from MongoDB")
		}
	}()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.CreateIndexes(indexCtx); err != nil {
		logrus.WithError(err).Warn("Failed to create some indexes")
	}
	cancelIndexes()

	validator.Init()

	jwtManager := auth.NewJWTManager(
		cfg.JWTSecret,
		time.Duration(cfg.JWTExpiration)*time.Hour,
	)

	collections := getCollections(db.Database)
	h := initializeHandlers(cfg, collections, jwtManager)

	router := setupRouter(cfg, h, jwtManager)

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"host":    cfg.Host,
			"port":    cfg.Port,
			"env":     cfg.Env,
			"version": appVersion,
		}).Info("Server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("Server forced to shutdown")
	} else {
		logrus.Info("Server gracefully stopped")
	}
}

func getCollections(db *mongo.Database) map[string]*mongo.Collection {
	return map[string]*mongo.Collection{
		"users":                    db.Collection("users"),
		"orders":                   db.Collection("orders"),
		"services":                 db.Collection("services"),
		"reviews":                  db.Collection("reviews"),
		"blog_posts":               db.Collection("blog_posts"),
		"categories":               db.Collection("categories"),
		"coupons":                  db.Collection("coupons"),
		"seo_settings":             db.Collection("seo_settings"),
		"notifications":            db.Collection("notifications"),
		"notification_preferences": db.Collection("notification_preferences"),
		"device_tokens":            db.Collection("device_tokens"),
	}
}

func initializeHandlers(
	cfg *config.Config,
	collections map[string]*mongo.Collection,
	jwtManager *auth.JWTManager,
) *appHandlers {
	preferencesService := services.NewPreferencesService(collections["notification_preferences"])
	emailService := services.NewEmailService(cfg)
	supplierService := services.NewSupplierService(cfg)

	notificationService := services.NewNotificationService(
		cfg,
		collections["users"],
		collections["notifications"],
		collections["device_tokens"],
		preferencesService,
		emailService,
	)

	return &appHandlers{
		auth:  handlers.NewAuthHandler(collections["users"], jwtManager),
		users: handlers.NewUserHandler(collections["users"]),
		orders: handlers.NewOrderHandler(
			collections["orders"],
			collections["services"],
			collections["coupons"],
			notificationService,
			supplierService,
		),
		services: handlers.NewServiceHandler(collections["services"]),
		reviews:  handlers.NewReviewHandler(collections["reviews"]),
		blog:     handlers.NewBlogHandler(collections["blog_posts"], collections["categories"]),
		coupons:  handlers.NewCouponHandler(collections["coupons"]),
		seo:      handlers.NewSEOHandler(collections["seo_settings"]),
		dashboard: handlers.NewDashboardHandler(
			collections["orders"],
			collections["users"],
			collections["reviews"],
		),
		notification: handlers.NewNotificationHandler(notificationService),
		preferences:  handlers.NewPreferencesHandler(preferencesService),
	}
}

func setupRouter(cfg *config.Config, h *appHandlers, jwtManager *auth.JWTManager) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		router.Use(limiter.RateLimit())
	}

	router.Use(middleware.SecurityHeaders())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(serverStartTime).String(),
			"version":   appVersion,
		})
	})

	api := router.Group("/api")
	{
		setupPublicRoutes(api, h)
		setupProtectedRoutes(api, h, jwtManager)
		setupAdminRoutes(api, h, jwtManager)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":  "Method not allowed",
			"method": c.Request.Method,
		})
	})

	return router
}

func setupPublicRoutes(api *gin.RouterGroup, h *appHandlers) {
	api.POST("/auth/login", h.auth.Login)

	// Storefront reads used by the public site
	api.GET("/services", h.services.GetServices)
	api.GET("/services/:id", h.services.GetService)
	api.GET("/leavereview", h.reviews.GetReviews)
	api.POST("/leavereview", h.reviews.CreateReview)
	api.GET("/blog-posts", h.blog.GetPosts)
	api.GET("/blog-posts/:id", h.blog.GetPost)
	api.GET("/categories", h.blog.GetCategories)
	api.POST("/coupons/validate", h.coupons.ValidateCoupon)
	api.GET("/seo-settings", h.seo.GetSettings)
	api.GET("/seo-settings/:pageId", h.seo.GetSetting)
	api.POST("/orders", h.orders.CreateOrder)
}

func setupProtectedRoutes(api *gin.RouterGroup, h *appHandlers, jwtManager *auth.JWTManager) {
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager))

	protected.GET("/auth/me", h.auth.Me)

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.notification.GetNotifications)
		notifications.GET("/unread-count", h.notification.GetUnreadCount)
		notifications.GET("/types", h.notification.GetNotificationTypes)
		notifications.PUT("/:id/read", h.notification.MarkAsRead)
		notifications.PUT("/read-all", h.notification.MarkAllAsRead)
		notifications.DELETE("/:id", h.notification.DeleteNotification)

		notifications.POST("/devices", h.notification.RegisterDevice)
		notifications.DELETE("/devices", h.notification.UnregisterDevice)
	}

	preferences := protected.Group("/notification-preferences")
	{
		preferences.GET("", h.preferences.GetPreferences)
		preferences.PUT("", h.preferences.UpdatePreferences)
		preferences.DELETE("", h.preferences.ResetPreferences)
	}
}

func setupAdminRoutes(api *gin.RouterGroup, h *appHandlers, jwtManager *auth.JWTManager) {
	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	admin.Use(middleware.AdminMiddleware())

	admin.GET("/dashboard/stats", h.dashboard.GetStats)

	orders := admin.Group("/orders")
	{
		orders.GET("", h.orders.GetOrders)
		orders.GET("/:id", h.orders.GetOrder)
		orders.PUT("/:id/status", h.orders.UpdateOrderStatus)
		orders.GET("/:id/supplier-status", h.orders.GetSupplierStatus)
		orders.DELETE("/:id", h.orders.DeleteOrder)
	}

	users := admin.Group("/users")
	{
		users.GET("", h.users.GetUsers)
		users.GET("/:id", h.users.GetUser)
		users.POST("", h.users.CreateUser)
		users.PUT("/:id", h.users.UpdateUser)
		users.PUT("/:id/blocked", h.users.SetBlocked)
		users.DELETE("/:id", h.users.DeleteUser)
	}

	adminServices := admin.Group("/services")
	{
		adminServices.POST("", h.services.CreateService)
		adminServices.PUT("/:id", h.services.UpdateService)
		adminServices.DELETE("/:id", h.services.DeleteService)
	}

	admin.PUT("/leavereview/:id", h.reviews.UpdateReview)
	admin.DELETE("/leavereview/:id", h.reviews.DeleteReview)

	admin.POST("/blog-posts", h.blog.CreatePost)
	admin.PUT("/blog-posts/:id", h.blog.UpdatePost)
	admin.DELETE("/blog-posts/:id", h.blog.DeletePost)
	admin.POST("/categories", h.blog.CreateCategory)
	admin.PUT("/categories/:id", h.blog.UpdateCategory)
	admin.DELETE("/categories/:id", h.blog.DeleteCategory)

	coupons := admin.Group("/coupons")
	{
		coupons.GET("", h.coupons.GetCoupons)
		coupons.POST("", h.coupons.CreateCoupon)
		coupons.PUT("/:id", h.coupons.UpdateCoupon)
		coupons.DELETE("/:id", h.coupons.DeleteCoupon)
	}

	admin.PUT("/seo-settings/:pageId", h.seo.UpsertSetting)

	adminNotifications := admin.Group("/notifications/admin")
	{
		adminNotifications.POST("/send", h.notification.SendNotification)
		adminNotifications.POST("/broadcast", h.notification.BroadcastNotification)
		adminNotifications.POST("/maintenance", h.notification.SendMaintenanceNotification)
		adminNotifications.GET("/stats", h.notification.GetStats)
	}
}
