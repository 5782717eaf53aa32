package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ratehub/internal/app/ratings/entity"
	"ratehub/pkg/logger"
	"ratehub/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	userHandler *UserHandler,
	storeHandler *StoreHandler,
	ratingHandler *RatingHandler,
	dashboardHandler *DashboardHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("ratehub"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "ratehub",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты (без аутентификации)
	users := router.Group("/users")
	{
		users.POST("/register", userHandler.Register)

		protected := users.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.GET("/me", userHandler.GetMe)
		}
	}

	stores := router.Group("/stores")
	{
		// Каталог магазинов доступен без аутентификации
		stores.GET("", storeHandler.ListStores)
		stores.GET("/:store_id", storeHandler.GetStore)
		stores.GET("/:store_id/ratings", ratingHandler.GetRatingsByStore)

		protected := stores.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("", storeHandler.CreateStore)
			protected.PATCH("/:store_id", storeHandler.UpdateStore)
			protected.DELETE("/:store_id", storeHandler.DeleteStore)
		}
	}

	ratings := router.Group("/ratings")
	ratings.Use(authMiddleware.Authenticate())
	{
		ratings.POST("", ratingHandler.SubmitRating)
		ratings.GET("/user/:user_id", ratingHandler.GetRatingsByUser)
		ratings.GET("/:rating_id", ratingHandler.GetRating)
		ratings.PATCH("/:rating_id", ratingHandler.UpdateRating)
		ratings.DELETE("/:rating_id", ratingHandler.DeleteRating)
		ratings.POST("/:rating_id/flag", ratingHandler.FlagRating)
	}

	dashboards := router.Group("/dashboards")
	dashboards.Use(authMiddleware.Authenticate())
	{
		dashboards.GET("/owner/:owner_id", dashboardHandler.OwnerDashboard)
		dashboards.GET("/store/:store_id", dashboardHandler.StoreInsights)
		dashboards.GET("/user/:user_id", dashboardHandler.UserDashboard)
	}

	// Admin эндпоинты - только для администраторов
	admin := router.Group("/admin")
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireRole(entity.RoleAdmin))
	{
		admin.POST("/users", userHandler.CreateUser)
		admin.GET("/users", userHandler.ListUsers)
		admin.PATCH("/users/:user_id/status", userHandler.UpdateStatus)
		admin.DELETE("/users/:user_id", userHandler.DeleteUser)

		admin.POST("/stores/:store_id/owner", storeHandler.AssignOwner)

		admin.GET("/dashboard", dashboardHandler.PlatformDashboard)
		admin.GET("/audit", dashboardHandler.RecentAudit)
	}

	return router
}
