package handler

import (
	"net/http"

	"feastly/internal/app/platform/entity"
	"feastly/pkg/logger"
	"feastly/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "platform-service"

// SetupRouter собирает все маршруты сервиса
func SetupRouter(
	orderHandler *OrderHandler,
	reviewHandler *ReviewHandler,
	reportHandler *ReportHandler,
	jwtSecret string,
	allowedOrigins []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(jwtSecret))

	orders := api.Group("/orders")
	{
		orders.POST("", RequireRole(entity.RoleCustomer), orderHandler.CreateOrder)
		orders.GET("", orderHandler.GetMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
	}

	reviews := api.Group("/reviews")
	{
		reviews.POST("", RequireRole(entity.RoleCustomer), reviewHandler.CreateReview)
		reviews.GET("", reviewHandler.ListReviews)
		reviews.GET("/:id", reviewHandler.GetReview)
		reviews.PUT("/:id", reviewHandler.UpdateReview)
		reviews.DELETE("/:id", reviewHandler.DeleteReview)
	}

	merchant := api.Group("/merchant")
	merchant.Use(RequireRole(entity.RoleRestaurantOwner, entity.RoleAdmin))
	{
		merchant.GET("/restaurants/:id/orders", orderHandler.GetRestaurantOrders)
		merchant.GET("/restaurants/:id/reports", reportHandler.GetMerchantReports)
		merchant.POST("/restaurants/:id/reports/generate", reportHandler.GenerateMerchantReport)
	}

	admin := api.Group("/admin")
	admin.Use(RequireRole(entity.RoleAdmin))
	{
		admin.GET("/reports", reportHandler.GetAdminReports)
		admin.POST("/reports/generate", reportHandler.RunReportBatch)
		admin.GET("/stats/current", reportHandler.GetCurrentAdminStats)
	}

	return router
}
