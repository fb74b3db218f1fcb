package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxidispatch/pkg/logger"
	"taxidispatch/pkg/models"
	"taxidispatch/service"
)

func NewRouter(svc service.IServiceManager, log logger.ILogger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewHandler(svc, log)

	v1 := r.Group("/api/v1", ActorAuth())
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", RequireRole(models.RoleClient, models.RoleOperator, models.RoleAdmin), h.CreateOrder)
			orders.GET("/history", RequireRole(models.RoleClient), h.ClientHistory)
			orders.GET("/active", RequireRole(models.RoleClient), h.ClientActiveOrders)
			orders.GET("/:id", h.GetOrder)
			orders.POST("/:id/accept", RequireRole(models.RoleDriver), h.AcceptOrder)
			orders.POST("/:id/assign", RequireRole(models.RoleOperator, models.RoleAdmin), h.AssignOrder)
			orders.POST("/:id/status", h.UpdateOrderStatus)
		}

		drivers := v1.Group("/drivers", RequireRole(models.RoleDriver))
		{
			drivers.GET("/feed", h.DriverFeed)
			drivers.GET("/orders/history", h.DriverHistory)
			drivers.GET("/orders/active", h.DriverActiveOrders)
		}

		operator := v1.Group("/operator", RequireRole(models.RoleOperator, models.RoleAdmin))
		{
			operator.GET("/orders/active", h.ActiveOrders)
			operator.GET("/orders/unassigned", h.UnassignedOrders)
			operator.GET("/orders/stuck", h.StuckOrders)
		}
	}

	return r
}
