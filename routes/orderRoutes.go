package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/controllers"
	"github.com/mwasonga/soko-api/middlewares"
)

func OrderRoutes(server *gin.Engine) {
	orders := server.Group("/orders", middlewares.RequireAuth())
	{
		orders.POST("", controllers.CreateOrder)
		orders.GET("", controllers.GetOrders)
		orders.GET("/:orderId", controllers.GetOrderByID)
	}

	admin := server.Group("/admin/orders", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.GET("", controllers.GetAdminOrders)
		admin.PATCH("/:orderId", controllers.UpdateOrderStatus)
	}
}
