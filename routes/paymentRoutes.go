package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/controllers"
	"github.com/mwasonga/soko-api/middlewares"
)

func PaymentRoutes(server *gin.Engine) {
	payments := server.Group("/payments", middlewares.RequireAuth())
	{
		payments.POST("", controllers.CreatePayment)
		payments.GET("", controllers.GetPayments)
		payments.GET("/:paymentId", controllers.GetPaymentByID)
	}

	// Provider callbacks authenticate by verification, not by JWT.
	server.POST("/payments/webhook", controllers.HandlePaymentWebhook)

	admin := server.Group("/admin/payments", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.PUT("", controllers.UpdatePaymentStatus)
	}
}
