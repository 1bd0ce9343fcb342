package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/controllers"
)

func AuthRoutes(server *gin.Engine) {
	auth := server.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/forgot-password", controllers.SendPasswordResetLink)
		auth.POST("/reset-password-confirm", controllers.ConfirmPasswordReset)
	}
}
