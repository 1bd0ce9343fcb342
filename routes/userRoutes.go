package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/controllers"
	"github.com/mwasonga/soko-api/middlewares"
)

func UserRoutes(server *gin.Engine) {
	users := server.Group("/users", middlewares.RequireAuth())
	{
		users.GET("/me", controllers.GetMe)
		users.PATCH("/me", controllers.UpdateMe)
		users.DELETE("/me", controllers.DeactivateMe)
		users.POST("/me/change-password", controllers.ChangePassword)
	}
}
