package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/controllers"
	"github.com/mwasonga/soko-api/middlewares"
)

func CartRoutes(server *gin.Engine) {
	cart := server.Group("/cart", middlewares.RequireAuth())
	{
		cart.POST("", controllers.AddCartItem)
		cart.GET("", controllers.GetCart)
		cart.DELETE("/:itemId", controllers.DeleteCartItem)
	}
}
