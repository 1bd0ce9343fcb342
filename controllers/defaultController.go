package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Soko API.

AUTH
- POST "/auth/register" - Create user account
- POST "/auth/login" - Access user account
- POST "/auth/forgot-password" - Request password reset
- POST "/auth/reset-password-confirm" - Reset password with emailed token

USERS
- GET "/users/me" - Current user profile
- PATCH "/users/me" - Update profile
- DELETE "/users/me" - Deactivate account
- POST "/users/me/change-password" - Change password

CATALOG
- GET "/categories", GET "/categories/:id" - Browse categories
- GET "/products", GET "/products/:id" - Browse products (filter/search/sort)
- POST/PUT/DELETE on both - Admin only
- POST "/products/images" - Admin product image upload

CART
- POST "/cart" - Add item
- GET "/cart" - View cart
- DELETE "/cart/:itemId" - Remove item

ORDERS
- POST "/orders" - Create order from cart payload (Idempotency-Key supported)
- GET "/orders", GET "/orders/:orderId" - Own orders
- GET "/admin/orders" - All orders (admin)
- PATCH "/admin/orders/:orderId" - Fulfillment status (admin)

PAYMENTS
- POST "/payments" - Open payment for an order
- GET "/payments", GET "/payments/:paymentId" - Own payments
- PUT "/admin/payments" - Mark PAID or REFUNDED (admin)
- POST "/payments/webhook" - Provider notifications`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
