package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/initializers"
	"github.com/mwasonga/soko-api/models"
	"gorm.io/gorm"
)

func getOrCreateCart(userID uint) (models.Cart, error) {
	var cart models.Cart
	err := initializers.DB.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		err = initializers.DB.Create(&cart).Error
	}
	return cart, err
}

// AddCartItem adds a product to the caller's cart, bumping the quantity when
// the product is already there. Name and price are copied from the product so
// the cart renders without extra lookups; the order transaction re-reads the
// authoritative price.
func AddCartItem(ctx *gin.Context) {
	var input struct {
		ProductID uint `json:"productId" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var product models.Product
	if result := initializers.DB.Where("is_active = ?", true).First(&product, input.ProductID); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Product not found")
		return
	}

	cart, err := getOrCreateCart(currentUserID(ctx))
	if err != nil {
		log.Println("Cart lookup error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	var existingItem models.CartItem
	err = initializers.DB.Where("cart_id = ? AND product_id = ?", cart.ID, input.ProductID).First(&existingItem).Error
	if err == nil {
		existingItem.Quantity += input.Quantity
		if err := initializers.DB.Save(&existingItem).Error; err != nil {
			log.Println("Cart item update error:", err)
			sendErrorResponse(ctx, http.StatusBadRequest, "Unable to update cart item quantity.")
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"message": "Cart item quantity updated",
			"id":      existingItem.ID,
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("Cart item lookup error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch cart item")
		return
	}

	cartItem := models.CartItem{
		CartID:       cart.ID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     input.Quantity,
	}
	if err := initializers.DB.Create(&cartItem).Error; err != nil {
		log.Println("Cart item creation error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to create cart item")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message": cartItem.ProductName + " added to cart",
		"id":      cartItem.ID,
	})
}

// GetCart returns the caller's cart with its items.
func GetCart(ctx *gin.Context) {
	var cart models.Cart
	result := initializers.DB.
		Where("user_id = ?", currentUserID(ctx)).
		Preload("Items").
		First(&cart)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			sendJSONResponse(ctx, http.StatusOK, gin.H{"cart": gin.H{"items": []models.CartItem{}}})
		} else {
			log.Println("Cart fetch error:", result.Error)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		}
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"cart": cart})
}

// DeleteCartItem removes one item from the caller's cart.
func DeleteCartItem(ctx *gin.Context) {
	itemID, err := strconv.Atoi(ctx.Param("itemId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse itemId")
		return
	}

	var cart models.Cart
	if result := initializers.DB.Where("user_id = ?", currentUserID(ctx)).First(&cart); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Cart not found")
		return
	}

	result := initializers.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}, itemID)
	if result.Error != nil {
		log.Println("Cart item delete error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete cart item")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Cart item not found")
		return
	}

	ctx.Status(http.StatusNoContent)
}
