package controllers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/initializers"
	"github.com/mwasonga/soko-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Pricing is a fixed-rate placeholder, same as the storefront it replaces:
// flat VAT, flat shipping fee waived above a subtotal threshold, no discounts.
var (
	taxRate               = decimal.NewFromFloat(0.16)
	shippingFlatFee       = decimal.NewFromFloat(5.00)
	freeShippingThreshold = decimal.NewFromFloat(100.00)
)

var (
	errEmptyCart         = errors.New("at least one item is required")
	errInvalidItems      = errors.New("one or more products are invalid or inactive")
	errInsufficientStock = errors.New("insufficient stock")
)

type orderItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type orderCreateInput struct {
	Currency        string           `json:"currency"`
	Items           []orderItemInput `json:"items" binding:"required"`
	ShippingAddress models.Address   `json:"shipping_address" binding:"required"`
	BillingAddress  models.Address   `json:"billing_address" binding:"required"`
}

func generateOrderNumber() string {
	now := time.Now()
	return fmt.Sprintf("ORD-%s-%s-%06d", now.Format("2006"), now.Format("0102150405"), now.Nanosecond()/1e3)
}

// lockForUpdate adds a FOR UPDATE clause on MySQL. The sqlite database used in
// tests serializes writers on its own and rejects the syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CreateOrder converts a cart payload plus two addresses into a persisted
// order. The whole thing runs in one transaction: referenced products are
// locked, stock is validated, prices and names are snapshotted onto the line
// items, and stock is decremented. Any failure rolls everything back.
//
// A caller-supplied Idempotency-Key header makes retries safe: if an order for
// this user already carries the key, it is returned as-is.
func CreateOrder(ctx *gin.Context) {
	var input orderCreateInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(input.Items) == 0 {
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"items": errEmptyCart.Error()})
		return
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}

	userID := currentUserID(ctx)

	idempotencyKey := ctx.GetHeader("Idempotency-Key")
	if idempotencyKey != "" {
		var existing models.Order
		result := initializers.DB.
			Preload("Items").Preload("ShippingAddress").Preload("BillingAddress").
			Where("idempotency_key = ? AND user_id = ?", idempotencyKey, userID).
			First(&existing)
		if result.Error == nil {
			sendJSONResponse(ctx, http.StatusOK, gin.H{"order": existing})
			return
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Println("Idempotency lookup error:", result.Error)
			sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
			return
		}
	}

	var order models.Order
	err := initializers.DB.Transaction(func(tx *gorm.DB) error {
		productIDs := make([]uint, 0, len(input.Items))
		requested := make(map[uint]int)
		for _, item := range input.Items {
			if _, seen := requested[item.ProductID]; !seen {
				productIDs = append(productIDs, item.ProductID)
			}
			requested[item.ProductID] += item.Quantity
		}

		// Lock the product rows so concurrent orders on the same products
		// serialize and cannot oversell.
		var products []models.Product
		if err := lockForUpdate(tx).
			Where("id IN ? AND is_active = ?", productIDs, true).
			Find(&products).Error; err != nil {
			return err
		}
		if len(products) != len(productIDs) {
			return errInvalidItems
		}
		productMap := make(map[uint]*models.Product, len(products))
		for i := range products {
			productMap[products[i].ID] = &products[i]
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			p := productMap[item.ProductID]
			if requested[p.ID] > p.Stock {
				return fmt.Errorf("%w for %s", errInsufficientStock, p.Name)
			}
			lineTotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
			subtotal = subtotal.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				UnitPrice: p.Price,
				Quantity:  item.Quantity,
				LineTotal: lineTotal,
			})
		}

		taxTotal := subtotal.Mul(taxRate).Round(2)
		shippingTotal := decimal.Zero
		if subtotal.LessThan(freeShippingThreshold) {
			shippingTotal = shippingFlatFee
		}
		discountTotal := decimal.Zero
		grandTotal := subtotal.Sub(discountTotal).Add(taxTotal).Add(shippingTotal).Round(2)

		shippingAddr := input.ShippingAddress
		billingAddr := input.BillingAddress
		if err := tx.Create(&shippingAddr).Error; err != nil {
			return err
		}
		if err := tx.Create(&billingAddr).Error; err != nil {
			return err
		}

		order = models.Order{
			UserID:            userID,
			Number:            generateOrderNumber(),
			Status:            models.OrderStatusPending,
			ShippingAddressID: shippingAddr.ID,
			BillingAddressID:  billingAddr.ID,
			Currency:          input.Currency,
			Subtotal:          subtotal,
			DiscountTotal:     discountTotal,
			TaxTotal:          taxTotal,
			ShippingTotal:     shippingTotal,
			GrandTotal:        grandTotal,
		}
		if idempotencyKey != "" {
			order.IdempotencyKey = &idempotencyKey
		}
		if err := tx.Omit("Items", "ShippingAddress", "BillingAddress").Create(&order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		for _, item := range items {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w for %s", errInsufficientStock, item.Name)
			}
		}

		order.Items = items
		order.ShippingAddress = shippingAddr
		order.BillingAddress = billingAddr
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, errInvalidItems), errors.Is(err, errInsufficientStock):
			sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"items": err.Error()})
		default:
			log.Println("Order creation error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create order")
		}
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"order": order})
}

// parsePagination reads page and limit from the query string and clamps both
// so limit=0 or limit=100000 cannot empty a page or disable pagination.
func parsePagination(ctx *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

func applyOrderFilters(query *gorm.DB, ctx *gin.Context) *gorm.DB {
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if currency := ctx.Query("currency"); currency != "" {
		query = query.Where("currency = ?", currency)
	}
	if search := ctx.Query("search"); search != "" {
		query = query.Where("number LIKE ? OR payment_reference LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	return query
}

func applyOrderSort(query *gorm.DB, ctx *gin.Context) *gorm.DB {
	orderBy := ctx.DefaultQuery("ordering", "created_at")
	if orderBy != "created_at" && orderBy != "grand_total" && orderBy != "status" {
		orderBy = "created_at"
	}
	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return query.Order(orderBy + " " + sortOrder)
}

// GetOrders lists the caller's orders; admins see every order.
func GetOrders(ctx *gin.Context) {
	page, limit, offset := parsePagination(ctx)

	query := initializers.DB.Model(&models.Order{}).
		Preload("Items").Preload("ShippingAddress").Preload("BillingAddress")
	if !isAdmin(ctx) {
		query = query.Where("user_id = ?", currentUserID(ctx))
	}
	query = applyOrderSort(applyOrderFilters(query, ctx), ctx)

	var orders []models.Order
	if result := query.Limit(limit).Offset(offset).Find(&orders); result.Error != nil {
		log.Println("Order listing error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch orders")
		return
	}

	// The count carries the same scoping and filters as the page itself.
	var count int64
	countQuery := initializers.DB.Model(&models.Order{})
	if !isAdmin(ctx) {
		countQuery = countQuery.Where("user_id = ?", currentUserID(ctx))
	}
	applyOrderFilters(countQuery, ctx).Count(&count)

	totalPages := math.Ceil(float64(count) / float64(limit))
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"orders": orders,
		"metadata": gin.H{
			"total":       count,
			"currentPage": page,
			"limit":       limit,
			"hasNextPage": int(totalPages) > page,
		},
	})
}

// GetOrderByID returns one order, visible to its owner or an admin.
func GetOrderByID(ctx *gin.Context) {
	orderID, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	var order models.Order
	result := initializers.DB.
		Preload("Items").Preload("ShippingAddress").Preload("BillingAddress").
		First(&order, orderID)
	if result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return
	}

	if order.UserID != currentUserID(ctx) && !isAdmin(ctx) {
		// Hidden, not forbidden: don't confirm the order exists.
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

// GetAdminOrders lists all orders with filters, unscoped.
func GetAdminOrders(ctx *gin.Context) {
	page, limit, offset := parsePagination(ctx)

	query := initializers.DB.Model(&models.Order{}).
		Preload("Items").Preload("ShippingAddress").Preload("BillingAddress")
	if userID := ctx.Query("user"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	query = applyOrderSort(applyOrderFilters(query, ctx), ctx)

	var orders []models.Order
	if result := query.Limit(limit).Offset(offset).Find(&orders); result.Error != nil {
		log.Println("Admin order listing error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch orders")
		return
	}

	var count int64
	countQuery := initializers.DB.Model(&models.Order{})
	if userID := ctx.Query("user"); userID != "" {
		countQuery = countQuery.Where("user_id = ?", userID)
	}
	applyOrderFilters(countQuery, ctx).Count(&count)

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"orders": orders,
		"metadata": gin.H{
			"total":       count,
			"currentPage": page,
			"limit":       limit,
		},
	})
}

// UpdateOrderStatus lets an admin move an order through fulfillment states.
// PAID and REFUNDED are reserved for the payment flow.
func UpdateOrderStatus(ctx *gin.Context) {
	var statusData struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&statusData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	switch statusData.Status {
	case models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCanceled:
	default:
		sendErrorResponse(ctx, http.StatusBadRequest, "Status must be SHIPPED, DELIVERED or CANCELED")
		return
	}

	orderID, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	var order models.Order
	if result := initializers.DB.First(&order, orderID); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return
	}

	if result := initializers.DB.Model(&order).Update("status", statusData.Status); result.Error != nil {
		log.Println("Order status update error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}
