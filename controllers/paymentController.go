package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/mwasonga/soko-api/initializers"
	"github.com/mwasonga/soko-api/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreatePayment opens a payment for one of the caller's orders. Amount and
// currency are always copied from the order; the client cannot set them.
func CreatePayment(ctx *gin.Context) {
	var input struct {
		OrderID  uint   `json:"order" binding:"required"`
		Provider string `json:"provider"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	if input.Provider == "" {
		input.Provider = models.PaymentProviderManual
	}
	switch input.Provider {
	case models.PaymentProviderManual, models.PaymentProviderPaypal,
		models.PaymentProviderStripe, models.PaymentProviderMpesa:
	default:
		sendErrorResponse(ctx, http.StatusBadRequest, "Unknown payment provider")
		return
	}

	userID := currentUserID(ctx)

	var order models.Order
	if result := initializers.DB.Where("id = ? AND user_id = ?", input.OrderID, userID).First(&order); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return
	}

	payment := models.Payment{
		OrderID:  order.ID,
		UserID:   userID,
		Provider: input.Provider,
		Amount:   order.GrandTotal,
		Currency: order.Currency,
		Status:   models.PaymentStatusPending,
	}
	if result := initializers.DB.Create(&payment); result.Error != nil {
		log.Println("Payment creation error:", result.Error)
		sendErrorResponse(ctx, http.StatusBadRequest, "Order already has a payment")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"payment": payment})
}

// GetPayments lists the caller's payments; admins see all of them.
func GetPayments(ctx *gin.Context) {
	query := initializers.DB.Order("created_at desc")
	if !isAdmin(ctx) {
		query = query.Where("user_id = ?", currentUserID(ctx))
	}

	var payments []models.Payment
	if result := query.Find(&payments); result.Error != nil {
		log.Println("Payment listing error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch payments")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"payments": payments})
}

// GetPaymentByID returns one payment, visible to its owner or an admin.
func GetPaymentByID(ctx *gin.Context) {
	paymentID, err := strconv.Atoi(ctx.Param("paymentId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse paymentId")
		return
	}

	var payment models.Payment
	if result := initializers.DB.First(&payment, paymentID); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Payment not found")
		return
	}
	if payment.UserID != currentUserID(ctx) && !isAdmin(ctx) {
		sendErrorResponse(ctx, http.StatusNotFound, "Payment not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"payment": payment})
}

// UpdatePaymentStatus is the admin transition endpoint. The body names an
// order and a target of exactly PAID or REFUNDED:
//   - PAID marks the payment SUCCESS and the order PAID.
//   - REFUNDED requires the payment to already be SUCCESS, and marks both
//     records REFUNDED.
//
// Both rows change in one transaction so the order can never disagree with
// its payment.
func UpdatePaymentStatus(ctx *gin.Context) {
	var input struct {
		OrderID uint   `json:"order_id" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "order_id and status are required")
		return
	}

	if input.Status != models.OrderStatusPaid && input.Status != models.OrderStatusRefunded {
		sendErrorResponse(ctx, http.StatusBadRequest, "Status must be either 'PAID' or 'REFUNDED'")
		return
	}

	var order models.Order
	if result := initializers.DB.First(&order, input.OrderID); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Order or payment not found")
		return
	}
	var payment models.Payment
	if result := initializers.DB.Where("order_id = ?", order.ID).First(&payment); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Order or payment not found")
		return
	}

	if input.Status == models.OrderStatusRefunded && payment.Status != models.PaymentStatusSuccess {
		sendErrorResponse(ctx, http.StatusBadRequest, "Cannot refund a payment that has not succeeded")
		return
	}

	paymentStatus := models.PaymentStatusRefunded
	if input.Status == models.OrderStatusPaid {
		paymentStatus = models.PaymentStatusSuccess
		if payment.TransactionID == "" {
			payment.TransactionID = uuid.NewString()
		}
	}

	err := initializers.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&payment).Updates(map[string]any{
			"status":         paymentStatus,
			"transaction_id": payment.TransactionID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&order).Updates(map[string]any{
			"status":            input.Status,
			"payment_reference": payment.TransactionID,
		}).Error
	})
	if err != nil {
		log.Println("Payment status update error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update payment")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"payment": payment})
}

// verifyProviderTransaction asks the configured provider endpoint for the
// authoritative status of a transaction.
func verifyProviderTransaction(transactionID string) (string, []byte, error) {
	verifyURL := os.Getenv("PAYMENT_VERIFY_URL")
	if verifyURL == "" {
		return "", nil, errors.New("payment verification endpoint is not configured")
	}

	resp, err := resty.New().SetTimeout(30 * time.Second).R().
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+os.Getenv("PAYMENT_VERIFY_TOKEN")).
		SetQueryParam("transactionId", transactionID).
		Get(verifyURL)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", nil, fmt.Errorf("provider status request failed with status %d", resp.StatusCode())
	}

	var statusResp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body(), &statusResp); err != nil {
		return "", nil, fmt.Errorf("invalid response from provider: %w", err)
	}
	return statusResp.Status, resp.Body(), nil
}

// HandlePaymentWebhook receives provider notifications. The notification
// itself is untrusted; the status is re-fetched from the provider before it
// is applied to the payment and, on success, to the order.
func HandlePaymentWebhook(ctx *gin.Context) {
	var payload struct {
		TransactionID  string `json:"transactionId"`
		OrderReference string `json:"orderReference"`
	}
	if err := ctx.BindJSON(&payload); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if payload.TransactionID == "" || payload.OrderReference == "" {
		sendErrorResponse(ctx, http.StatusBadRequest, "Missing parameters")
		return
	}

	var order models.Order
	if result := initializers.DB.Where("number = ?", payload.OrderReference).First(&order); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return
	}
	var payment models.Payment
	if result := initializers.DB.Where("order_id = ?", order.ID).First(&payment); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Payment not found")
		return
	}

	providerStatus, rawBody, err := verifyProviderTransaction(payload.TransactionID)
	if err != nil {
		log.Println("Provider verification error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to verify payment status")
		return
	}

	var paymentStatus string
	switch providerStatus {
	case "COMPLETED", "SUCCESS":
		paymentStatus = models.PaymentStatusSuccess
	case "FAILED", "INVALID":
		paymentStatus = models.PaymentStatusFailed
	default:
		// PENDING and anything unrecognized leave the records untouched.
		sendJSONResponse(ctx, http.StatusOK, gin.H{"status": payment.Status})
		return
	}

	err = initializers.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&payment).Updates(map[string]any{
			"status":         paymentStatus,
			"transaction_id": payload.TransactionID,
			"raw_response":   datatypes.JSON(rawBody),
		}).Error; err != nil {
			return err
		}
		if paymentStatus == models.PaymentStatusSuccess {
			return tx.Model(&order).Updates(map[string]any{
				"status":            models.OrderStatusPaid,
				"payment_reference": payload.TransactionID,
			}).Error
		}
		return nil
	})
	if err != nil {
		log.Println("Webhook status update error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update payment")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"status": paymentStatus})
}
