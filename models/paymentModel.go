package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentProviderManual = "manual"
	PaymentProviderPaypal = "paypal"
	PaymentProviderStripe = "stripe"
	PaymentProviderMpesa  = "mpesa"
)

// Payment status machine: PENDING -> SUCCESS | FAILED, SUCCESS -> REFUNDED.
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusSuccess  = "SUCCESS"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusRefunded = "REFUNDED"
)

type Payment struct {
	gorm.Model
	OrderID       uint            `json:"orderId" gorm:"uniqueIndex"`
	UserID        uint            `json:"userId" gorm:"index"`
	Provider      string          `json:"provider" gorm:"size:20;default:manual"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	Currency      string          `json:"currency" gorm:"size:3;default:USD"`
	Status        string          `json:"status" gorm:"size:20;default:PENDING;index"`
	TransactionID string          `json:"transactionId" gorm:"size:100"`
	RawResponse   datatypes.JSON  `json:"rawResponse"`
}
