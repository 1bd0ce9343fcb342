package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order lifecycle. Payment transitions drive PAID and REFUNDED; the rest are
// admin fulfillment updates.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCanceled  = "CANCELED"
	OrderStatusRefunded  = "REFUNDED"
)

// Address rows are snapshots taken at order time. They are never updated and
// never shared between orders, so later profile edits cannot rewrite history.
type Address struct {
	gorm.Model
	FullName   string `json:"fullName" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" gorm:"size:2;default:US"`
	Phone      string `json:"phone"`
}

type Order struct {
	gorm.Model
	UserID            uint            `json:"userId" gorm:"index"`
	Number            string          `json:"number" gorm:"uniqueIndex;size:50"`
	Status            string          `json:"status" gorm:"size:12;default:PENDING;index"`
	ShippingAddressID uint            `json:"-"`
	ShippingAddress   Address         `json:"shippingAddress" gorm:"foreignKey:ShippingAddressID"`
	BillingAddressID  uint            `json:"-"`
	BillingAddress    Address         `json:"billingAddress" gorm:"foreignKey:BillingAddressID"`
	Currency          string          `json:"currency" gorm:"size:3;default:USD"`
	Subtotal          decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
	DiscountTotal     decimal.Decimal `json:"discountTotal" gorm:"type:decimal(12,2)"`
	TaxTotal          decimal.Decimal `json:"taxTotal" gorm:"type:decimal(12,2)"`
	ShippingTotal     decimal.Decimal `json:"shippingTotal" gorm:"type:decimal(12,2)"`
	GrandTotal        decimal.Decimal `json:"grandTotal" gorm:"type:decimal(12,2)"`
	PaymentReference  string          `json:"paymentReference" gorm:"size:100"`
	IdempotencyKey    *string         `json:"-" gorm:"uniqueIndex;size:64"`
	Items             []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem carries name and unit price snapshots so the line survives later
// product edits.
type OrderItem struct {
	gorm.Model
	OrderID   uint            `json:"orderId" gorm:"index"`
	ProductID uint            `json:"productId"`
	Name      string          `json:"name" gorm:"size:255"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2)"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal" gorm:"type:decimal(12,2)"`
}
