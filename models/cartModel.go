package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Cart struct {
	gorm.Model
	UserID uint       `json:"userId" gorm:"uniqueIndex"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

type CartItem struct {
	gorm.Model
	CartID       uint            `json:"cartId"`
	ProductID    uint            `json:"productId" binding:"required"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice" gorm:"type:decimal(10,2)"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
}
