package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	gorm.Model
	Name        string    `json:"name" gorm:"uniqueIndex;size:100" binding:"required"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;size:120" binding:"required"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive" gorm:"default:true"`
	Products    []Product `json:"-" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	gorm.Model
	CategoryID  uint            `json:"categoryId" binding:"required"`
	Name        string          `json:"name" gorm:"size:255" binding:"required"`
	Slug        string          `json:"slug" gorm:"uniqueIndex;size:255" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	Stock       int             `json:"stock" gorm:"default:0"`
	IsActive    bool            `json:"isActive" gorm:"default:true"`
	Images      []ProductImage  `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

type ProductImage struct {
	gorm.Model
	Url       string `json:"url" binding:"required"`
	ProductID uint   `json:"productId" binding:"required"`
}
