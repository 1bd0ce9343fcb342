package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"uniqueIndex;size:150" binding:"required"`
	Email    string `json:"email" gorm:"uniqueIndex;size:255" binding:"required,email"`
	Password string `json:"-"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive" gorm:"default:true"`
}

type LoginData struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}
