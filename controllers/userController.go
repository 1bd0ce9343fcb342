package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mwasonga/soko-api/initializers"
	"github.com/mwasonga/soko-api/models"
)

func currentUserID(ctx *gin.Context) uint {
	return ctx.GetUint("userId")
}

func isAdmin(ctx *gin.Context) bool {
	userClaims, exists := ctx.Get("user")
	if !exists {
		return false
	}
	claims, ok := userClaims.(jwt.MapClaims)
	if !ok {
		return false
	}
	role, ok := claims["role"].(string)
	return ok && role == "admin"
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"isActive": user.IsActive,
	}
}

// GetMe returns the authenticated user's profile.
func GetMe(ctx *gin.Context) {
	var user models.User
	if result := initializers.DB.First(&user, currentUserID(ctx)); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "User not found")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"user": userResponse(user)})
}

// UpdateMe updates username and/or email for the authenticated user.
func UpdateMe(ctx *gin.Context) {
	var updateData struct {
		Username string `json:"username"`
		Email    string `json:"email" binding:"omitempty,email"`
	}
	if err := ctx.ShouldBindJSON(&updateData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var user models.User
	if result := initializers.DB.First(&user, currentUserID(ctx)); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "User not found")
		return
	}

	updates := map[string]any{}
	if updateData.Username != "" {
		updates["username"] = updateData.Username
	}
	if updateData.Email != "" {
		updates["email"] = updateData.Email
	}
	if len(updates) > 0 {
		if result := initializers.DB.Model(&user).Updates(updates); result.Error != nil {
			log.Println("User update error:", result.Error)
			sendErrorResponse(ctx, http.StatusBadRequest, "Failed to update user")
			return
		}
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"user": userResponse(user)})
}

// DeactivateMe soft-deletes the account. Orders and payments keep their user
// reference; repeat calls are no-ops.
func DeactivateMe(ctx *gin.Context) {
	var user models.User
	if result := initializers.DB.First(&user, currentUserID(ctx)); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "User not found")
		return
	}

	if user.IsActive {
		if result := initializers.DB.Model(&user).Update("is_active", false); result.Error != nil {
			log.Println("User deactivation error:", result.Error)
			sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
			return
		}
	}

	ctx.Status(http.StatusNoContent)
}

// ChangePassword verifies the old password and sets a new one.
func ChangePassword(ctx *gin.Context) {
	var changeData struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&changeData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var user models.User
	if result := initializers.DB.First(&user, currentUserID(ctx)); result.Error != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "User not found")
		return
	}

	if err := comparePasswords(user.Password, changeData.OldPassword); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Wrong password")
		return
	}

	hashedPassword, err := hashPassword(changeData.NewPassword)
	if err != nil {
		log.Println("Password hashing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	if result := initializers.DB.Model(&user).Update("password", hashedPassword); result.Error != nil {
		log.Println("Password change error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Password changed successfully."})
}
