package initializers

import (
	"log"
	"os"

	"github.com/mwasonga/soko-api/models"
	"golang.org/x/crypto/bcrypt"
)

func SyncDatabase() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Cart{},
		&models.CartItem{},
	)
	if err != nil {
		log.Fatal("Database migration failed:", err)
	}
	log.Println("Database synced successfully.")

	SeedAdminUser()
}

// SeedAdminUser creates the initial admin account from the environment when
// CREATE_ADMIN=true and no admin exists yet.
func SeedAdminUser() {
	if os.Getenv("CREATE_ADMIN") != "true" {
		return
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	if email == "" || password == "" {
		log.Println("CREATE_ADMIN is set but ADMIN_EMAIL or ADMIN_PASSWORD is missing, skipping.")
		return
	}

	var count int64
	DB.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Failed to hash admin password:", err)
		return
	}

	admin := models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     "admin",
		IsActive: true,
	}
	if result := DB.Create(&admin); result.Error != nil {
		log.Println("Failed to seed admin user:", result.Error)
		return
	}
	log.Println("Admin user seeded:", email)
}
