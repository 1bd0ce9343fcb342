package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/initializers"
	"github.com/mwasonga/soko-api/models"
	"github.com/mwasonga/soko-api/routes"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// setupServer gives each test its own in-memory database and a router with
// the full route table.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:soko_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
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
		t.Fatalf("migrate test db: %v", err)
	}
	initializers.DB = db

	gin.SetMode(gin.TestMode)
	server := gin.New()
	routes.DefaultRoutes(server)
	routes.AuthRoutes(server)
	routes.UserRoutes(server)
	routes.ProductRoutes(server)
	routes.CartRoutes(server)
	routes.OrderRoutes(server)
	routes.PaymentRoutes(server)
	return server
}

func doJSON(t *testing.T, server *gin.Engine, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// createUser inserts a user directly and returns a login token.
func createUser(t *testing.T, server *gin.Engine, username, email, password, role string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := initializers.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	rec := doJSON(t, server, http.MethodPost, "/auth/login", "", gin.H{
		"identifier": username,
		"password":   password,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &body)
	return body.Token
}

func seedProduct(t *testing.T, name, slug, price string, stock int, active bool) models.Product {
	t.Helper()
	var category models.Category
	err := initializers.DB.Where("slug = ?", "general").First(&category).Error
	if err != nil {
		category = models.Category{Name: "General", Slug: "general", IsActive: true}
		if err := initializers.DB.Create(&category).Error; err != nil {
			t.Fatalf("create category: %v", err)
		}
	}

	product := models.Product{
		CategoryID: category.ID,
		Name:       name,
		Slug:       slug,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		IsActive:   active,
	}
	if err := initializers.DB.Create(&product).Error; err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	if !active {
		// gorm's `default:true` tag drops the zero-value false on insert,
		// so force the column to match the requested state.
		if err := initializers.DB.Model(&product).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate product %s: %v", name, err)
		}
		product.IsActive = false
	}
	return product
}

func testAddress() gin.H {
	return gin.H{
		"fullName":   "Alice W",
		"line1":      "123 Market St",
		"city":       "Nairobi",
		"postalCode": "00100",
		"country":    "KE",
	}
}

func productStock(t *testing.T, id uint) int {
	t.Helper()
	var product models.Product
	if err := initializers.DB.First(&product, id).Error; err != nil {
		t.Fatalf("reload product %d: %v", id, err)
	}
	return product.Stock
}
