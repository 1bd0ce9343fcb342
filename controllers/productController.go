package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/initializers"
	"github.com/mwasonga/soko-api/models"
	"gorm.io/gorm"
)

// Common error response helper
func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"message": message,
		"error":   errMsg,
	})
}

// Category handlers

func CreateCategory(ctx *gin.Context) {
	var category models.Category
	if err := ctx.ShouldBindJSON(&category); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	category.IsActive = true

	if err := initializers.DB.Create(&category).Error; err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Failed to create category", err)
		return
	}

	ctx.JSON(http.StatusCreated, category)
}

// GetCategories lists active categories only; inactive ones stay visible to
// nobody, admins included, matching the storefront behavior.
func GetCategories(ctx *gin.Context) {
	var categories []models.Category
	result := initializers.DB.Where("is_active = ?", true).Order("name asc").Find(&categories)
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch categories", result.Error)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"categories": categories})
}

func GetCategory(ctx *gin.Context) {
	categoryID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid category ID", err)
		return
	}

	var category models.Category
	result := initializers.DB.Where("is_active = ?", true).First(&category, categoryID)
	if result.Error != nil {
		respondWithError(ctx, http.StatusNotFound, "Category not found", nil)
		return
	}
	ctx.JSON(http.StatusOK, category)
}

func UpdateCategory(ctx *gin.Context) {
	categoryID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid category ID", err)
		return
	}

	var category models.Category
	if result := initializers.DB.First(&category, categoryID); result.Error != nil {
		respondWithError(ctx, http.StatusNotFound, "Category not found", nil)
		return
	}

	var updateData struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&updateData); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updates := map[string]any{}
	if updateData.Name != "" {
		updates["name"] = updateData.Name
	}
	if updateData.Slug != "" {
		updates["slug"] = updateData.Slug
	}
	if updateData.Description != "" {
		updates["description"] = updateData.Description
	}
	if err := initializers.DB.Model(&category).Updates(updates).Error; err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Failed to update category", err)
		return
	}
	ctx.JSON(http.StatusOK, category)
}

// DeleteCategory deactivates the category; the row stays for product history.
func DeleteCategory(ctx *gin.Context) {
	categoryID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid category ID", err)
		return
	}

	result := initializers.DB.Model(&models.Category{}).Where("id = ?", categoryID).Update("is_active", false)
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to delete category", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondWithError(ctx, http.StatusNotFound, "Category not found", nil)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Product handlers

func CreateProduct(ctx *gin.Context) {
	var product models.Product
	if err := ctx.ShouldBindJSON(&product); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if product.Stock < 0 {
		respondWithError(ctx, http.StatusBadRequest, "Stock cannot be negative", nil)
		return
	}
	product.IsActive = true

	var category models.Category
	if err := initializers.DB.First(&category, product.CategoryID).Error; err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Category does not exist", nil)
		return
	}

	if err := initializers.DB.Create(&product).Error; err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Failed to create product", err)
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

func applyProductFilters(query *gorm.DB, ctx *gin.Context) *gorm.DB {
	query = query.Where("is_active = ?", true)
	if category := ctx.Query("category"); category != "" {
		query = query.Where("category_id = ?", category)
	}
	if minPrice := ctx.Query("min_price"); minPrice != "" {
		query = query.Where("price >= ?", minPrice)
	}
	if maxPrice := ctx.Query("max_price"); maxPrice != "" {
		query = query.Where("price <= ?", maxPrice)
	}
	if search := ctx.Query("search"); search != "" {
		query = query.Where("name LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	return query
}

// GetProducts lists active products with filtering, search, ordering and
// pagination.
func GetProducts(ctx *gin.Context) {
	page, limit, offset := parsePagination(ctx)

	query := applyProductFilters(initializers.DB.Model(&models.Product{}).Preload("Images"), ctx)

	orderBy := ctx.DefaultQuery("ordering", "created_at")
	if orderBy != "price" && orderBy != "created_at" && orderBy != "updated_at" {
		orderBy = "created_at"
	}
	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	query = query.Order(orderBy + " " + sortOrder)

	var products []models.Product
	result := query.Limit(limit).Offset(offset).Find(&products)
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch products", result.Error)
		return
	}

	var count int64
	applyProductFilters(initializers.DB.Model(&models.Product{}), ctx).Count(&count)

	ctx.JSON(http.StatusOK, gin.H{
		"products": products,
		"metadata": gin.H{
			"total": count,
			"page":  page,
			"limit": limit,
		},
	})
}

func GetProduct(ctx *gin.Context) {
	productID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid product ID", err)
		return
	}

	var product models.Product
	result := initializers.DB.Preload("Images").Where("is_active = ?", true).First(&product, productID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		} else {
			respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve product", result.Error)
		}
		return
	}

	ctx.JSON(http.StatusOK, product)
}

func UpdateProduct(ctx *gin.Context) {
	productID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid product ID", err)
		return
	}

	var product models.Product
	if result := initializers.DB.First(&product, productID); result.Error != nil {
		respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		return
	}

	var updateData struct {
		Name        string  `json:"name"`
		Slug        string  `json:"slug"`
		Description string  `json:"description"`
		Price       *string `json:"price"`
		Stock       *int    `json:"stock"`
	}
	if err := ctx.ShouldBindJSON(&updateData); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updates := map[string]any{}
	if updateData.Name != "" {
		updates["name"] = updateData.Name
	}
	if updateData.Slug != "" {
		updates["slug"] = updateData.Slug
	}
	if updateData.Description != "" {
		updates["description"] = updateData.Description
	}
	if updateData.Price != nil {
		updates["price"] = *updateData.Price
	}
	if updateData.Stock != nil {
		if *updateData.Stock < 0 {
			respondWithError(ctx, http.StatusBadRequest, "Stock cannot be negative", nil)
			return
		}
		updates["stock"] = *updateData.Stock
	}

	if err := initializers.DB.Model(&product).Updates(updates).Error; err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Failed to update product", err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// DeleteProduct deactivates the product. Historical order items keep pointing
// at the row.
func DeleteProduct(ctx *gin.Context) {
	productID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid product ID", err)
		return
	}

	result := initializers.DB.Model(&models.Product{}).Where("id = ?", productID).Update("is_active", false)
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to delete product", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func getBucketName() string {
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		return bucket
	}
	return "soko-assets"
}

// getAWSUploader returns a configured S3 uploader
func getAWSUploader() (*manager.Uploader, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return manager.NewUploader(client), nil
}

func UploadProductImages(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		respondWithError(ctx, http.StatusBadRequest, "No files uploaded", nil)
		return
	}

	productIDStr := ctx.PostForm("productId")
	if productIDStr == "" {
		respondWithError(ctx, http.StatusBadRequest, "Missing productId", nil)
		return
	}
	productID, err := strconv.Atoi(productIDStr)
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid productId", err)
		return
	}

	var product models.Product
	if err := initializers.DB.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		} else {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to validate product", err)
		}
		return
	}

	uploader, err := getAWSUploader()
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to configure AWS", err)
		return
	}

	var uploadedUrls []string
	var failedUploads []string

	for _, file := range files {
		f, openErr := file.Open()
		if openErr != nil {
			log.Printf("Error opening file %s: %v", file.Filename, openErr)
			failedUploads = append(failedUploads, file.Filename)
			continue
		}

		// Unique key so repeat uploads never overwrite each other
		uniqueFilename := fmt.Sprintf("%d-%s-%s", productID, time.Now().Format("20060102150405"), file.Filename)

		result, uploadErr := uploader.Upload(context.TODO(), &s3.PutObjectInput{
			Bucket:      aws.String(getBucketName()),
			Key:         aws.String(uniqueFilename),
			Body:        f,
			ACL:         "public-read",
			ContentType: aws.String(file.Header.Get("Content-Type")),
		})
		f.Close()

		if uploadErr != nil {
			log.Printf("Error uploading file %s: %v", file.Filename, uploadErr)
			failedUploads = append(failedUploads, file.Filename)
			continue
		}

		uploadedUrls = append(uploadedUrls, result.Location)

		productImage := models.ProductImage{
			Url:       result.Location,
			ProductID: uint(productID),
		}
		if err := initializers.DB.Create(&productImage).Error; err != nil {
			log.Printf("Error saving image to database: %v", err)
		}
	}

	response := gin.H{
		"message": "Files processed",
		"urls":    uploadedUrls,
	}
	if len(failedUploads) > 0 {
		response["failed"] = failedUploads
	}

	ctx.JSON(http.StatusOK, response)
}
