package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/models"
)

type productListResponse struct {
	Products []models.Product `json:"products"`
	Metadata struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
	} `json:"metadata"`
}

func TestProductListingHidesInactive(t *testing.T) {
	server := setupServer(t)
	seedProduct(t, "Visible", "visible", "10.00", 5, true)
	hidden := seedProduct(t, "Hidden", "hidden", "10.00", 5, false)

	rec := doJSON(t, server, http.MethodGet, "/products", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body productListResponse
	decodeBody(t, rec, &body)
	if len(body.Products) != 1 || body.Products[0].Name != "Visible" {
		t.Errorf("expected only the active product, got %+v", body.Products)
	}

	rec = doJSON(t, server, http.MethodGet, fmt.Sprintf("/products/%d", hidden.ID), "", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("inactive product should 404, got %d", rec.Code)
	}
}

func TestProductWritesAreAdminGated(t *testing.T) {
	server := setupServer(t)
	userToken := createUser(t, server, "alice", "alice@example.com", "password123", "user")
	adminToken := createUser(t, server, "root", "root@example.com", "password123", "admin")

	rec := doJSON(t, server, http.MethodPost, "/categories", adminToken, gin.H{
		"name": "Books",
		"slug": "books",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: %d %s", rec.Code, rec.Body.String())
	}
	var category models.Category
	decodeBody(t, rec, &category)

	payload := gin.H{
		"categoryId": category.ID,
		"name":       "Go Programming",
		"slug":       "go-programming",
		"price":      "29.99",
		"stock":      10,
	}

	rec = doJSON(t, server, http.MethodPost, "/products", "", payload, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
	rec = doJSON(t, server, http.MethodPost, "/products", userToken, payload, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", rec.Code)
	}
	rec = doJSON(t, server, http.MethodPost, "/products", adminToken, payload, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProductSearchAndFilter(t *testing.T) {
	server := setupServer(t)
	seedProduct(t, "Espresso Maker", "espresso-maker", "80.00", 3, true)
	seedProduct(t, "French Press", "french-press", "25.00", 3, true)

	rec := doJSON(t, server, http.MethodGet, "/products?search=espresso", "", nil, nil)
	var body productListResponse
	decodeBody(t, rec, &body)
	if len(body.Products) != 1 || body.Products[0].Slug != "espresso-maker" {
		t.Errorf("search failed: %+v", body.Products)
	}
	if body.Metadata.Total != 1 {
		t.Errorf("total should count the filtered set, got %d", body.Metadata.Total)
	}

	rec = doJSON(t, server, http.MethodGet, "/products?max_price=30", "", nil, nil)
	body = productListResponse{}
	decodeBody(t, rec, &body)
	if len(body.Products) != 1 || body.Products[0].Slug != "french-press" {
		t.Errorf("price filter failed: %+v", body.Products)
	}
	if body.Metadata.Total != 1 {
		t.Errorf("total should count the filtered set, got %d", body.Metadata.Total)
	}

	rec = doJSON(t, server, http.MethodGet, "/products?ordering=price&sort=asc", "", nil, nil)
	body = productListResponse{}
	decodeBody(t, rec, &body)
	if len(body.Products) != 2 || body.Products[0].Slug != "french-press" {
		t.Errorf("price ordering failed: %+v", body.Products)
	}
}

func TestDeleteProductIsSoft(t *testing.T) {
	server := setupServer(t)
	adminToken := createUser(t, server, "root", "root@example.com", "password123", "admin")
	product := seedProduct(t, "Doomed", "doomed", "10.00", 5, true)

	rec := doJSON(t, server, http.MethodDelete, fmt.Sprintf("/products/%d", product.ID), adminToken, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// Gone from the public listing, but the row survives for order history.
	rec = doJSON(t, server, http.MethodGet, "/products", "", nil, nil)
	var body productListResponse
	decodeBody(t, rec, &body)
	if len(body.Products) != 0 {
		t.Errorf("deleted product still listed: %+v", body.Products)
	}
	if got := productStock(t, product.ID); got != 5 {
		t.Errorf("row should survive with stock intact, got %d", got)
	}
}

func TestCategoryDeleteIsSoft(t *testing.T) {
	server := setupServer(t)
	adminToken := createUser(t, server, "root", "root@example.com", "password123", "admin")

	rec := doJSON(t, server, http.MethodPost, "/categories", adminToken, gin.H{
		"name": "Ephemeral",
		"slug": "ephemeral",
	}, nil)
	var category models.Category
	decodeBody(t, rec, &category)

	rec = doJSON(t, server, http.MethodDelete, fmt.Sprintf("/categories/%d", category.ID), adminToken, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodGet, fmt.Sprintf("/categories/%d", category.ID), "", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deactivated category should 404, got %d", rec.Code)
	}
}
