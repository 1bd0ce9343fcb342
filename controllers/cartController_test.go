package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/models"
)

type cartResponse struct {
	Cart struct {
		Items []models.CartItem `json:"items"`
	} `json:"cart"`
}

func TestCartAddAndMerge(t *testing.T) {
	server := setupServer(t)
	token := createUser(t, server, "alice", "alice@example.com", "password123", "user")
	product := seedProduct(t, "Coffee", "coffee", "12.50", 20, true)

	rec := doJSON(t, server, http.MethodPost, "/cart", token, gin.H{
		"productId": product.ID,
		"quantity":  2,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Same product again merges into one line.
	rec = doJSON(t, server, http.MethodPost, "/cart", token, gin.H{
		"productId": product.ID,
		"quantity":  3,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on merge, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/cart", token, nil, nil)
	var body cartResponse
	decodeBody(t, rec, &body)
	if len(body.Cart.Items) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(body.Cart.Items))
	}
	if body.Cart.Items[0].Quantity != 5 {
		t.Errorf("expected merged quantity 5, got %d", body.Cart.Items[0].Quantity)
	}
	if body.Cart.Items[0].ProductName != "Coffee" {
		t.Errorf("expected product name snapshot, got %q", body.Cart.Items[0].ProductName)
	}
}

func TestCartRejectsInactiveProduct(t *testing.T) {
	server := setupServer(t)
	token := createUser(t, server, "alice", "alice@example.com", "password123", "user")
	product := seedProduct(t, "Ghost", "ghost", "12.50", 20, false)

	rec := doJSON(t, server, http.MethodPost, "/cart", token, gin.H{
		"productId": product.ID,
		"quantity":  1,
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for inactive product, got %d", rec.Code)
	}
}

func TestCartRemoveItem(t *testing.T) {
	server := setupServer(t)
	token := createUser(t, server, "alice", "alice@example.com", "password123", "user")
	product := seedProduct(t, "Coffee", "coffee", "12.50", 20, true)

	doJSON(t, server, http.MethodPost, "/cart", token, gin.H{
		"productId": product.ID,
		"quantity":  2,
	}, nil)

	rec := doJSON(t, server, http.MethodGet, "/cart", token, nil, nil)
	var body cartResponse
	decodeBody(t, rec, &body)
	if len(body.Cart.Items) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(body.Cart.Items))
	}

	rec = doJSON(t, server, http.MethodDelete, fmt.Sprintf("/cart/%d", body.Cart.Items[0].ID), token, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/cart", token, nil, nil)
	body = cartResponse{}
	decodeBody(t, rec, &body)
	if len(body.Cart.Items) != 0 {
		t.Errorf("cart should be empty, got %+v", body.Cart.Items)
	}
}
