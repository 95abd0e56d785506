package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"shopfront/internal/models"
)

// GetPurchases lists the user's purchases filtered by status.
// models.StatusInCart yields the cart, models.StatusAll the whole
// history.
func (c *Client) GetPurchases(ctx context.Context, status models.PurchaseStatus) ([]models.Purchase, error) {
	params := url.Values{"status": {strconv.Itoa(int(status))}}
	var purchases []models.Purchase
	_, err := c.do(ctx, http.MethodGet, "/purchases", params, nil, &purchases)
	return purchases, err
}

func (c *Client) AddToCart(ctx context.Context, line models.PurchaseLine) (models.Purchase, error) {
	var purchase models.Purchase
	_, err := c.do(ctx, http.MethodPost, "/purchases/add-to-cart", nil, line, &purchase)
	return purchase, err
}

func (c *Client) UpdatePurchase(ctx context.Context, line models.PurchaseLine) (models.Purchase, error) {
	var purchase models.Purchase
	_, err := c.do(ctx, http.MethodPut, "/purchases/update-purchase", nil, line, &purchase)
	return purchase, err
}

// DeletePurchases removes the given purchase IDs and reports how many
// lines the backend deleted.
func (c *Client) DeletePurchases(ctx context.Context, ids []string) (int, error) {
	var result struct {
		DeletedCount int `json:"deleted_count"`
	}
	_, err := c.do(ctx, http.MethodDelete, "/purchases", nil, ids, &result)
	return result.DeletedCount, err
}

// BuyProducts submits the checked lines as one batch order. The
// backend's message is returned for the success notification.
func (c *Client) BuyProducts(ctx context.Context, lines []models.PurchaseLine) ([]models.Purchase, string, error) {
	var purchases []models.Purchase
	message, err := c.do(ctx, http.MethodPost, "/purchases/buy-products", nil, lines, &purchases)
	return purchases, message, err
}
