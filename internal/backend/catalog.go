package backend

import (
	"context"
	"net/http"

	"shopfront/internal/models"
	"shopfront/internal/query"
)

// GetProducts fetches one listing page for the given config.
func (c *Client) GetProducts(ctx context.Context, cfg query.ListingConfig) (models.ProductList, error) {
	var list models.ProductList
	_, err := c.do(ctx, http.MethodGet, "/products", cfg.Values(), nil, &list)
	return list, err
}

// GetHomeProducts fetches the unpaginated product strip shown on the
// home page.
func (c *Client) GetHomeProducts(ctx context.Context, cfg query.ListingConfig) ([]models.Product, error) {
	var list models.ProductList
	_, err := c.do(ctx, http.MethodGet, "/products", cfg.Values(), nil, &list)
	return list.Products, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var product models.Product
	_, err := c.do(ctx, http.MethodGet, "/products/"+id, nil, nil, &product)
	return product, err
}

func (c *Client) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	_, err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories)
	return categories, err
}
