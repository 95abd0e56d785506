package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopfront/internal/catalog"
	"shopfront/internal/models"
	"shopfront/internal/query"
)

type CatalogHandler struct {
	catalog *catalog.Store
}

func NewCatalogHandler(catalogStore *catalog.Store) *CatalogHandler {
	return &CatalogHandler{catalog: catalogStore}
}

// GET /
// Home strip: products for the resolved config, no pagination.
func (h *CatalogHandler) Home(c *gin.Context) {
	cfg := query.Resolve(c.Request.URL.Query())

	products, err := h.catalog.HomeProducts(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"products": products},
	})
}

// GET /products
// Paginated listing keyed by the whitelisted query parameters.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	cfg := query.Resolve(c.Request.URL.Query())

	list, err := h.catalog.Products(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"products":   list.Products,
			"pagination": list.Pagination,
			// Echo the resolved config so clients can build filter and
			// pagination links without re-deriving the whitelist.
			"query": cfg.Values(),
		},
	})
}

// GET /products/:nameId
// Product detail addressed by the SEO name-id segment, with a strip of
// related products from the same category.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id := models.IDFromNameID(c.Param("nameId"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	product, err := h.catalog.Product(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	related, err := h.catalog.Products(c.Request.Context(), query.ListingConfig{
		Page:     "1",
		Limit:    "20",
		Category: product.Category.ID,
	})
	if err != nil {
		// The detail page is still useful without the related strip.
		related = models.ProductList{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"product": product,
			"related": related.Products,
		},
	})
}

// GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}
