package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopfront/internal/cart"
	"shopfront/internal/models"
)

type CartHandler struct {
	cart *cart.Store
}

func NewCartHandler(cartStore *cart.Store) *CartHandler {
	return &CartHandler{cart: cartStore}
}

func (h *CartHandler) cartState() gin.H {
	return gin.H{
		"purchases": h.cart.Purchases(),
		"summary":   h.cart.Summary(),
	}
}

// GET /cart
// Refetches the server cart and reconciles it with the local selection
// state. ?preselect=<purchase_id> marks a just-bought line as checked
// (the buy-now flow).
func (h *CartHandler) GetCart(c *gin.Context) {
	if err := h.cart.Refresh(c.Request.Context(), c.Query("preselect")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.cartState()})
}

// POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req models.PurchaseLine
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	purchase, err := h.cart.AddToCart(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "added to cart", "data": purchase})
}

// POST /cart/buy-now
// Add a product and preselect it; the client follows up with
// GET /cart?preselect=<returned id>.
func (h *CartHandler) BuyNow(c *gin.Context) {
	var req models.PurchaseLine
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	purchase, err := h.cart.BuyNow(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "added to cart", "data": purchase})
}

type toggleRequest struct {
	Index   int  `json:"index"`
	Checked bool `json:"checked"`
}

// POST /cart/toggle
func (h *CartHandler) Toggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := h.cart.SetChecked(req.Index, req.Checked); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.cartState()})
}

// POST /cart/toggle-all
func (h *CartHandler) ToggleAll(c *gin.Context) {
	h.cart.ToggleAll()
	c.JSON(http.StatusOK, gin.H{"data": h.cartState()})
}

type quantityRequest struct {
	Index  int    `json:"index"`
	Action string `json:"action" binding:"required,oneof=increase decrease type blur"`
	Value  int    `json:"value"`
}

// PUT /cart/items
// Quantity edits. increase/decrease push immediately (clamped to
// [1, available]); type is a local edit; blur commits a typed value,
// skipping the call when it matches the server.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var err error
	switch req.Action {
	case "increase":
		err = h.cart.Increase(ctx, req.Index)
	case "decrease":
		err = h.cart.Decrease(ctx, req.Index)
	case "type":
		err = h.cart.TypeQuantity(req.Index, req.Value)
	case "blur":
		err = h.cart.CommitQuantity(ctx, req.Index, req.Value)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.cartState()})
}

// DELETE /cart/items/:index
func (h *CartHandler) DeleteOne(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid purchase index"})
		return
	}
	if err := h.cart.DeleteOne(c.Request.Context(), index); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted", "data": h.cartState()})
}

// DELETE /cart/items
// Removes every checked line.
func (h *CartHandler) DeleteChecked(c *gin.Context) {
	if err := h.cart.DeleteChecked(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted", "data": h.cartState()})
}

// POST /cart/checkout
// Buys the checked subset. An empty selection responds without calling
// the backend and without changing anything.
func (h *CartHandler) Checkout(c *gin.Context) {
	message, count, err := h.cart.Checkout(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data": gin.H{
			"bought_count": count,
			"cart":         h.cartState(),
		},
	})
}
