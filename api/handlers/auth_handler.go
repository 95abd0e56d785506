package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopfront/internal/cart"
	"shopfront/internal/models"
	"shopfront/internal/session"
)

type AuthHandler struct {
	session *session.Store
	cart    *cart.Store
}

func NewAuthHandler(sessionStore *session.Store, cartStore *cart.Store) *AuthHandler {
	return &AuthHandler{session: sessionStore, cart: cartStore}
}

// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.session.Login(c.Request.Context(), creds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login success", "data": user})
}

// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.session.Register(c.Request.Context(), creds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "register success", "data": user})
}

// POST /logout
// Clears the session and any cart state tied to it. Local state is
// dropped even when the backend call fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.session.Logout(c.Request.Context())
	h.cart.Reset()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logout success"})
}
