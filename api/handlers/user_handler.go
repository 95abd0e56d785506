package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopfront/internal/backend"
	"shopfront/internal/cart"
	"shopfront/internal/models"
	"shopfront/internal/session"
)

// maxAvatarSize matches the backend's upload limit.
const maxAvatarSize = 1 << 20

type UserHandler struct {
	backend *backend.Client
	session *session.Store
	cart    *cart.Store
}

func NewUserHandler(client *backend.Client, sessionStore *session.Store, cartStore *cart.Store) *UserHandler {
	return &UserHandler{backend: client, session: sessionStore, cart: cartStore}
}

// GET /user/profile
// Fetches the profile and refreshes the persisted copy.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.backend.GetProfile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.session.SetProfile(user)
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// PUT /user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.backend.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.session.SetProfile(user)
	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "data": user})
}

// PUT /user/password
// The confirm field is validated here and never forwarded.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	_, err := h.backend.UpdateProfile(c.Request.Context(), models.UpdateProfileRequest{
		Password:    req.Password,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// POST /user/avatar
// Forwards the uploaded image and returns the stored reference; the
// client saves it through a profile update.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing image file"})
		return
	}
	if header.Size > maxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "image exceeds 1MB"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	defer file.Close()

	avatar, err := h.backend.UploadAvatar(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "avatar uploaded", "data": avatar})
}

// GET /user/purchases?status=N
// Purchase history filtered by the numeric status tabs; 0 means all.
func (h *UserHandler) History(c *gin.Context) {
	status, err := strconv.Atoi(c.DefaultQuery("status", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status"})
		return
	}

	purchases, err := h.cart.History(c.Request.Context(), models.PurchaseStatus(status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": purchases})
}
