// Package handlers wires the storefront routes to the stores. Every
// handler speaks the same envelope as the backend: {message, data}.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopfront/internal/backend"
)

// respondError translates a store/backend failure. Backend rejections
// keep their status and field errors (so 422 form errors reach the
// client); anything else is a gateway-level failure.
func respondError(c *gin.Context, err error) {
	var respErr *backend.ResponseError
	if errors.As(err, &respErr) {
		c.JSON(respErr.Status, gin.H{"message": respErr.Message, "data": respErr.Fields})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
}
