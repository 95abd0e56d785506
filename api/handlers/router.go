package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopfront/internal/session"
)

// Router builds the storefront route tree. Login and register only
// make sense signed out; cart and user pages need a session.
func Router(
	catalogHandler *CatalogHandler,
	cartHandler *CartHandler,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	sessionStore *session.Store,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(logger))
	router.Use(gin.Recovery())

	// Public catalog routes
	router.GET("/", catalogHandler.Home)
	router.GET("/products", catalogHandler.ListProducts)
	router.GET("/products/:nameId", catalogHandler.GetProduct)
	router.GET("/categories", catalogHandler.GetCategories)

	// Signed-out only
	rejected := router.Group("/", RejectAuthenticated(sessionStore))
	{
		rejected.POST("/login", authHandler.Login)
		rejected.POST("/register", authHandler.Register)
	}

	// Signed-in only
	protected := router.Group("/", RequireAuth(sessionStore))
	{
		protected.POST("/logout", authHandler.Logout)

		cart := protected.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("/items", cartHandler.AddToCart)
			cart.POST("/buy-now", cartHandler.BuyNow)
			cart.PUT("/items", cartHandler.UpdateQuantity)
			cart.DELETE("/items", cartHandler.DeleteChecked)
			cart.DELETE("/items/:index", cartHandler.DeleteOne)
			cart.POST("/toggle", cartHandler.Toggle)
			cart.POST("/toggle-all", cartHandler.ToggleAll)
			cart.POST("/checkout", cartHandler.Checkout)
		}

		user := protected.Group("/user")
		{
			user.GET("/profile", userHandler.GetProfile)
			user.PUT("/profile", userHandler.UpdateProfile)
			user.PUT("/password", userHandler.ChangePassword)
			user.POST("/avatar", userHandler.UploadAvatar)
			user.GET("/purchases", userHandler.History)
		}
	}

	return router
}
