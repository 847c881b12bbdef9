package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	wishlistControllers "github.com/junaidrashid-git/storefront-api/controllers/wishlist"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Guests get a cart; the
// rest needs a signed-in customer.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	cartGroup := r.Group("/user/cart")
	cartGroup.Use(middleware.ValidateToken(d.Tokens, auth.RoleGuest, auth.RoleUser))
	{
		cartGroup.GET("", cartControllers.GetCart(d.DB))
		cartGroup.POST("", cartControllers.AddToCart(d.DB))
		cartGroup.PUT("/:product_id", cartControllers.UpdateCartItem(d.DB))
		cartGroup.DELETE("/:product_id", cartControllers.RemoveCartItem(d.DB))
		cartGroup.DELETE("", cartControllers.ClearCart(d.DB))
	}

	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(d.Tokens, auth.RoleUser))
	{
		userGroup.GET("", userControllers.GetUser(d.DB))
		userGroup.PUT("", userControllers.UpdateUser(d.DB))

		wishlist := userGroup.Group("/wishlist")
		{
			wishlist.GET("", wishlistControllers.GetWishlist(d.DB))
			wishlist.POST("", wishlistControllers.AddToWishlist(d.DB))
			wishlist.DELETE("/:product_id", wishlistControllers.RemoveFromWishlist(d.DB))
			wishlist.POST("/:product_id/move-to-cart", wishlistControllers.MoveToCart(d.DB))
		}
	}
}
