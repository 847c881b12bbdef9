package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

func orderDeps(d Deps) orderControllers.Deps {
	return orderControllers.Deps{
		DB:     d.DB,
		Events: d.Events,
		Log:    d.Log,
		Checkout: orderControllers.Options{
			Location:  d.Config.StoreLocation,
			Formatter: d.Formatter,
		},
		StorePhone: d.Config.StoreWhatsAppNumber,
	}
}

// SetupOrderRoutes registers the customer's "/user/orders/*" endpoints.
func SetupOrderRoutes(r *gin.Engine, d Deps) {
	od := orderDeps(d)
	orders := r.Group("/user/orders")
	orders.Use(middleware.ValidateToken(d.Tokens, auth.RoleUser))
	{
		orders.POST("", middleware.RateLimit(d.Limiter, "checkout", d.Log), orderControllers.Checkout(od))
		orders.GET("", orderControllers.GetUserOrders(od))
		orders.GET("/:id", orderControllers.GetUserOrder(od))
		orders.GET("/:id/notification", orderControllers.GetOrderNotification(od))
		orders.POST("/:id/notification/sent", orderControllers.MarkNotificationSent(od))
		orders.POST("/:id/cancel", orderControllers.CancelUserOrder(od))
	}
}
