package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	newsletterControllers "github.com/junaidrashid-git/storefront-api/controllers/newsletter"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	qrcontroller "github.com/junaidrashid-git/storefront-api/controllers/qr"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

func newsletterDeps(d Deps) newsletterControllers.Deps {
	return newsletterControllers.Deps{
		DB:        d.DB,
		Mailer:    d.Mailer,
		Log:       d.Log,
		BaseURL:   d.Config.PublicBaseURL,
		StoreName: d.Config.StoreName,
		TokenTTL:  d.Config.NewsletterTokenTTL,
	}
}

// SetupPublicRoutes registers the catalog and newsletter endpoints anyone may call.
func SetupPublicRoutes(r *gin.Engine, d Deps) {
	r.GET("/products", productcontroller.GetProducts(d.DB, false))
	r.GET("/products/:id", productcontroller.GetProductByID(d.DB, false))
	r.GET("/categories", productcontroller.GetCategories(d.DB))
	r.GET("/offers", productcontroller.GetOffers(d.DB))
	r.GET("/announcements", adminController.GetActiveAnnouncements(adminDeps(d)))
	r.GET("/payment-methods", qrcontroller.GetPaymentMethods(d.DB))

	nd := newsletterDeps(d)
	newsletter := r.Group("/newsletter")
	{
		newsletter.POST("/subscribe", middleware.RateLimit(d.Limiter, "newsletter", d.Log), newsletterControllers.SubscribeHandler(nd))
		newsletter.GET("/confirm", newsletterControllers.ConfirmHandler(nd))
		newsletter.POST("/unsubscribe", newsletterControllers.UnsubscribeHandler(nd))
	}
}
