package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	newsletterControllers "github.com/junaidrashid-git/storefront-api/controllers/newsletter"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	qrcontroller "github.com/junaidrashid-git/storefront-api/controllers/qr"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

func adminDeps(d Deps) adminController.Deps {
	return adminController.Deps{
		DB:                d.DB,
		Store:             d.Store,
		Mailer:            d.Mailer,
		Log:               d.Log,
		StoreName:         d.Config.StoreName,
		LowStockThreshold: d.Config.LowStockThreshold,
	}
}

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires an admin
// session or the API key.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	ad := adminDeps(d)
	pd := productcontroller.Deps{DB: d.DB, Store: d.Store, Log: d.Log}
	od := orderDeps(d)

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin(d.Tokens, d.Config.APIKey))
	{
		// ─────────── Reporting ───────────
		adminGroup.GET("/dashboard", adminController.GetDashboard(ad))
		adminGroup.GET("/customers", adminController.GetCustomers(ad))
		adminGroup.GET("/admins", adminController.GetAllAdmins(d.DB))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.GET("", productcontroller.GetProducts(d.DB, true))
			productAdmin.POST("", productcontroller.CreateProduct(pd))
			productAdmin.GET("/export", productcontroller.ExportProductsToExcel(d.DB))
			productAdmin.POST("/import", productcontroller.ImportProductsFromExcel(d.DB))
			productAdmin.GET("/:id", productcontroller.GetProductByID(d.DB, true))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(pd))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(pd))
			productAdmin.POST("/:id/stock", productcontroller.AdjustStock(pd))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.GET("", productcontroller.GetCategories(d.DB))
			categoryAdmin.POST("", productcontroller.CreateCategory(pd))
			categoryAdmin.PUT("/:id", productcontroller.UpdateCategory(pd))
			categoryAdmin.DELETE("/:id", productcontroller.DeleteCategory(pd))
		}

		// ─────────── Offers ───────────
		adminGroup.PUT("/offers/:id", productcontroller.StartOffer(d.DB))
		adminGroup.DELETE("/offers/:id", productcontroller.EndOffer(d.DB))

		// ─────────── Orders ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrders(od))
			orderAdmin.GET("/export", orderControllers.ExportOrdersToExcel(d.DB))
			orderAdmin.GET("/:id", orderControllers.GetOrder(od))
			orderAdmin.PUT("/:id/status", orderControllers.UpdateOrderStatus(od))
			orderAdmin.POST("/:id/cancel", orderControllers.CancelOrder(od))
			orderAdmin.PUT("/:id/payment", orderControllers.UpdatePaymentStatus(od))
		}
		adminGroup.GET("/ws/orders", d.Hub.Handler())

		// ─────────── Announcements ───────────
		announcements := adminGroup.Group("/announcements")
		{
			announcements.GET("", adminController.GetAnnouncements(ad))
			announcements.POST("", adminController.CreateAnnouncement(ad))
			announcements.PUT("/:id", adminController.UpdateAnnouncement(ad))
			announcements.DELETE("/:id", adminController.DeleteAnnouncement(ad))
			announcements.POST("/:id/broadcast", adminController.BroadcastAnnouncement(ad))
		}

		// ─────────── Newsletter ───────────
		subscribers := adminGroup.Group("/newsletter/subscribers")
		{
			subscribers.GET("", newsletterControllers.GetSubscribers(d.DB))
			subscribers.GET("/export", newsletterControllers.ExportSubscribers(d.DB))
			subscribers.DELETE("/:id", newsletterControllers.DeleteSubscriber(d.DB))
		}

		// ─────────── Payment QR codes ───────────
		qd := qrcontroller.Deps{DB: d.DB, Store: d.Store, Log: d.Log}
		adminGroup.POST("/payment-methods/:method/qr", qrcontroller.UploadPaymentQR(qd))
		adminGroup.DELETE("/payment-methods/:method/qr", qrcontroller.DeletePaymentQR(qd))
	}

	// ─────────── Admin Approval Workflow (super admin only) ───────────
	adminMgmt := r.Group("/admin/admin-management")
	adminMgmt.Use(middleware.ValidateToken(d.Tokens, auth.RoleSuperAdmin))
	{
		adminMgmt.GET("/pending", adminController.ListPendingAdmins(d.DB))
		adminMgmt.POST("/approve", adminController.ApproveAdmin(ad))
		adminMgmt.POST("/reject", adminController.RejectAdmin(ad))
	}
}
