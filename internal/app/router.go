// internal/app/router.go
package app

import (
	"net/http"

	auditHandler "adscreen-service/internal/handlers/audit"
	authHandler "adscreen-service/internal/handlers/auth"
	bookingHandler "adscreen-service/internal/handlers/booking"
	invoiceHandler "adscreen-service/internal/handlers/invoice"
	notifyHandler "adscreen-service/internal/handlers/notification"
	offerHandler "adscreen-service/internal/handlers/offer"
	paymentHandler "adscreen-service/internal/handlers/payment"
	screenHandler "adscreen-service/internal/handlers/screen"
	subscriptionHandler "adscreen-service/internal/handlers/subscription"
	wsHandler "adscreen-service/internal/handlers/websocket"
	"adscreen-service/internal/middleware"
	"adscreen-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler         *authHandler.AuthHandler
	OfferHandler        *offerHandler.OfferHandler
	ScreenHandler       *screenHandler.ScreenHandler
	BookingHandler      *bookingHandler.BookingHandler
	InvoiceHandler      *invoiceHandler.InvoiceHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	PaymentHandler      *paymentHandler.PaymentHandler
	AuditHandler        *auditHandler.AuditHandler
	NotifHandler        *notifyHandler.NotificationHandler
	WSHandler           *wsHandler.WebSocketHandler
	AuthMiddleware      *middleware.AuthMiddleware

	UploadDir      string
	UploadsURLPath string
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	r.NoRoute(response.NotFound)

	// ==================== Infrastructure ====================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static(h.UploadsURLPath, h.UploadDir)
	r.GET("/ws", h.WSHandler.HandleConnection)

	api := r.Group("/api")
	auth := h.AuthMiddleware.Auth()
	merchant := h.AuthMiddleware.RequireRole("business", "admin")

	// ==================== Auth ====================
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.AuthHandler.Register)
		authRoutes.POST("/login", h.AuthHandler.Login)
		authRoutes.POST("/logout", auth, h.AuthHandler.Logout)
		authRoutes.GET("/me", auth, h.AuthHandler.Me)
	}

	// ==================== Public Catalog ====================
	api.GET("/categories", h.OfferHandler.ListCategories)
	api.GET("/plans", h.SubscriptionHandler.ListPlans)
	api.GET("/screen-locations", h.ScreenHandler.ListLocations)
	api.GET("/screen-locations/:id", h.ScreenHandler.GetLocation)

	// ==================== Offers ====================
	offers := api.Group("/offers")
	{
		offers.GET("", h.OfferHandler.ListOffers)
		offers.GET("/slug/:slug", h.AuthMiddleware.OptionalAuth(), h.OfferHandler.GetOfferBySlug)
		offers.GET("/:id", h.AuthMiddleware.OptionalAuth(), h.OfferHandler.GetOffer)

		offers.POST("", auth, merchant, h.OfferHandler.CreateOffer)
		offers.PUT("/:id", auth, merchant, h.OfferHandler.UpdateOffer)
		offers.DELETE("/:id", auth, merchant, h.OfferHandler.DeleteOffer)
		offers.POST("/:id/analyze", auth, merchant, h.OfferHandler.AnalyzeOffer)
		offers.GET("/:id/analyses", auth, merchant, h.OfferHandler.ListAnalyses)

		offers.POST("/:id/save", auth, h.OfferHandler.SaveOffer)
		offers.DELETE("/:id/save", auth, h.OfferHandler.UnsaveOffer)
	}
	api.GET("/saved-offers", auth, h.OfferHandler.ListSaved)

	// ==================== Bookings ====================
	api.POST("/check-availability", auth, h.BookingHandler.CheckAvailability)
	bookings := api.Group("/screen-bookings", auth)
	{
		bookings.POST("", merchant, h.BookingHandler.CreateBooking)
		bookings.GET("", h.BookingHandler.ListBookings)
		bookings.GET("/:id", h.BookingHandler.GetBooking)
		bookings.POST("/:id/cancel", h.BookingHandler.CancelBooking)

		admin := h.AuthMiddleware.RequireRole("admin")
		bookings.POST("/:id/approve", admin, h.BookingHandler.ApproveBooking)
		bookings.POST("/:id/reject", admin, h.BookingHandler.RejectBooking)
		bookings.PATCH("/:id/notes", admin, h.BookingHandler.UpdateNotes)
	}

	// ==================== Invoices ====================
	invoices := api.Group("/invoices", auth)
	{
		invoices.GET("", h.InvoiceHandler.ListInvoices)
		invoices.GET("/:id", h.InvoiceHandler.GetInvoice)
		invoices.GET("/:id/qr", h.InvoiceHandler.GetQRCode)
	}

	// ==================== Merchant Subscription ====================
	merchantRoutes := api.Group("/merchant", auth, merchant)
	{
		merchantRoutes.GET("/offers", h.OfferHandler.ListMyOffers)
		merchantRoutes.POST("/subscribe", h.SubscriptionHandler.Subscribe)
		merchantRoutes.GET("/subscription", h.SubscriptionHandler.GetSubscription)
		merchantRoutes.GET("/subscription/history", h.SubscriptionHandler.History)
		merchantRoutes.POST("/subscription/cancel", h.SubscriptionHandler.Cancel)
	}

	// ==================== Payments ====================
	api.POST("/payments/moyasar/callback", h.PaymentHandler.MoyasarCallback)

	// ==================== Notifications ====================
	notifications := api.Group("/notifications", auth)
	{
		notifications.GET("", h.NotifHandler.GetNotifications)
		notifications.GET("/summary", h.NotifHandler.GetSummary)
		notifications.POST("/read-all", h.NotifHandler.MarkAllAsRead)
		notifications.POST("/:id/read", h.NotifHandler.MarkAsRead)
		notifications.DELETE("/:id", h.NotifHandler.DeleteNotification)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin", h.AuthMiddleware.AdminOnly()...)
	{
		admin.GET("/users", h.AuthHandler.ListUsers)
		admin.GET("/audit-logs", h.AuditHandler.ListEntries)
		admin.GET("/ws/stats", h.WSHandler.GetStats)

		admin.GET("/categories", h.OfferHandler.AdminListCategories)
		admin.POST("/categories", h.OfferHandler.CreateCategory)
		admin.PUT("/categories/:id", h.OfferHandler.UpdateCategory)

		admin.GET("/screen-locations", h.ScreenHandler.AdminListLocations)
		admin.POST("/screen-locations", h.ScreenHandler.CreateLocation)
		admin.PUT("/screen-locations/:id", h.ScreenHandler.UpdateLocation)
		admin.DELETE("/screen-locations/:id", h.ScreenHandler.DeactivateLocation)
		admin.POST("/screen-locations/:id/pricing-options", h.ScreenHandler.CreatePricingOption)
		admin.PUT("/screen-locations/:id/pricing-options/:optionId", h.ScreenHandler.UpdatePricingOption)
		admin.DELETE("/screen-locations/:id/pricing-options/:optionId", h.ScreenHandler.DeletePricingOption)

		admin.GET("/plans", h.SubscriptionHandler.AdminListPlans)
		admin.POST("/plans", h.SubscriptionHandler.CreatePlan)
		admin.PUT("/plans/:id", h.SubscriptionHandler.UpdatePlan)
		admin.POST("/merchants/:id/subscription", h.SubscriptionHandler.AdminActivate)
	}

	logger.Info("routes registered", zap.Int("count", len(r.Routes())))
}
