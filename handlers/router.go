package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roamly/api/logging"
	"roamly/api/middleware"
)

// Server bundles the handler groups mounted under /api.
type Server struct {
	Auth       *AuthHandlers
	Navigation *NavigationHandlers
	Cart       *CartHandlers
	Checkout   *CheckoutHandlers
	Content    *ContentHandlers
	Admin      *AdminHandlers
	Analytics  *AnalyticsHandlers

	Tokens       middleware.TokenValidator
	FEOrigin     string
	CookieSecure bool
	// UploadDir is served under /uploads when set.
	UploadDir string
	Logger    *zap.Logger
}

// Router builds the gin engine with every API route.
func (s *Server) Router() *gin.Engine {
	logger := logging.OrNop(s.Logger)

	r := gin.New()
	r.Use(logging.GinLogger(logger), logging.GinRecovery(logger))
	r.Use(middleware.CORSMiddleware(s.FEOrigin))

	if s.UploadDir != "" {
		r.Static("/uploads", s.UploadDir)
	}

	api := r.Group("/api")
	api.GET("/health", Health)

	visitor := api.Group("/")
	visitor.Use(middleware.VisitorSession(s.CookieSecure, logger), middleware.OptionalAdmin(s.Tokens))
	{
		visitor.GET("/navigate", s.Navigation.State)
		visitor.POST("/navigate", s.Navigation.Navigate)
		visitor.POST("/navigate/init", s.Navigation.Init)

		visitor.GET("/cart", s.Cart.Get)
		visitor.DELETE("/cart", s.Cart.Clear)
		visitor.POST("/cart/items", s.Cart.AddItem)
		visitor.PATCH("/cart/items/:id", s.Cart.UpdateItem)
		visitor.DELETE("/cart/items/:id", s.Cart.RemoveItem)

		visitor.GET("/checkout", s.Checkout.Get)
		visitor.POST("/checkout/info", s.Checkout.SubmitInfo)
		visitor.POST("/checkout/back", s.Checkout.Back)
		visitor.POST("/checkout/payment", s.Checkout.SubmitPayment)
		visitor.POST("/checkout/reset", s.Checkout.Reset)

		visitor.GET("/posts", s.Content.ListPosts)
		visitor.GET("/posts/:slug", s.Content.GetPost)
		visitor.GET("/gallery", s.Content.ListGallery)
		visitor.GET("/products", s.Content.ListProducts)
		visitor.GET("/products/:id", s.Content.GetProduct)

		visitor.POST("/track", s.Analytics.TrackEvent)
	}

	auth := api.Group("/admin")
	{
		auth.POST("/login", s.Auth.Login)
		auth.POST("/logout", s.Auth.Logout)
		auth.GET("/session", middleware.OptionalAdmin(s.Tokens), s.Auth.Session)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(s.Tokens, logger))
	{
		admin.GET("/posts", s.Admin.ListPosts)
		admin.POST("/posts", s.Admin.CreatePost)
		admin.PUT("/posts/:id", s.Admin.UpdatePost)
		admin.DELETE("/posts/:id", s.Admin.DeletePost)

		admin.GET("/products", s.Admin.ListProducts)
		admin.POST("/products", s.Admin.CreateProduct)
		admin.PUT("/products/:id", s.Admin.UpdateProduct)
		admin.DELETE("/products/:id", s.Admin.DeleteProduct)

		admin.POST("/gallery", s.Admin.AddGalleryImage)
		admin.DELETE("/gallery/:id", s.Admin.DeleteGalleryImage)

		admin.POST("/uploads", s.Admin.Upload)

		admin.GET("/orders", s.Admin.ListOrders)
		admin.GET("/orders/:id", s.Admin.GetOrder)
		admin.PATCH("/orders/:id", s.Admin.UpdateOrderStatus)

		stats := admin.Group("/stats")
		{
			stats.GET("/event-counts", s.Analytics.GetEventCountsOverTime)
			stats.GET("/average-event-duration", s.Analytics.GetAverageEventDuration)
			stats.GET("/average-custom-param", s.Analytics.GetAverageCustomEventParameter)
			stats.GET("/unique-users", s.Analytics.GetUniqueUsersOverTime)
			stats.GET("/top-paths", s.Analytics.GetTopNPagePaths)
		}
	}
	return r
}
