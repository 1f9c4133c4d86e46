package router

import (
	"net/http"
	"time"

	"github.com/aldenair/storefront-backend/config"
	"github.com/aldenair/storefront-backend/internal/app/controller"
	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/middleware"
	"github.com/aldenair/storefront-backend/pkg/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Auth     *controller.AuthController
	Product  *controller.ProductController
	Cart     *controller.CartController
	Bundle   *controller.BundleController
	Checkout *controller.CheckoutController
	Loyalty  *controller.LoyaltyController
	Partner  *controller.PartnerController
	Upload   *controller.UploadController // nil when S3 is not configured
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	limiter        ratelimit.Limiter // nil disables rate limiting
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	limiter ratelimit.Limiter,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		limiter:        limiter,
		config:         cfg,
	}
}

func (r *Router) corsConfig() cors.Config {
	return cors.Config{
		AllowOrigins:     r.config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.CartSessionHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.CartSessionHeader, middleware.RequestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func (r *Router) rateLimit(scope string) gin.HandlerFunc {
	if r.limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(r.limiter, scope)
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(r.corsConfig()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "ALDENAIR API is running",
		})
	})

	ctrl := r.controllers
	authn := r.authMiddleware.Authenticate()
	optional := r.authMiddleware.OptionalAuthenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	v1 := router.Group("/api/v1", r.rateLimit("api"))
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.rateLimit("auth"), ctrl.Auth.Register)
			auth.POST("/login", r.rateLimit("auth"), ctrl.Auth.Login)
			auth.POST("/refresh", ctrl.Auth.Refresh)
			auth.POST("/logout", authn, ctrl.Auth.Logout)
			auth.GET("/me", authn, ctrl.Auth.GetMe)
		}

		products := v1.Group("/products")
		{
			products.GET("", optional, ctrl.Product.GetProducts)
			products.GET("/:id", optional, ctrl.Product.GetProductByID)
			products.POST("", authn, adminOnly, ctrl.Product.CreateProduct)
			products.PUT("/:id", authn, adminOnly, ctrl.Product.UpdateProduct)
			products.DELETE("/:id", authn, adminOnly, ctrl.Product.DeleteProduct)
		}

		cart := v1.Group("/cart", middleware.CartSession())
		{
			cart.GET("", ctrl.Cart.GetCart)
			cart.DELETE("", ctrl.Cart.ClearCart)
			cart.GET("/ws", ctrl.Cart.Subscribe)
			cart.POST("/items", ctrl.Cart.AddItem)
			cart.PUT("/items/:product_id/:variant_id", ctrl.Cart.UpdateItemQuantity)
			cart.DELETE("/items/:product_id/:variant_id", ctrl.Cart.RemoveItem)
			cart.POST("/bundle", ctrl.Cart.ApplyBundle)
			cart.DELETE("/bundle", ctrl.Cart.RemoveBundle)
		}

		bundles := v1.Group("/bundles")
		{
			bundles.GET("", ctrl.Bundle.GetBundles)
			bundles.GET("/eligible", ctrl.Bundle.GetEligibleBundles)
			bundles.POST("", authn, adminOnly, ctrl.Bundle.CreateBundle)
			bundles.DELETE("/:id", authn, adminOnly, ctrl.Bundle.DeleteBundle)
		}

		v1.POST("/checkout", r.rateLimit("checkout"), middleware.CartSession(), optional, ctrl.Checkout.Checkout)
		v1.GET("/loyalty", authn, ctrl.Loyalty.GetStatus)

		partners := v1.Group("/partners")
		{
			partners.POST("", authn, ctrl.Partner.Apply)
			partners.GET("/me", authn, ctrl.Partner.GetMine)
			partners.PUT("/:id/approve", authn, adminOnly, ctrl.Partner.Approve)
		}

		if ctrl.Upload != nil {
			upload := v1.Group("/upload", authn, adminOnly)
			{
				upload.POST("/presigned-url", ctrl.Upload.PresignImage)
				upload.POST("/image", ctrl.Upload.UploadImage)
			}
		}
	}

	return router
}
