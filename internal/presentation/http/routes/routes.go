package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/beautypos-api/internal/config"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/beautypos-api/internal/presentation/http/handler"
	"github.com/sangkips/beautypos-api/internal/presentation/http/middleware"
	"github.com/sangkips/beautypos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Service  *handler.ServiceHandler
	Client   *handler.ClientHandler
	Settings *handler.SettingsHandler
	Invoice  *handler.InvoiceHandler
	Stats    *handler.StatsHandler
	Printer  *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	// UserRepo lets every request re-check that the account is still active.
	UserRepo domainRepo.UserRepository
	// RateLimiter is optional; the caller owns it and stops it on shutdown.
	RateLimiter *middleware.RateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	request.UseTagFieldNames()
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", h.Auth.Login)

		protected := v1.Group("")
		var users middleware.UserLookup
		if deps.UserRepo != nil {
			users = deps.UserRepo
		}
		protected.Use(middleware.AuthMiddleware(deps.JWTManager, users))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	admin := middleware.RequireRole(enum.RoleAdmin)

	protected.GET("/auth/me", h.Auth.Me)

	// Settings
	protected.GET("/settings", h.Settings.GetSettings)
	protected.PATCH("/settings", admin, h.Settings.UpdateSettings)

	// Printer
	protected.GET("/printer/status", h.Printer.GetStatus)

	registerUserRoutes(protected, h, admin)
	registerCategoryRoutes(protected, h, admin)
	registerProductRoutes(protected, h, admin)
	registerServiceRoutes(protected, h, admin)
	registerClientRoutes(protected, h, admin)
	registerInvoiceRoutes(protected, h, deps)

	stats := protected.Group("/stats")
	{
		stats.GET("/dashboard", h.Stats.Dashboard)
		stats.GET("/summary", h.Stats.Summary)
	}
}

func registerUserRoutes(rg *gin.RouterGroup, h *Handlers, admin gin.HandlerFunc) {
	users := rg.Group("/users", admin)
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
	}
}

func registerCategoryRoutes(rg *gin.RouterGroup, h *Handlers, admin gin.HandlerFunc) {
	categories := rg.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.GET("/:id", h.Category.Get)
		categories.POST("", admin, h.Category.Create)
		categories.PUT("/:id", admin, h.Category.Update)
		categories.DELETE("/:id", admin, h.Category.Delete)
	}
}

func registerProductRoutes(rg *gin.RouterGroup, h *Handlers, admin gin.HandlerFunc) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/low-stock", admin, h.Product.LowStock)
		products.GET("/:id", h.Product.Get)
		products.POST("", admin, h.Product.Create)
		products.PUT("/:id", admin, h.Product.Update)
		products.DELETE("/:id", admin, h.Product.Delete)
		products.POST("/:id/adjust-stock", admin, h.Product.AdjustStock)
		products.GET("/:id/movements", admin, h.Product.Movements)
	}
}

func registerServiceRoutes(rg *gin.RouterGroup, h *Handlers, admin gin.HandlerFunc) {
	services := rg.Group("/services")
	{
		services.GET("", h.Service.List)
		services.GET("/:id", h.Service.Get)
		services.POST("", admin, h.Service.Create)
		services.PUT("/:id", admin, h.Service.Update)
		services.DELETE("/:id", admin, h.Service.Delete)
	}
}

func registerClientRoutes(rg *gin.RouterGroup, h *Handlers, admin gin.HandlerFunc) {
	clients := rg.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", admin, h.Client.Delete)
	}
}

func registerInvoiceRoutes(rg *gin.RouterGroup, h *Handlers, deps *Deps) {
	invoices := rg.Group("/invoices")
	{
		if deps.IdempotencyRepo != nil {
			invoices.POST("", middleware.Idempotency(deps.IdempotencyRepo), h.Invoice.Create)
		} else {
			invoices.POST("", h.Invoice.Create)
		}
		invoices.GET("", h.Invoice.List)
		invoices.GET("/export", h.Invoice.Export)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.GET("/:id/receipt", h.Printer.Receipt)
		invoices.POST("/:id/validate", h.Invoice.Validate)
		invoices.POST("/:id/print", h.Printer.Print)
	}
}
