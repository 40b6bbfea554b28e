package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/config"
	"github.com/sangkips/beautypos-api/internal/infrastructure/cache"
	"github.com/sangkips/beautypos-api/internal/infrastructure/database"
	"github.com/sangkips/beautypos-api/internal/infrastructure/repository"
	"github.com/sangkips/beautypos-api/internal/presentation/http/handler"
	"github.com/sangkips/beautypos-api/internal/presentation/http/middleware"
	"github.com/sangkips/beautypos-api/internal/presentation/http/routes"
	"github.com/sangkips/beautypos-api/pkg/printer"
	"github.com/sangkips/beautypos-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Open(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.Bootstrap(ctx, db, cfg.Bootstrap); err != nil {
		log.Fatalf("Failed to bootstrap database: %v", err)
	}

	// Stats cache: redis when configured, in-process otherwise
	var statsCache cache.Cache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(ctx); err != nil {
			log.Printf("Warning: redis unreachable at %s, using in-memory cache: %v", cfg.Redis.Addr, err)
		} else {
			statsCache = rc
			defer rc.Close()
		}
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiry)

	// Initialize repositories
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	clientRepo := repository.NewClientRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize thermal printer
	thermalPrinter, err := printer.New(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address, cfg.Printer.Timeout)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	// Initialize services
	statsService := service.NewStatsService(statsRepo, clientRepo, productRepo, statsCache,
		cfg.Stats.CacheTTL, cfg.Stats.LowStockThreshold)
	invoiceService := service.NewInvoiceService(tx, invoiceRepo, clientRepo, productRepo, serviceRepo,
		settingsRepo, movementRepo, statsService)
	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(tx, productRepo, categoryRepo, movementRepo, statsService)
	serviceCatalog := service.NewServiceCatalog(serviceRepo)
	clientService := service.NewClientService(clientRepo, invoiceRepo, statsService)
	settingsService := service.NewSettingsService(settingsRepo)
	printerService := service.NewPrinterService(thermalPrinter, cfg.Printer.Width, invoiceRepo, settingsRepo)
	exportService := service.NewExportService(invoiceService)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Category: handler.NewCategoryHandler(categoryService),
		Product:  handler.NewProductHandler(productService),
		Service:  handler.NewServiceHandler(serviceCatalog),
		Client:   handler.NewClientHandler(clientService),
		Settings: handler.NewSettingsHandler(settingsService),
		Invoice:  handler.NewInvoiceHandler(invoiceService, exportService),
		Stats:    handler.NewStatsHandler(statsService),
		Printer:  handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		UserRepo:        userRepo,
		RateLimiter:     rateLimiter,
	})

	go purgeIdempotencyKeys(ctx, idempotencyRepo.DeleteExpired, time.Hour)

	port := cfg.App.Port
	if port == "" {
		port = "4000"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s, database: %s", cfg.App.Env, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

// purgeIdempotencyKeys drops expired keys every interval until ctx ends.
func purgeIdempotencyKeys(ctx context.Context, purge func(context.Context) error, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := purge(ctx); err != nil {
				log.Printf("Warning: failed to purge idempotency keys: %v", err)
			}
		}
	}
}
