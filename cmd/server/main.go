package main

import (
	"log"

	"github.com/bitnshop/bitnshop/internal/audit"
	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/cache"
	"github.com/bitnshop/bitnshop/internal/config"
	"github.com/bitnshop/bitnshop/internal/database"
	"github.com/bitnshop/bitnshop/internal/handler"
	"github.com/bitnshop/bitnshop/internal/mailer"
	"github.com/bitnshop/bitnshop/internal/middleware"
	"github.com/bitnshop/bitnshop/internal/repository"
	"github.com/bitnshop/bitnshop/internal/service"
	"github.com/bitnshop/bitnshop/internal/slug"
	"github.com/bitnshop/bitnshop/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()
	if err := database.SeedRoles(database.DB); err != nil {
		logger.Log.Fatal("Failed to seed roles", zap.Error(err))
	}
	if err := database.SeedNavItems(database.DB); err != nil {
		logger.Log.Fatal("Failed to seed nav items", zap.Error(err))
	}

	// Audit trail for admin actions
	trail, err := audit.Open(cfg.AuditLogPath)
	if err != nil {
		logger.Log.Fatal("Failed to open audit trail", zap.Error(err))
	}
	defer trail.Close()

	// Redis backs the nav menu cache, the rate limiter and password
	// reset codes
	menuCache, err := cache.NewRedisMenuCache(cfg.RedisURL, cfg.NavCacheTTL)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer menuCache.Close()

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg)
	} else {
		logger.Log.Warn("SMTP not configured, outgoing mail is disabled")
		mail = mailer.NoopMailer{}
	}

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	roleRepo := repository.NewRoleRepository(database.DB)
	productRepo := repository.NewProductRepository(database.DB)
	categoryRepo := repository.NewCategoryRepository(database.DB)
	navRepo := repository.NewNavRepository(database.DB)
	slugGen := slug.NewGenerator(repository.NewSlugStore(database.DB))

	// Services
	authService := service.NewAuthService(userRepo, roleRepo, slugGen, mail, menuCache.Client(), cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(userRepo, roleRepo, slugGen, mail, trail)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, slugGen, trail)
	navService := service.NewNavService(navRepo, menuCache, trail)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, cfg.IsProduction())
	userHandler := handler.NewUserHandler(userService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	navHandler := handler.NewNavHandler(navService)
	cpanelHandler := handler.NewCpanelHandler(userService, catalogService, trail)

	rateLimiter := middleware.NewRateLimiter(menuCache.Client(), middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	})

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction()))
	router.Use(rateLimiter.Middleware())
	router.Use(middleware.Authenticate(cfg.JWTSecret))

	registerRoutes(router, authHandler, userHandler, catalogHandler, navHandler, cpanelHandler)

	logger.Log.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := router.Run(cfg.ServerPort); err != nil {
		logger.Log.Fatal("Failed to start server", zap.Error(err))
	}
}

func registerRoutes(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	catalogHandler *handler.CatalogHandler,
	navHandler *handler.NavHandler,
	cpanelHandler *handler.CpanelHandler,
) {
	anyAdmin := middleware.RequireRoles(authz.MustPolicy(authz.AdminRoleNames()...))
	seniorAdmin := middleware.RequireRoles(authz.MustPolicy(authz.RoleSuperAdmin, authz.RoleAdmin))
	catalogStaff := middleware.RequireRoles(authz.MustPolicy(
		authz.RoleSuperAdmin, authz.RoleAdmin, authz.RoleJuniorAdmin, authz.RoleModerator,
	))

	// Public storefront
	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/forgot-password", authHandler.ForgotPassword)
		api.POST("/auth/reset-password", authHandler.ResetPassword)

		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:slug", catalogHandler.GetProduct)
		api.GET("/categories", catalogHandler.ListCategories)
		api.GET("/categories/:slug", catalogHandler.GetCategory)
		api.GET("/nav", navHandler.GetNavItems)
	}

	// Control panel. The overview only needs a valid session; every
	// section below it names the roles it requires.
	cpanel := router.Group("/api/cpanel")
	{
		cpanel.GET("/overview", middleware.RequireAuthenticated(), cpanelHandler.Overview)

		users := cpanel.Group("/users", anyAdmin)
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id/roles", seniorAdmin, userHandler.ReplaceRoles)
			users.DELETE("/:id", seniorAdmin, userHandler.DeleteUser)
		}
		cpanel.GET("/roles", anyAdmin, userHandler.ListRoles)

		products := cpanel.Group("/products", catalogStaff)
		{
			products.GET("", catalogHandler.ListAllProducts)
			products.POST("", catalogHandler.CreateProduct)
			products.PUT("/:id", catalogHandler.UpdateProduct)
			products.DELETE("/:id", catalogHandler.DeleteProduct)
		}

		categories := cpanel.Group("/categories", catalogStaff)
		{
			categories.POST("", catalogHandler.CreateCategory)
			categories.PUT("/:id", catalogHandler.UpdateCategory)
			categories.DELETE("/:id", catalogHandler.DeleteCategory)
		}

		nav := cpanel.Group("/nav", seniorAdmin)
		{
			nav.POST("", navHandler.CreateNavItem)
			nav.PUT("/:id", navHandler.UpdateNavItem)
			nav.DELETE("/:id", navHandler.DeleteNavItem)
		}

		auditGroup := cpanel.Group("/audit", seniorAdmin)
		{
			auditGroup.GET("", cpanelHandler.AuditTrail)
			auditGroup.DELETE("", cpanelHandler.PruneAuditTrail)
		}
	}
}
