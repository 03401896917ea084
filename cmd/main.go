package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"trainhub/internal/caching"
	"trainhub/internal/config"
	"trainhub/internal/handlers"
	"trainhub/internal/jobs/background"
	"trainhub/internal/middleware"
	"trainhub/internal/models"
	"trainhub/internal/repositories"
	"trainhub/internal/services"
	"trainhub/pkg/database"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	var cfg *config.Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			logger.Fatal("failed to load config", zap.String("path", path), zap.Error(err))
		}
	} else {
		cfg = config.LoadFromEnv()
	}
	if cfg.Database.URL == "" {
		logger.Fatal("database URL is required (config file or DATABASE_URL)")
	}
	if cfg.Server.JWTSecret == "" {
		logger.Fatal("JWT secret is required (config file or JWT_SECRET)")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	assets, err := services.NewMinioAssetStorage(
		cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	if err != nil {
		logger.Fatal("failed to initialize asset storage", zap.Error(err))
	}
	if err := assets.EnsureBucket(ctx); err != nil {
		logger.Warn("could not ensure asset bucket; logo uploads may fail", zap.Error(err))
	}

	gateway := services.NewStripeGateway(cfg.Stripe.SecretKey)
	identity := services.NewRESTIdentityProvider(cfg.Identity.BaseURL, cfg.Identity.APIKey, logger)
	notifier := services.NewMailNotifier(cfg.Mail.BaseURL, cfg.Mail.APIKey, cfg.Mail.From, logger)

	// Repositories
	companyRepo := repositories.NewCompanyRepo(pool)
	locationRepo := repositories.NewLocationRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	programRepo := repositories.NewProgramRepo(pool)
	incidentRepo := repositories.NewIncidentRepo(pool)

	// Services
	saga := services.NewProvisioner(
		companyRepo, locationRepo, profileRepo, programRepo, incidentRepo,
		gateway, identity, notifier, logger)
	checkoutSvc := services.NewCheckoutService(saga, companyRepo, profileRepo, identity, logger)
	authSvc := services.NewAuthService(profileRepo, cacheSvc, cfg.Server.JWTSecret, logger)
	companySvc := services.NewCompanyService(companyRepo, programRepo, assets, cacheSvc, logger)
	profileSvc := services.NewProfileService(profileRepo, companyRepo, locationRepo, identity, logger)
	locationSvc := services.NewLocationService(locationRepo, companyRepo)

	// Handlers
	actors := handlers.NewActorLoader(profileRepo, cacheSvc)
	authHandlers := handlers.NewAuthHandlers(saga, authSvc, cacheSvc, actors, logger)
	checkoutHandlers := handlers.NewCheckoutHandlers(checkoutSvc, actors)
	companyHandlers := handlers.NewCompanyHandlers(companySvc, actors)
	locationHandlers := handlers.NewLocationHandlers(locationSvc, actors)
	profileHandlers := handlers.NewProfileHandlers(profileSvc, actors)
	programHandlers := handlers.NewProgramHandlers(programRepo)
	incidentHandlers := handlers.NewIncidentHandlers(incidentRepo)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(companyRepo, incidentRepo, cacheSvc, logger)
	if err != nil {
		logger.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Error("scheduler shutdown failed", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Provider-token login is only available when a JWKS endpoint is
	// configured for the identity provider.
	if cfg.Identity.JWKSURL != "" {
		providerMw, err := middleware.NewProviderTokenMiddleware(cfg.Identity.JWKSURL)
		if err != nil {
			logger.Fatal("failed to load identity provider JWKS", zap.Error(err))
		}
		auth.POST("/provider-login", authHandlers.ProviderLogin, providerMw.Verify())
	}

	v1.GET("/programs", programHandlers.ListPrograms)
	v1.GET("/programs/:id", programHandlers.GetProgram)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(cfg.Server.JWTSecret))

	protected.GET("/me", authHandlers.Me)
	protected.POST("/auth/logout", authHandlers.Logout)

	protected.POST("/checkout", checkoutHandlers.Checkout,
		middleware.RequireRole(models.RoleAdmin))

	protected.GET("/companies", companyHandlers.ListCompanies,
		middleware.RequireRole(models.RoleSuperAdmin))
	protected.GET("/companies/:id", companyHandlers.GetCompany)
	protected.PUT("/companies/:id", companyHandlers.UpdateCompany,
		middleware.RequireRole(models.RoleOwner))
	protected.DELETE("/companies/:id", companyHandlers.DeleteCompany,
		middleware.RequireRole(models.RoleOwner))
	protected.PUT("/companies/:id/programs", companyHandlers.AssignPrograms,
		middleware.RequireRole(models.RoleOwner))
	protected.GET("/companies/:id/children", companyHandlers.ListChildren)
	protected.POST("/companies/:id/logo", companyHandlers.UploadLogo,
		middleware.RequireRole(models.RoleOwner))

	protected.GET("/locations", locationHandlers.ListLocations)
	protected.POST("/locations", locationHandlers.CreateLocation,
		middleware.RequireRole(models.RoleOwner))
	protected.GET("/locations/:id", locationHandlers.GetLocation)
	protected.PUT("/locations/:id", locationHandlers.UpdateLocation,
		middleware.RequireRole(models.RoleOwner))
	protected.DELETE("/locations/:id", locationHandlers.DeleteLocation,
		middleware.RequireRole(models.RoleOwner))

	protected.GET("/profiles", profileHandlers.ListProfiles)
	protected.POST("/profiles", profileHandlers.CreateProfile,
		middleware.RequireRole(models.RoleManager))
	protected.GET("/profiles/:id", profileHandlers.GetProfile)
	protected.PUT("/profiles/:id", profileHandlers.UpdateProfile)
	protected.PUT("/profiles/:id/role", profileHandlers.ChangeRole,
		middleware.RequireRole(models.RoleManager))
	protected.PUT("/profiles/:id/status", profileHandlers.SetActive,
		middleware.RequireRole(models.RoleManager))
	protected.DELETE("/profiles/:id", profileHandlers.DeleteProfile,
		middleware.RequireRole(models.RoleManager))

	protected.GET("/incidents", incidentHandlers.ListIncidents,
		middleware.RequireRole(models.RoleSuperAdmin))
	protected.PUT("/incidents/:id/resolve", incidentHandlers.ResolveIncident,
		middleware.RequireRole(models.RoleSuperAdmin))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
