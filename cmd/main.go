package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	"rewardbase/internal/caching"
	"rewardbase/internal/handlers"
	"rewardbase/internal/jobs"
	"rewardbase/internal/middleware"
	"rewardbase/internal/repositories"
	"rewardbase/internal/services"
	"rewardbase/pkg/database"
)

const version = "1.0.0"

const defaultSessionTTL = 12 * time.Hour

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; sessions will not survive restarts")
	}

	// Billing webhook secret shared with the payment processor
	webhookSecret := os.Getenv("BILLING_WEBHOOK_SECRET")
	if webhookSecret == "" {
		webhookSecret = "dev-webhook-secret"
		log.Printf("WARNING: Using development billing webhook secret")
	}

	production := os.Getenv("ENV") == "production"

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration for branding assets
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewMinioStorage(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	membershipRepo := repositories.NewMembershipRepo(pool)
	subscriberRepo := repositories.NewSubscriberRepo(pool)
	campaignRepo := repositories.NewCampaignRepo(pool)
	tierRepo := repositories.NewTierRepo(pool)
	couponRepo := repositories.NewCouponRepo(pool)
	ticketRepo := repositories.NewTicketRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	authSvc := services.NewAuthService(cacheSvc, jwtSecret, defaultSessionTTL)
	tenantSvc := services.NewTenantService(tenantRepo, membershipRepo, subscriberRepo)
	authzSvc := services.NewAuthzService(tenantSvc, membershipRepo)
	membershipSvc := services.NewMembershipService(userRepo, membershipRepo, tenantRepo)
	billingSvc := services.NewBillingService(webhookSecret, subscriberRepo)

	// Federated login is optional; it activates when a JWKS URL is set.
	var identitySvc services.IdentityService
	if jwksURL := os.Getenv("IDP_JWKS_URL"); jwksURL != "" {
		identitySvc, err = services.NewIdentityService(jwksURL)
		if err != nil {
			log.Fatalf("Failed to initialize identity provider client: %v", err)
		}
	}

	// Rate limiting: Redis-backed so all instances share windows, unless
	// explicitly told to keep counters in memory.
	var rateStore services.RateLimitStore
	if os.Getenv("RATE_LIMIT_STORE") == "memory" {
		rateStore = services.NewMemoryRateLimitStore()
	} else {
		rateStore = services.NewRedisRateLimitStore(cacheSvc)
	}
	limiter := services.NewRateLimiter(rateStore, services.DefaultRateLimit, services.DefaultRateWindow)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, identitySvc, userRepo)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc, authzSvc, storageSvc)
	membershipHandlers := handlers.NewMembershipHandlers(membershipSvc, authzSvc)
	authzHandlers := handlers.NewAuthzHandlers(authzSvc)
	webhookHandlers := handlers.NewWebhookHandlers(billingSvc)
	campaignHandlers := handlers.NewCampaignHandlers(campaignRepo, authzSvc)
	tierHandlers := handlers.NewTierHandlers(tierRepo, authzSvc)
	couponHandlers := handlers.NewCouponHandlers(couponRepo, authzSvc)
	ticketHandlers := handlers.NewTicketHandlers(ticketRepo, authzSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Invite sweeper
	sweeper, err := jobs.NewInviteSweeper(membershipRepo)
	if err != nil {
		log.Fatalf("Failed to create invite sweeper: %v", err)
	}
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start invite sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Request gate: auth, tenant role enforcement and security headers for
	// everything outside the bypassed prefixes.
	gate := middleware.NewGate(authSvc, authzSvc, production)
	e.Use(gate.Middleware())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.Live)
	e.GET("/health/ready", healthHandlers.Ready)

	// Swagger UI
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Billing webhook: signature-verified, never session-authenticated
	e.POST("/webhooks/billing", webhookHandlers.HandleBillingEvent)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no session required)
	auth := v1.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/login/federated", authHandlers.FederatedLogin)
	auth.POST("/logout", authHandlers.Logout)
	auth.POST("/verify-email", authHandlers.VerifyEmail)
	auth.POST("/password-reset/request", authHandlers.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authHandlers.ResetPassword)

	// Public tenant resolution for the portal shell
	v1.GET("/tenants/:slug", tenantHandlers.Resolve)

	// Protected routes (session plus rate limit)
	protected := v1.Group("")
	protected.Use(middleware.RequireSession(authSvc, membershipRepo))
	protected.Use(middleware.RateLimit(limiter))

	protected.GET("/me", authHandlers.Me)
	protected.GET("/authz/check", authzHandlers.Check)
	protected.GET("/billing/status", webhookHandlers.SubscriptionStatus)

	protected.GET("/tenants", tenantHandlers.List)
	protected.POST("/teams", tenantHandlers.CreateTeam)
	protected.PUT("/workspace/branding", tenantHandlers.UpdateBranding)
	protected.POST("/workspace/logo", tenantHandlers.UploadLogo)

	protected.GET("/members", membershipHandlers.List)
	protected.POST("/members/invite", membershipHandlers.Invite)
	protected.POST("/members", membershipHandlers.AddExisting)
	protected.DELETE("/members/:id", membershipHandlers.Remove)
	protected.POST("/invitations/confirm", membershipHandlers.ConfirmInvite)

	protected.GET("/campaigns", campaignHandlers.List)
	protected.POST("/campaigns", campaignHandlers.Create)
	protected.GET("/campaigns/:id", campaignHandlers.Get)
	protected.PUT("/campaigns/:id", campaignHandlers.Update)
	protected.DELETE("/campaigns/:id", campaignHandlers.Delete)

	protected.GET("/tiers", tierHandlers.List)
	protected.POST("/tiers", tierHandlers.Create)
	protected.PUT("/tiers/:id", tierHandlers.Update)
	protected.DELETE("/tiers/:id", tierHandlers.Delete)

	protected.GET("/coupons", couponHandlers.List)
	protected.POST("/coupons", couponHandlers.Create)
	protected.GET("/coupons/:id", couponHandlers.Get)
	protected.DELETE("/coupons/:id", couponHandlers.Delete)

	protected.GET("/tickets", ticketHandlers.List)
	protected.POST("/tickets", ticketHandlers.Create)
	protected.GET("/tickets/:id", ticketHandlers.Get)
	protected.PUT("/tickets/:id/status", ticketHandlers.UpdateStatus)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Rewardbase portal v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
