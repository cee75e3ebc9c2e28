package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/sunroad/backend/internal/application/billing"
	contactapp "github.com/sunroad/backend/internal/application/contact"
	"github.com/sunroad/backend/internal/domain/contact"
	"github.com/sunroad/backend/internal/domain/shared"
	"github.com/sunroad/backend/internal/infrastructure/auth"
	infrabilling "github.com/sunroad/backend/internal/infrastructure/billing"
	"github.com/sunroad/backend/internal/infrastructure/cache"
	"github.com/sunroad/backend/internal/infrastructure/captcha"
	"github.com/sunroad/backend/internal/infrastructure/config"
	"github.com/sunroad/backend/internal/infrastructure/directory"
	"github.com/sunroad/backend/internal/infrastructure/email"
	"github.com/sunroad/backend/internal/infrastructure/logger"
	"github.com/sunroad/backend/internal/infrastructure/persistence"
	"github.com/sunroad/backend/internal/interfaces/http/handler"
	"github.com/sunroad/backend/internal/interfaces/http/middleware"
	"github.com/sunroad/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Sun Road backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database, with GORM logging bridged to zap
	gormLogLevel, err := logger.MapGormLogLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal("Invalid log level", zap.Error(err))
	}
	gormLog := logger.NewGormLogger(log, gormLogLevel, 200*time.Millisecond)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	artistRepo := persistence.NewGormArtistRepository(db.DB)
	messageRepo := persistence.NewGormContactMessageRepository(db.DB)
	blocklistRepo := persistence.NewGormBlocklistRepository(db.DB)
	entitlementRepo := persistence.NewGormPlanEntitlementRepository(db.DB)

	// Outbound adapters
	turnstile, err := captcha.NewTurnstileVerifier(&captcha.Config{
		Secret:         cfg.Turnstile.Secret,
		Endpoint:       cfg.Turnstile.Endpoint,
		TimeoutSeconds: cfg.Turnstile.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to configure Turnstile verifier", zap.Error(err))
	}

	resend, err := email.NewResendClient(&email.Config{
		APIKey:         cfg.Email.APIKey,
		Endpoint:       cfg.Email.Endpoint,
		FromAddress:    cfg.Email.FromAddress,
		TimeoutSeconds: cfg.Email.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to configure email client", zap.Error(err))
	}

	adminDirectory, err := directory.NewAdminClient(&directory.Config{
		BaseURL:        cfg.Directory.BaseURL,
		ServiceKey:     cfg.Directory.ServiceKey,
		TimeoutSeconds: cfg.Directory.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to configure directory client", zap.Error(err))
	}

	stripeConfig := infrabilling.NewStripeConfig(&cfg.Stripe)
	stripeAdapter, err := infrabilling.NewStripeAdapter(stripeConfig, log)
	if err != nil {
		log.Fatal("Failed to configure Stripe adapter", zap.Error(err))
	}

	// Webhook idempotency: Redis when configured, otherwise the
	// webhook_events table so dedup survives restarts.
	var idempotency shared.IdempotencyStore
	if cfg.Redis.Enabled() {
		idempotency, err = cache.NewRedisIdempotencyStore(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Info("Webhook idempotency store: redis")
	} else {
		idempotency = persistence.NewGormWebhookEventStore(db.DB)
		log.Info("Webhook idempotency store: database")
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Application services
	hasher := contact.NewIdentityHasher(cfg.Contact.Pepper)

	submitService := contactapp.NewSubmitService(contactapp.SubmitServiceConfig{
		Artists:      artistRepo,
		Messages:     messageRepo,
		Blocklist:    blocklistRepo,
		Entitlements: entitlementRepo,
		Captcha:      turnstile,
		Sender:       resend,
		Directory:    adminDirectory,
		Hasher:       hasher,
		Limits:       contactapp.RateLimitsFromConfig(&cfg.Contact),
		Logger:       log,
	})

	inboxService := contactapp.NewArtistInboxService(artistRepo, messageRepo, blocklistRepo, hasher)

	checkoutService := billingapp.NewCheckoutService(artistRepo, stripeAdapter, adminDirectory, log)

	webhookService := billingapp.NewStripeWebhookService(billingapp.StripeWebhookServiceConfig{
		Config:      stripeConfig,
		Artists:     artistRepo,
		Idempotency: idempotency,
		Logger:      log,
	})

	jwtService := auth.NewJWTService(cfg.Auth)

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		globalLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimitByIP(globalLimiter))
	}

	// Liveness
	systemHandler := handler.NewSystemHandler(db, version)
	engine.GET("/healthz", systemHandler.Healthz)

	// API routes
	requireAuth := middleware.RequireAuth(jwtService)
	publicLimiter := middleware.NewRateLimiter(cfg.Contact.PublicRateLimit, cfg.Contact.PublicRateWindow)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewContactHandler(submitService, middleware.RateLimitByIP(publicLimiter)))
	r.Register(handler.NewArtistHandler(inboxService, requireAuth))
	r.Register(handler.NewBillingHandler(checkoutService, webhookService, requireAuth))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
