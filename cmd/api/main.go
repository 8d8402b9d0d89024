package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leadforge/leadforge/config"
	"github.com/leadforge/leadforge/pkg/ai/llm"
	"github.com/leadforge/leadforge/pkg/api/handlers"
	"github.com/leadforge/leadforge/pkg/auth"
	"github.com/leadforge/leadforge/pkg/cache"
	"github.com/leadforge/leadforge/pkg/campaigns"
	"github.com/leadforge/leadforge/pkg/database"
	"github.com/leadforge/leadforge/pkg/enrichment"
	"github.com/leadforge/leadforge/pkg/export"
	"github.com/leadforge/leadforge/pkg/jobs"
	"github.com/leadforge/leadforge/pkg/leads"
	"github.com/leadforge/leadforge/pkg/metrics"
	custommiddleware "github.com/leadforge/leadforge/pkg/middleware"
	"github.com/leadforge/leadforge/pkg/outreach"
	"github.com/leadforge/leadforge/pkg/scoring"
	"github.com/leadforge/leadforge/pkg/settings"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database (PostgreSQL when DATABASE_URL is set, SQLite otherwise)
	db, err := database.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	// Redis is an optional settings cache; the server runs without it
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️  Redis unavailable, settings cache disabled: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Services
	settingsSvc := settings.NewService(db, redisClient)
	settingsSvc.SetMetrics(prometheusMetrics)

	// LLM client backing both email generation and enrichment extraction.
	// The env key wins; the settings store is the fallback.
	openAIKey := cfg.OpenAIAPIKey
	if openAIKey == "" {
		if stored, err := settingsSvc.Get(context.Background(), settings.KeyOpenAIAPIKey); err == nil {
			openAIKey = stored
		}
	}
	llmClient := llm.NewOpenAIClient(llm.Config{
		APIKey: openAIKey,
		Model:  cfg.OpenAIModel,
	}, nil)
	generator := llm.NewGenerator(llmClient)
	generator.SetMetrics(prometheusMetrics)

	scoringSvc := scoring.NewService(db)
	leadsSvc := leads.NewService(db)
	exportSvc := export.NewService(db)
	authSvc := auth.NewService(cfg.JWTSecret, cfg.AdminPasswordHash, cfg.JWTExpirationHours)

	enrichmentSvc := enrichment.NewService(db, enrichment.NewHTTPFetcher(), generator, scoringSvc, nil)
	enrichmentSvc.SetMetrics(prometheusMetrics)

	campaignsSvc := campaigns.NewService(db, settingsSvc, generator, nil)
	campaignsSvc.SetMetrics(prometheusMetrics)

	outreachSvc := outreach.NewService(db, settingsSvc, generator, nil)
	outreachSvc.SetMetrics(prometheusMetrics)

	// Handlers
	authHandler := handlers.NewAuthHandler(authSvc, prometheusMetrics)
	leadHandler := handlers.NewLeadHandler(leadsSvc, scoringSvc)
	campaignHandler := handlers.NewCampaignHandler(campaignsSvc)
	outreachHandler := handlers.NewOutreachHandler(outreachSvc)
	enrichmentHandler := handlers.NewEnrichmentHandler(enrichmentSvc)
	settingsHandler := handlers.NewSettingsHandler(settingsSvc)
	exportHandler := handlers.NewExportHandler(exportSvc, prometheusMetrics)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Rate limiters: a global one plus a tighter one for login attempts
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2)

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Public endpoints
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"name":   "LeadForge API",
			"status": "ok",
		})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login, authRateLimiter.RateLimitMiddleware())

	// Everything else requires the operator token. With no admin password
	// hash configured the API runs open, which is the local dev setup.
	protected := api.Group("")
	if cfg.AdminPasswordHash != "" {
		protected.Use(auth.Middleware(authSvc))
	} else {
		log.Printf("⚠️  ADMIN_PASSWORD_HASH not set, API auth disabled")
	}

	protected.GET("/leads", leadHandler.Search)
	protected.POST("/leads", leadHandler.Create)
	protected.POST("/leads/bulk-enrich", enrichmentHandler.BulkEnrich)
	protected.POST("/leads/bulk-email", outreachHandler.BulkEmail)
	protected.GET("/leads/:id", leadHandler.Get)
	protected.PUT("/leads/:id", leadHandler.Update)
	protected.DELETE("/leads/:id", leadHandler.Delete)
	protected.POST("/leads/:id/reply", leadHandler.RecordReply)
	protected.POST("/leads/:id/rescore", leadHandler.Rescore)
	protected.POST("/leads/:id/enrich", enrichmentHandler.Enrich)
	protected.POST("/leads/:id/pitch", outreachHandler.Pitch)
	protected.POST("/leads/:id/follow-up", outreachHandler.FollowUp)

	protected.POST("/campaigns", campaignHandler.Create)
	protected.GET("/campaigns", campaignHandler.List)
	protected.GET("/campaigns/:id", campaignHandler.Get)
	protected.POST("/campaigns/:id/send", campaignHandler.Send)
	protected.POST("/campaigns/:id/preview", campaignHandler.Preview)
	protected.POST("/campaigns/:id/send-previews", campaignHandler.SendPreviews)
	protected.POST("/campaigns/:id/leads", campaignHandler.AddLeads)
	protected.DELETE("/campaigns/:id/leads/:leadId", campaignHandler.RemoveLead)

	protected.GET("/enrichment/stats", enrichmentHandler.Stats)
	protected.GET("/settings", settingsHandler.Get)
	protected.PUT("/settings", settingsHandler.Update)
	protected.GET("/export/leads", exportHandler.Leads)

	// Background jobs
	var cronManager *jobs.CronManager
	if cfg.JobsEnabled {
		cronManager = jobs.NewCronManager(scoringSvc, campaignsSvc, enrichmentSvc, nil)
		if err := cronManager.SetupJobs(); err != nil {
			log.Fatalf("❌ Failed to set up cron jobs: %v", err)
		}
		cronManager.Start()
	} else {
		log.Printf("ℹ️  Background jobs disabled")
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 LeadForge API starting on %s", address)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d), login 5/min", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if cronManager != nil {
		cronManager.Stop()
		log.Println("✅ Cron jobs stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
