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

	appcart "github.com/feria/backend/internal/application/cart"
	appcatalog "github.com/feria/backend/internal/application/catalog"
	appfair "github.com/feria/backend/internal/application/fair"
	appidentity "github.com/feria/backend/internal/application/identity"
	apppayment "github.com/feria/backend/internal/application/payment"
	"github.com/feria/backend/internal/domain/identity"
	domainpayment "github.com/feria/backend/internal/domain/payment"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/feria/backend/internal/infrastructure/auth"
	"github.com/feria/backend/internal/infrastructure/cache"
	infracatalog "github.com/feria/backend/internal/infrastructure/catalog"
	"github.com/feria/backend/internal/infrastructure/config"
	"github.com/feria/backend/internal/infrastructure/logger"
	infrapayment "github.com/feria/backend/internal/infrastructure/payment"
	"github.com/feria/backend/internal/infrastructure/persistence"
	"github.com/feria/backend/internal/infrastructure/telemetry"
	"github.com/feria/backend/internal/interfaces/http/handler"
	"github.com/feria/backend/internal/interfaces/http/middleware"
	"github.com/feria/backend/internal/interfaces/http/router"
)

// @title Feria Backend API
// @version 1.0
// @description Point-of-sale backend for multi-tenant fairs: fair lifecycle, shared carts, sale submission and payment reconciliation.

// @contact.name API Support

// @license.name MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	// Distributed tracing; a no-op provider when telemetry is disabled
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Warn("Tracer provider shutdown failed", zap.Error(err))
		}
	}()

	// Initialize database with GORM logging routed through zap
	gormLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLevel,
		logger.WithSlowThreshold(200*time.Millisecond))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	fairRepo := persistence.NewGormFairRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	recordRepo := persistence.NewGormPaymentRecordRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Redis-backed stores, falling back to in-memory outside production
	storeFactory := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"))

	cartStore, err := storeFactory.CreateCartStore()
	if err != nil {
		log.Fatal("Failed to create cart store", zap.Error(err))
	}
	idempotencyStore, err := storeFactory.CreateIdempotencyStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Token infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Failed to connect to Redis token blacklist", zap.Error(err))
		}
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
	}

	// Product catalog client
	productAPI, err := infracatalog.NewGraphQLProductAPI(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	if err != nil {
		log.Fatal("Failed to create catalog client", zap.Error(err))
	}
	catalogLoader := appcatalog.NewLoader(productAPI, cfg.Catalog.PageSize, log)

	// Payment gateway and optional bookkeeping mirror
	gateway, err := infrapayment.NewRedPayAdapter(&infrapayment.RedPayConfig{
		BaseURL:     cfg.Gateway.BaseURL,
		MerchantKey: cfg.Gateway.MerchantKey,
		Timeout:     cfg.Gateway.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to create payment gateway adapter", zap.Error(err))
	}
	var mirror domainpayment.MirrorClient
	if cfg.Mirror.Enabled {
		mirrorClient, err := infrapayment.NewHTTPMirrorClient(cfg.Mirror.Endpoint, cfg.Mirror.Timeout)
		if err != nil {
			log.Fatal("Failed to create mirror client", zap.Error(err))
		}
		mirror = mirrorClient
	}

	// Application services
	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, log)
	cartService := appcart.NewService(cartStore, log)
	fairService := appfair.NewFairService(fairRepo, saleRepo, log)
	saleService := appfair.NewSaleService(fairRepo, saleRepo, cartService, catalogLoader, log)
	reconciler := apppayment.NewReconciler(apppayment.ReconcilerConfig{
		Gateway:          gateway,
		Records:          recordRepo,
		Sales:            saleRepo,
		Mirror:           mirror,
		IdempotencyStore: idempotencyStore,
		Idempotency:      shared.DefaultIdempotencyConfig(),
		Logger:           log,
	})

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	fairHandler := handler.NewFairHandler(fairService)
	saleHandler := handler.NewSaleHandler(saleService)
	cartHandler := handler.NewCartHandler(cartService)
	catalogHandler := handler.NewCatalogHandler(catalogLoader)
	paymentHandler := handler.NewPaymentHandler(reconciler, recordRepo)
	systemHandler := handler.NewSystemHandler()

	// Gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", healthHandler(db, log))

	// JWT auth applies to everything past this point; the skip lists keep
	// login, refresh and the gateway return redirect reachable
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	jwtConfig.SkipPaths = append(jwtConfig.SkipPaths, "/api/v1/system/ping", "/api/v1/system/info")
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	authGroup := router.NewDomainGroup("auth", "/auth").
		POST("/login", authHandler.Login).
		POST("/refresh", authHandler.RefreshToken).
		POST("/logout", authHandler.Logout).
		GET("/me", authHandler.GetCurrentUser).
		PUT("/password", authHandler.ChangePassword).
		POST("/register", middleware.RequireRole(string(identity.RoleAdmin)), authHandler.RegisterUser)
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authGroup.Use(middleware.AuthRateLimit(authLimiter))
	}

	fairGroup := router.NewDomainGroup("fairs", "/fairs").
		POST("", fairHandler.Create).
		GET("", fairHandler.List).
		GET("/:id", fairHandler.Get).
		POST("/:id/close", fairHandler.Close).
		GET("/:id/summary", fairHandler.Summary).
		GET("/:id/cart", cartHandler.Get).
		PUT("/:id/cart/items", cartHandler.SetQuantity).
		POST("/:id/cart/items/increment", cartHandler.Increment).
		POST("/:id/cart/items/decrement", cartHandler.Decrement).
		PUT("/:id/cart/payment-method", cartHandler.SetPaymentMethod).
		PUT("/:id/cart/customer", cartHandler.SetCustomer).
		DELETE("/:id/cart", cartHandler.Clear).
		POST("/:id/sales", saleHandler.Submit).
		GET("/:id/sales", saleHandler.List)

	catalogGroup := router.NewDomainGroup("catalog", "/sellers").
		GET("/:seller_id/products", catalogHandler.ListProducts).
		POST("/:seller_id/products/refresh", catalogHandler.RefreshProducts)

	paymentGroup := router.NewDomainGroup("payments", "/payments").
		GET("/return", paymentHandler.HandleReturn).
		GET("/:reference", paymentHandler.GetStatus)

	systemGroup := router.NewDomainGroup("system", "/system").
		GET("/ping", systemHandler.Ping).
		GET("/info", systemHandler.GetSystemInfo)

	r.Register(authGroup).
		Register(fairGroup).
		Register(catalogGroup).
		Register(paymentGroup).
		Register(systemGroup)
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
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown", zap.Error(err))
	}

	// Let in-flight bookkeeping reports finish before the process exits
	reconciler.Drain()
	log.Info("Server stopped")
}

// healthHandler reports process and database health
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
