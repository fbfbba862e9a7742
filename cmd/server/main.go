package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cartapp "github.com/scentshop/backend/internal/application/cart"
	catalogapp "github.com/scentshop/backend/internal/application/catalog"
	identityapp "github.com/scentshop/backend/internal/application/identity"
	orderapp "github.com/scentshop/backend/internal/application/order"
	paymentapp "github.com/scentshop/backend/internal/application/payment"
	ratingapp "github.com/scentshop/backend/internal/application/rating"
	reportapp "github.com/scentshop/backend/internal/application/report"
	"github.com/scentshop/backend/internal/domain/shared"
	"github.com/scentshop/backend/internal/infrastructure/auth"
	"github.com/scentshop/backend/internal/infrastructure/cache"
	"github.com/scentshop/backend/internal/infrastructure/config"
	"github.com/scentshop/backend/internal/infrastructure/event"
	"github.com/scentshop/backend/internal/infrastructure/logger"
	"github.com/scentshop/backend/internal/infrastructure/payment"
	"github.com/scentshop/backend/internal/infrastructure/persistence"
	"github.com/scentshop/backend/internal/interfaces/http/handler"
	"github.com/scentshop/backend/internal/interfaces/http/middleware"
	"github.com/scentshop/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}()

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	attributeRepo := persistence.NewGormAttributeRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRecordRepo := persistence.NewGormPaymentRecordRepository(db.DB)
	ratingRepo := persistence.NewGormRatingRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Callback dedup state is shared across instances when Redis is on;
	// the in-memory store only covers single-instance deployments.
	var idemStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		idemStore = redisStore
		log.Info("using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
	} else {
		idemStore = cache.NewInMemoryIdempotencyStore()
		log.Info("using in-memory idempotency store")
	}
	defer func() {
		if err := idemStore.Close(); err != nil {
			log.Error("failed to close idempotency store", zap.Error(err))
		}
	}()

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(orderapp.NewLifecycleHandler(log))

	vnpayGateway, err := payment.NewVNPayAdapter(cfg.VNPay)
	if err != nil {
		log.Fatal("failed to initialize VNPay gateway", zap.Error(err))
	}

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService)
	productService := catalogapp.NewProductService(productRepo, categoryRepo)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	attributeService := catalogapp.NewAttributeService(attributeRepo)
	ratingService := ratingapp.NewService(ratingRepo, productRepo)
	cartService := cartapp.NewService(cartRepo, productRepo)
	orderService := orderapp.NewService(orderRepo, cartRepo, productRepo, vnpayGateway, eventBus)
	callbackService := paymentapp.NewCallbackService(orderRepo, paymentRecordRepo, idemStore, eventBus, log)
	callbackService.RegisterGateway(vnpayGateway)
	reportService := reportapp.NewService(reportRepo)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log

	router.Setup(engine, router.Handlers{
		Health:    handler.NewHealthHandler(db),
		Auth:      handler.NewAuthHandler(authService),
		Product:   handler.NewProductHandler(productService),
		Category:  handler.NewCategoryHandler(categoryService),
		Attribute: handler.NewAttributeHandler(attributeService),
		Rating:    handler.NewRatingHandler(ratingService),
		Cart:      handler.NewCartHandler(cartService),
		Order:     handler.NewOrderHandler(orderService),
		Payment:   handler.NewPaymentHandler(callbackService),
		Report:    handler.NewReportHandler(reportService),
	}, middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
