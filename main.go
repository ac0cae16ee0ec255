package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"catalog-service/cache"
	"catalog-service/config"
	"catalog-service/controllers"
	"catalog-service/database"
	"catalog-service/logger"
	"catalog-service/middleware"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/routes"
	"catalog-service/services"
	"catalog-service/tracer"
	"catalog-service/validation"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	// --- 1. Logging, tracing and metrics ---
	// Background flushers stop when bgCtx is cancelled during shutdown.
	bgCtx, stopBackground := context.WithCancel(context.Background())
	var flushers sync.WaitGroup

	var log *zap.Logger
	sink, sinkErr := aws_pkg.NewLogSink(bgCtx, cfg.ServiceName)
	if sinkErr == nil && sink.IsEnabled() {
		log, err = logger.InitializeWithWriter(cfg.Env, sink)
		flushers.Add(1)
		go func() {
			defer flushers.Done()
			sink.Run(bgCtx, 5*time.Second)
		}()
	} else {
		log, err = logger.Initialize(cfg.Env)
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	if sinkErr != nil {
		log.Warn("CloudWatch logs disabled", zap.Error(sinkErr))
	}

	tp, err := tracer.InitTracer(bgCtx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	var metrics aws_pkg.Recorder
	if mc, err := aws_pkg.NewMetricsClient(bgCtx); err != nil {
		log.Warn("CloudWatch metrics disabled", zap.Error(err))
	} else {
		metrics = mc
		flushers.Add(1)
		go func() {
			defer flushers.Done()
			mc.Run(bgCtx, time.Minute)
		}()
	}

	// --- 2. Storage ---
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	var store cache.Store
	if cfg.RedisURL != "" {
		client, err := cache.NewClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer client.Close()
			store = cache.NewManager(client, cfg.CacheTTL, log)
		}
	}

	var presigner aws_pkg.Presigner
	if cfg.MediaBucket != "" {
		awsCfg, err := aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			log.Warn("AWS config unavailable, media uploads disabled", zap.Error(err))
		} else {
			presigner = aws_pkg.NewS3Presigner(awsCfg, cfg.MediaBucket)
		}
	}

	// --- 3. Dependency Injection ---
	categoryRepo := repository.NewGormCategoryRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	productTypeRepo := repository.NewGormProductTypeRepository(db)
	brandRepo := repository.NewGormBrandRepository(db)
	attributeRepo := repository.NewGormAttributeRepository(db)
	valueRepo := repository.NewGormAttributeValueRepository(db)
	inventoryRepo := repository.NewGormInventoryRepository(db)
	mediaRepo := repository.NewGormMediaRepository(db)
	stockRepo := repository.NewGormStockRepository(db)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
	authService := services.NewAuthService(repository.NewGormAdminRepository(db), tokens, metrics, log)
	dashboardService := services.NewDashboardService(repository.NewGormStatsRepository(db), log)
	categoryService := services.NewCategoryService(categoryRepo, store, metrics, log)
	productService := services.NewProductService(productRepo, categoryRepo, store, metrics, log)
	inventoryService := services.NewInventoryService(services.InventoryDeps{
		Inventory:    inventoryRepo,
		Products:     productRepo,
		ProductTypes: productTypeRepo,
		Brands:       brandRepo,
		Values:       valueRepo,
		Stock:        stockRepo,
	}, metrics, log)
	mediaService := services.NewMediaService(mediaRepo, inventoryRepo, presigner, cfg.MediaKeyPrefix, log)

	c := &routes.Controllers{
		Admin:          controllers.NewAdminController(authService, dashboardService, tokens.TTL(), cfg.IsProduction()),
		Category:       controllers.NewCategoryController(categoryService),
		Product:        controllers.NewProductController(productService),
		ProductType:    controllers.NewCRUDController(services.NewProductTypeService(productTypeRepo, log), "product_type", "product_types"),
		Brand:          controllers.NewCRUDController(services.NewBrandService(brandRepo, log), "brand", "brands"),
		Attribute:      controllers.NewCRUDController(services.NewAttributeService(attributeRepo, log), "attribute", "attributes"),
		AttributeValue: controllers.NewAttributeValueController(services.NewAttributeValueService(valueRepo, attributeRepo, log)),
		Inventory:      controllers.NewInventoryController(inventoryService),
		Media:          controllers.NewMediaController(mediaService),
		Stock:          controllers.NewStockController(inventoryService),
	}

	// --- 4. HTTP Server & Middleware ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.RegisterGinValidators(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(logger.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware(metrics, cfg.ServiceName))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	routes.RegisterAdminRoutes(r, c, authService)
	routes.RegisterHealthRoutes(r, cfg.ServiceName)

	// --- 5. Graceful Shutdown ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("Catalog service starting", zap.String("port", cfg.Port), zap.String("db_driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down catalog service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if err := database.Close(); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}

	log.Info("Catalog service stopped gracefully")
	stopBackground()
	flushers.Wait()
}

