package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/gtuventures/ventures-backend/docs"
	"github.com/gtuventures/ventures-backend/internal/config"
	"github.com/gtuventures/ventures-backend/internal/database"
	"github.com/gtuventures/ventures-backend/internal/handler"
	"github.com/gtuventures/ventures-backend/internal/jobs"
	"github.com/gtuventures/ventures-backend/internal/middleware"
	"github.com/gtuventures/ventures-backend/internal/migration"
	"github.com/gtuventures/ventures-backend/internal/repository"
	"github.com/gtuventures/ventures-backend/internal/routes"
	"github.com/gtuventures/ventures-backend/internal/service"
	pkgcache "github.com/gtuventures/ventures-backend/pkg/cache"
	pkges "github.com/gtuventures/ventures-backend/pkg/elasticsearch"
	"github.com/gtuventures/ventures-backend/pkg/jwt"
	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
	pkgredis "github.com/gtuventures/ventures-backend/pkg/redis"
	pkgstorage "github.com/gtuventures/ventures-backend/pkg/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// @title           GTU Ventures CMS API
// @version         1.0
// @description     Content management backend for the GTU Ventures website
//
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV
func getConfigPath(env string) string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	dotenvFiles := config.LoadDotEnv(env)

	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	cfg, err := config.Load(getConfigPath(env))
	if err != nil {
		pkglogger.GetLogger().Fatal().Err(err).Msg("failed to load config")
	}
	config.LogResolved(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		pkglogger.GetLogger().Fatal().Err(err).Msg("server stopped with error")
	}
	pkglogger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := migration.Run(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisClient := connectRedis(ctx, cfg.Redis)
	cacheService := pkgcache.NewService(redisClient)

	store, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	contentRepo := repository.NewContentRepository(db)
	tenderRepo := repository.NewTenderRepository(db)
	homepageRepo := repository.NewHomepageRepository(db)

	search := service.NewSearchService(connectElasticsearch(cfg.Elasticsearch), cfg.Elasticsearch.IndexPrefix, contentRepo, tenderRepo)
	if err := search.EnsureIndex(ctx); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("search index unavailable, using database search")
	}

	contentService := service.NewContentService(contentRepo, store, cacheService, search)
	tenderService := service.NewTenderService(tenderRepo, store, cacheService, search)
	homepageService := service.NewHomepageService(homepageRepo, store, cacheService)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpiresIn)*time.Second)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.SplitOrigins(),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.InputSanitizer())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.Storage.Driver == config.StorageLocal && strings.HasPrefix(cfg.Storage.PublicBaseURL, "/") {
		router.Static(cfg.Storage.PublicBaseURL, cfg.Storage.LocalRoot)
	}

	var rateLimitRedis *redis.Client
	if !cfg.IsDevelopment() {
		rateLimitRedis = redisClient
	}
	routes.Setup(router, routes.Handlers{
		Content:  handler.NewContentHandler(contentService),
		Tender:   handler.NewTenderHandler(tenderService),
		Homepage: handler.NewHomepageHandler(homepageService),
		Public:   handler.NewPublicHandler(contentService, tenderService, homepageService),
		Search:   handler.NewSearchHandler(search),
		Health:   handler.NewHealthHandler(db, cacheService),
	}, jwtManager, routes.Options{
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		RateLimit:      middleware.DefaultRateLimitConfig(),
		Redis:          rateLimitRedis,
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_FOUND", "message": "Route not found"},
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pkglogger.Info("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pkglogger.Info("shutting down")
		if redisClient != nil {
			defer redisClient.Close()
		}
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		reportDBStats(gctx, db)
		return nil
	})

	if cfg.Scheduler.AutoPublish {
		publisher := jobs.NewPublisher(contentRepo, tenderRepo, cacheService, search)
		if _, err := jobs.SchedulePublishing(gctx, publisher, cfg.Scheduler.Spec); err != nil {
			return fmt.Errorf("schedule publishing: %w", err)
		}
		pkglogger.Info("scheduled publishing enabled (%s)", cfg.Scheduler.Spec)
	}

	return g.Wait()
}

// connectRedis returns nil when Redis is disabled or unreachable; the cache
// and rate limiter then pass through.
func connectRedis(ctx context.Context, rc config.RedisConfig) *redis.Client {
	if !rc.Enabled {
		return nil
	}
	client, err := pkgredis.NewClient(ctx, pkgredis.Options{
		Host:     rc.Host,
		Port:     rc.Port,
		Password: rc.Password,
		DB:       rc.DB,
		PoolSize: rc.PoolSize,
	})
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("redis unavailable, continuing without cache")
		return nil
	}
	pkglogger.Info("Connected to Redis")
	return client
}

func connectElasticsearch(ec config.ElasticsearchConfig) *pkges.Client {
	if !ec.Enabled || len(ec.Addresses) == 0 {
		return nil
	}
	client, err := pkges.NewClient(ec.Addresses, ec.Username, ec.Password)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("elasticsearch unavailable, continuing with database search")
		return nil
	}
	pkglogger.Info("Connected to Elasticsearch")
	return client
}

func newStorage(ctx context.Context, sc config.StorageConfig) (pkgstorage.Storage, error) {
	switch sc.Driver {
	case config.StorageS3:
		return pkgstorage.NewS3Storage(pkgstorage.S3Config{
			Endpoint:        sc.Endpoint,
			Region:          sc.Region,
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
			Bucket:          sc.Bucket,
			CDNURL:          sc.CDNURL,
			BasePath:        sc.BasePath,
			ForcePathStyle:  sc.ForcePathStyle,
		})
	case config.StorageMinIO:
		return pkgstorage.NewMinioStorage(ctx, pkgstorage.MinioConfig{
			Endpoint:        sc.Endpoint,
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
			UseSSL:          sc.UseSSL,
			Bucket:          sc.Bucket,
			Region:          sc.Region,
			PublicBaseURL:   sc.PublicBaseURL,
		})
	default:
		return pkgstorage.NewLocalStorage(sc.LocalRoot, sc.PublicBaseURL)
	}
}

// reportDBStats feeds the open connection gauge until ctx is done
func reportDBStats(ctx context.Context, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			middleware.SetDBConnectionsOpen(sqlDB.Stats().OpenConnections)
		}
	}
}
