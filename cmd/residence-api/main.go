package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/residence-portal-api/api/swagger"
	"github.com/noah-isme/residence-portal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/residence-portal-api/internal/middleware"
	"github.com/noah-isme/residence-portal-api/internal/repository"
	"github.com/noah-isme/residence-portal-api/internal/service"
	"github.com/noah-isme/residence-portal-api/internal/websocket"
	"github.com/noah-isme/residence-portal-api/pkg/cache"
	"github.com/noah-isme/residence-portal-api/pkg/config"
	"github.com/noah-isme/residence-portal-api/pkg/database"
	"github.com/noah-isme/residence-portal-api/pkg/errtrack"
	"github.com/noah-isme/residence-portal-api/pkg/jobs"
	"github.com/noah-isme/residence-portal-api/pkg/logger"
	"github.com/noah-isme/residence-portal-api/pkg/mail"
	corsmiddleware "github.com/noah-isme/residence-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/residence-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/residence-portal-api/pkg/storage"
)

// @title Residence Portal API
// @version 1.0.0
// @description Request lifecycle engine for a student residence: guest visits, sleepovers, maintenance and complaints
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const exportSweepInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	reporter := errtrack.New(cfg)
	defer reporter.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr, reporter); err != nil {
		reporter.Critical(err, map[string]interface{}{"phase": "run"})
		logr.Error("server stopped with error", zap.Error(err))
		reporter.Flush()
		logr.Sync() //nolint:errcheck
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger, reporter errtrack.Reporter) error {
	store, db, err := openStore(ctx, cfg.Database, logr)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metricsSvc := service.NewMetricsService()
	loc := cfg.Analytics.Location()

	requestRepo := repository.NewRequestRepository(store)
	userRepo := repository.NewUserRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	codes := service.NewSecurityCodeService(repository.NewSettingsRepository(store), cfg.Security, nil, logr.Named("security"))
	if err := codes.Init(ctx); err != nil {
		return fmt.Errorf("load checkout pin: %w", err)
	}

	hub := websocket.NewHub(cfg.CORS.AllowedOrigins, logr.Named("ws"))
	go hub.Run(ctx)

	var dispatcher service.NotificationDispatcher
	var mailQueue *jobs.Queue
	if cfg.Notifications.DeliveryEnabled {
		sender := mail.NewSendGridSender(cfg.Mail.APIKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
		mailer := service.NewNotificationMailer(userRepo, sender, logr.Named("mailer"))
		mailQueue = jobs.NewQueue("notification_email", mailer.Handle, jobs.QueueConfig{
			Workers:    cfg.Notifications.Workers,
			MaxRetries: cfg.Notifications.MaxRetries,
			RetryDelay: cfg.Notifications.RetryDelay,
			JobTimeout: 15 * time.Second,
			OnGiveUp:   mailer.GiveUp,
			Logger:     logr.Named("jobs"),
		})
		mailer.SetQueue(mailQueue)
		metricsSvc.RegisterQueue("notification_email", mailQueue)
		mailQueue.Start(ctx)
		dispatcher = mailer
	}

	notifications := service.NewNotificationService(notificationRepo, hub, dispatcher, metricsSvc, logr.Named("notifications"))
	lifecycle := service.NewLifecycleService(requestRepo, notifications, codes, nil, logr.Named("lifecycle"),
		service.WithCommunicationLog(userRepo),
		service.WithLifecycleMetrics(metricsSvc),
		service.WithNotifyTimeout(cfg.RequestTimeout),
	)

	cacheRepo := repository.NewCacheRepository(redisClient, logr.Named("cache"))
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr.Named("cache"), redisClient != nil)
	analytics := service.NewAnalyticsService(requestRepo, cacheSvc, metricsSvc, loc, cfg.Analytics.CacheTTL, logr.Named("analytics"))
	reports := service.NewReportService(requestRepo, loc)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return fmt.Errorf("prepare export storage: %w", err)
	}
	exports := service.NewExportService(reports, files, repository.NewExportRepository(store),
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL), cfg.APIPrefix, logr.Named("exports"))
	go sweepExports(ctx, exports, cfg.Exports.SignedURLTTL, logr)

	checks := map[string]handler.Pinger{
		"store": store,
		"checkout_pin": readyFunc(func(context.Context) error {
			if !codes.Initialized() {
				return errors.New("checkout pin not loaded")
			}
			return nil
		}),
	}
	if redisClient != nil {
		checks["redis"] = cacheRepo
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(reqidmiddleware.Middleware())
	r.Use(internalmiddleware.Recovery(reporter, logr))
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.ReportErrors(reporter))

	handler.NewMetricsHandler(metricsSvc, checks).RegisterProbes(r)

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.Timeout(cfg.RequestTimeout))
	handler.Routes{
		Auth:          handler.NewAuthHandler(),
		Requests:      handler.NewRequestHandler(lifecycle, loc),
		Notifications: handler.NewNotificationHandler(notifications, hub, logr.Named("ws")),
		Announcements: handler.NewAnnouncementHandler(service.NewAnnouncementService(repository.NewAnnouncementRepository(store), nil, logr.Named("announcements"))),
		Users:         handler.NewUserHandler(service.NewUserService(userRepo, notifications, nil, logr.Named("users"))),
		Analytics:     handler.NewAnalyticsHandler(analytics),
		Reports:       handler.NewReportHandler(reports, exports, logr.Named("exports")),
		Security:      handler.NewSecurityHandler(codes),
	}.Register(api, service.NewAuthService(cfg.JWT))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("store", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	if mailQueue != nil {
		mailQueue.Stop()
	}
	return nil
}

// openStore returns the document store for the configured driver. db is nil for the memory driver.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logr *zap.Logger) (repository.DocumentStore, *sqlx.DB, error) {
	if cfg.Driver == config.DriverMemory {
		logr.Warn("using in-memory document store, data is lost on restart")
		return repository.NewMemoryDocumentStore(), nil, nil
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	store, err := repository.NewSQLDocumentStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

func sweepExports(ctx context.Context, exports *service.ExportService, ttl time.Duration, logr *zap.Logger) {
	ticker := time.NewTicker(exportSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := exports.Cleanup(ttl); err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
			}
		}
	}
}

type readyFunc func(ctx context.Context) error

func (f readyFunc) Ping(ctx context.Context) error { return f(ctx) }
