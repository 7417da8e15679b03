package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"bikeserve/config"
	bgjobs "bikeserve/cron"
	"bikeserve/database"
	outboxRepo "bikeserve/database/repository/outbox"
	"bikeserve/handlers"
	"bikeserve/middleware"
	"bikeserve/routes"
	"bikeserve/services/api"
	"bikeserve/services/auth"
	"bikeserve/services/booking"
	"bikeserve/services/location"
	"bikeserve/services/notification"
	"bikeserve/services/reconcile"
	"bikeserve/services/session"
	"bikeserve/services/storage"
	"bikeserve/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := utils.InitCache(); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	cache := utils.GetSessionCacheClient()

	// The outbox is optional: without MongoDB, offline creates are served but never replayed.
	var outbox outboxRepo.OutboxRepository
	if err := database.InitDB(); err != nil {
		logger.Warn("main: MongoDB unavailable, pending-sync outbox disabled", zap.Error(err))
	} else {
		repo, err := outboxRepo.NewMongoOutboxRepo(database.Database())
		if err != nil {
			logger.Sugar().Fatalf("main: failed to prepare outbox collection: %v", err)
		}
		outbox = repo
	}

	loc := cfg.Location()

	// Upstream marketplace.
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout(), logger.Named("api"))
	var pending api.PendingRecorder
	if outbox != nil {
		pending = outbox
	}
	marketplace := api.NewMarketplaceService(client, api.NewFallbackPolicy(cfg.FallbackResourceList()), pending, logger.Named("marketplace"))

	sessions := session.NewService(session.NewRedisStore(cache, cfg.SessionTTL()), cfg.SessionTTL(), logger.Named("session"))

	// Push notifications go through the asynq queue.
	queueOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
	queue := asynq.NewClient(queueOpts)
	defer queue.Close()

	var sender notification.PushSender
	if fcm, err := utils.NewFCMClient(context.Background(), cfg.FirebaseCredentialsFile); err != nil {
		logger.Warn("main: push notifications disabled", zap.Error(err))
	} else {
		sender = fcm
	}
	notificationService := notification.NewDefaultNotificationService(sender, logger.Named("notification"))
	enqueuer := notification.NewTaskEnqueuer(queue, loc, cfg.ReminderLead(), logger.Named("enqueuer"))

	worker := bgjobs.NewBookingWorker(queueOpts, notificationService, logger.Named("worker"))
	worker.Start()

	// Booking wizard.
	flows := booking.NewFlowService(
		marketplace,
		booking.NewRedisDraftStore(cache, cfg.DraftTTL()),
		cfg.PromoCode,
		cfg.DuplicateBookingMatch,
		enqueuer,
		logger.Named("booking"),
	)
	flows.Now = func() time.Time { return time.Now().In(loc) }
	if outbox != nil {
		flows.LocalIDs = outbox
	}

	var scheduler *bgjobs.Scheduler
	if outbox != nil {
		reconciler := reconcile.NewReconciler(outbox, marketplace, sessions, logger.Named("reconcile"))
		s, err := bgjobs.NewScheduler(reconciler, cfg.ReconcileSchedule, logger.Named("scheduler"))
		if err != nil {
			logger.Sugar().Fatalf("main: invalid RECONCILE_SCHEDULE %q: %v", cfg.ReconcileSchedule, err)
		}
		scheduler = s
		scheduler.Start()
	}

	var uploader storage.Uploader
	if cld, err := utils.Cloudinary(cfg); err != nil {
		logger.Warn("main: vehicle photo uploads disabled", zap.Error(err))
	} else {
		uploader = &cld.Upload
	}
	photos := storage.NewPhotoService(uploader, cfg.CloudinaryFolder, logger.Named("storage"))

	var geocoder location.Geocoder
	if cfg.GeocoderURL != "" {
		geocoder = location.NewNominatimGeocoder(cfg.GeocoderURL, cfg.GeocoderUserAgent, 30*time.Second)
	}
	resolver := location.NewResolver(geocoder, marketplace, sessions, logger.Named("location"))

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	health := &utils.HealthMonitor{Redis: cache, Mongo: database.MongoClient, Upstream: client}
	health.Start(monitorCtx, 30*time.Second)

	handlerBundle := &handlers.HandlerBundle{
		Auth:     sessions,
		Session:  handlers.NewSessionHandler(sessions),
		Login:    handlers.NewAuthHandler(auth.NewOTPService(marketplace, sessions, logger.Named("auth"))),
		Location: handlers.NewLocationHandler(resolver),
		Catalog:  handlers.NewCatalogHandler(marketplace),
		Profile:  handlers.NewProfileHandler(marketplace, photos),
		Booking:  handlers.NewBookingHandler(flows),
		Health:   handlers.NewHealthHandler(health),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	worker.Shutdown()
	if database.MongoClient != nil {
		if err := database.MongoClient.Disconnect(ctx); err != nil {
			logger.Warn("main: MongoDB disconnect failed", zap.Error(err))
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warn("main: Redis close failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
