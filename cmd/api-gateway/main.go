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

	"github.com/noah-isme/smk-presensi-api/internal/handler"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	"github.com/noah-isme/smk-presensi-api/internal/notifier"
	"github.com/noah-isme/smk-presensi-api/internal/repository"
	"github.com/noah-isme/smk-presensi-api/internal/service"
	"github.com/noah-isme/smk-presensi-api/pkg/cache"
	"github.com/noah-isme/smk-presensi-api/pkg/config"
	"github.com/noah-isme/smk-presensi-api/pkg/database"
	"github.com/noah-isme/smk-presensi-api/pkg/jobs"
	"github.com/noah-isme/smk-presensi-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/smk-presensi-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/smk-presensi-api/pkg/middleware/requestid"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The dashboard degrades to uncached reads without Redis.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	people := repository.NewPersonRepository(db)
	windowConfigs := repository.NewWindowConfigRepository(db)
	holidays := repository.NewHolidayRepository(db)
	schedules := repository.NewSecurityScheduleRepository(db)
	ledger := repository.NewAttendanceRepository(db)
	leaves := repository.NewLeaveRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	defaultLateCutoff := models.NewClock(8, 0, 0)
	if parsed, err := models.ParseClock(cfg.Jobs.DefaultLateCutoff); err == nil {
		defaultLateCutoff = parsed
	}

	metrics := service.NewMetricsService()
	windows := service.NewWindowService(windowConfigs, holidays, schedules, logr)

	// The queue's handler needs the notification service, which in turn
	// enqueues through the queue.
	var notifications *service.NotificationService
	queue := jobs.NewQueue("notifications", func(ctx context.Context, job jobs.Job) error {
		return notifications.HandleMessage(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.NotifyWorkers,
		BufferSize: cfg.Jobs.NotifyBuffer,
		MaxRetries: cfg.Jobs.NotifyRetries,
		Logger:     logr,
	})

	var sender notifier.Sender
	if cfg.Notifier.Enabled {
		sender = notifier.NewFonnteClient(cfg.Notifier.BaseURL, cfg.Notifier.Token, cfg.Notifier.Timeout, logr)
	}
	notifications = service.NewNotificationService(sender, queue, people, ledger, windows, windowConfigs, logr, service.NotificationServiceConfig{
		Enabled:           cfg.Notifier.Enabled,
		DefaultLateCutoff: defaultLateCutoff,
	})

	dashboard := service.NewDashboardService(ledger, people, windowConfigs, holidays, cacheRepo, logr, service.DashboardServiceConfig{
		CacheTTL:          cfg.Dashboard.CacheTTL,
		DefaultLateCutoff: defaultLateCutoff,
	})

	attendance := service.NewAttendanceService(ledger, people, windows, notifications, dashboard, metrics, nil, logr)
	reports := service.NewReportService(windowConfigs, holidays, schedules, ledger, people, metrics, logr)
	exports := service.NewExportService(reports, nil, nil, nil, logr)
	schedule := service.NewScheduleService(schedules, people, nil, logr)
	settings := service.NewSettingsService(windowConfigs, holidays, nil, logr)
	leave := service.NewLeaveService(leaves, people, attendance, nil, logr)

	queue.Start(ctx)
	defer queue.Stop()

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.SetQueueDepth(queue.Depth())
			}
		}
	}()

	if cfg.Jobs.LateSweepEnabled {
		sweep := jobs.NewDailyTask("late-sweep", notifications.LateFireAt, notifications.LateSweep, logr)
		sweep.Start(ctx)
		defer sweep.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handler.Handlers{
		Attendance: handler.NewAttendanceHandler(attendance),
		Reports:    handler.NewReportHandler(reports, exports),
		Dashboard:  handler.NewDashboardHandler(dashboard),
		Settings:   handler.NewSettingsHandler(settings),
		Schedule:   handler.NewScheduleHandler(schedule),
		Leave:      handler.NewLeaveHandler(leave),
		Metrics:    metrics.Handler(),
	}.Register(r, cfg.APIPrefix)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
