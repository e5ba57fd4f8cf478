package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/nippo-hub/nippo-api/api/swagger"
	"github.com/nippo-hub/nippo-api/internal/client"
	"github.com/nippo-hub/nippo-api/internal/handler"
	appmiddleware "github.com/nippo-hub/nippo-api/internal/middleware"
	"github.com/nippo-hub/nippo-api/internal/repository"
	"github.com/nippo-hub/nippo-api/internal/service"
	"github.com/nippo-hub/nippo-api/pkg/cache"
	"github.com/nippo-hub/nippo-api/pkg/config"
	"github.com/nippo-hub/nippo-api/pkg/database"
	"github.com/nippo-hub/nippo-api/pkg/dateutil"
	"github.com/nippo-hub/nippo-api/pkg/jobs"
	"github.com/nippo-hub/nippo-api/pkg/logger"
	corsmiddleware "github.com/nippo-hub/nippo-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nippo-hub/nippo-api/pkg/middleware/requestid"
	"github.com/nippo-hub/nippo-api/pkg/storage"
)

// @title Nippo API
// @version 0.1.0
// @description Daily activity report service: schedule reconciliation, draft editing and submission
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, calendar cache disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Calendar.CacheTTL, logr, false)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Calendar.CacheTTL, logr, true)
	}

	resolver, err := dateutil.NewResolver(cfg.Report.Timezone, nil)
	if err != nil {
		logr.Sugar().Fatalw("failed to load report timezone", "error", err)
	}

	archive, err := storage.NewExportArchive(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export archive", "error", err)
	}
	archiveQueue := jobs.NewQueue[service.ExportJob]("export-archive", func(_ context.Context, job jobs.Job[service.ExportJob]) error {
		_, err := archive.Save(job.Payload.Filename, job.Payload.Payload)
		return err
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	archiveQueue.Start(context.Background())
	defer archiveQueue.Stop()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if deleted, err := archive.CleanupOlderThan(cfg.Export.Retention); err != nil {
				logr.Sugar().Warnw("export archive cleanup failed", "error", err)
			} else if len(deleted) > 0 {
				logr.Sugar().Infow("export archive cleaned", "deleted", len(deleted))
			}
		}
	}()

	calendarClient := client.NewCalendarClient(cfg.Calendar, logr)
	draftRepo := repository.NewDraftRepository(db, metricsSvc)

	sessions := service.NewSessionService(
		calendarClient,
		draftRepo,
		draftRepo,
		draftRepo,
		cacheSvc,
		resolver,
		cfg.Report,
		cfg.Session,
		nil,
		validator.New(),
		metricsSvc,
		archiveQueue,
		logr,
	)

	sessionHandler := handler.NewSessionHandler(sessions)
	eventHandler := handler.NewEventHandler(sessions)
	reportHandler := handler.NewReportHandler(sessions)
	lookupHandler := handler.NewLookupHandler(sessions, resolver)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(appmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"metrics": metricsSvc.Snapshot()})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/sessions", sessionHandler.Create)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.DELETE("/sessions/:id", sessionHandler.Delete)
		api.POST("/sessions/:id/refresh", sessionHandler.Refresh)
		api.POST("/sessions/:id/reset", sessionHandler.Reset)
		api.POST("/sessions/:id/save", sessionHandler.Save)
		api.POST("/sessions/:id/submit", sessionHandler.Submit)
		api.GET("/sessions/:id/export", sessionHandler.Export)

		api.POST("/sessions/:id/events", eventHandler.Add)
		api.PATCH("/sessions/:id/events/:eventId", eventHandler.Edit)
		api.DELETE("/sessions/:id/events/:eventId", eventHandler.Remove)

		api.PUT("/sessions/:id/report", reportHandler.Set)
		api.POST("/sessions/:id/report/quick-insert", reportHandler.QuickInsert)

		api.GET("/time-options", lookupHandler.TimeOptions)
		api.GET("/dates", lookupHandler.ResolveDate)
		api.GET("/templates", lookupHandler.Templates)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
