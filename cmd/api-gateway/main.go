package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/grc-api/api/swagger"
	"github.com/noah-isme/grc-api/internal/handler"
	"github.com/noah-isme/grc-api/internal/middleware"
	"github.com/noah-isme/grc-api/internal/models"
	"github.com/noah-isme/grc-api/internal/repository"
	"github.com/noah-isme/grc-api/internal/service"
	"github.com/noah-isme/grc-api/pkg/cache"
	"github.com/noah-isme/grc-api/pkg/config"
	"github.com/noah-isme/grc-api/pkg/database"
	"github.com/noah-isme/grc-api/pkg/jobs"
	"github.com/noah-isme/grc-api/pkg/logger"
	"github.com/noah-isme/grc-api/pkg/middleware/cors"
	"github.com/noah-isme/grc-api/pkg/middleware/requestid"
	"github.com/noah-isme/grc-api/pkg/storage"
)

// @title Grade Contestation API
// @version 1.0
// @description Workflow service for student grade contestation requests.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(fmt.Sprintf("init logger: %v", err))
	}
	defer log.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// reference lookups fall back to the database
		log.Warn("redis unavailable, running without reference cache", zap.Error(err))
		redisClient = nil
	}

	files, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		log.Fatal("attachment storage init failed", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL)

	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	referenceRepo := repository.NewReferenceRepository(db, redisClient, cfg.Reference.CacheTTL, log)
	userRepo := repository.NewUserRepository(db)

	metrics := service.NewMetricsService()

	notifications := service.NewNotificationService(notificationRepo, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	}, log)

	authService := service.NewAuthService(userRepo, cfg.JWT, log)
	identityService := service.NewIdentityService(referenceRepo, log)
	referenceService := service.NewReferenceService(referenceRepo)
	requestService := service.NewRequestService(requestRepo, referenceRepo, notifications, log,
		service.WithTransitionObserver(metrics))
	attachmentService := service.NewAttachmentService(attachmentRepo, requestRepo, files, signer,
		service.AttachmentConfig{
			MaxFileSizeBytes: cfg.Attachments.MaxFileSizeBytes,
			AllowedMIMEs:     cfg.Attachments.AllowedMIMEs,
		}, log)

	authHandler := handler.NewAuthHandler(authService)
	requestHandler := handler.NewRequestHandler(requestService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	notificationHandler := handler.NewNotificationHandler(notifications)
	referenceHandler := handler.NewReferenceHandler(referenceService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	notifications.Start(ctx)
	defer notifications.Stop()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(log))
	router.Use(cors.New(cfg.CORS.AllowedOrigins))
	router.Use(middleware.Metrics(metrics))

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// the download token carries its own authorization
	api.GET("/attachments/download", attachmentHandler.Download)

	authed := api.Group("", middleware.JWT(authService), middleware.Actor(identityService))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.PUT("/auth/password", authHandler.ChangePassword)
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/reference/class-levels", referenceHandler.ClassLevels)
		authed.GET("/reference/fields", referenceHandler.Fields)
		authed.GET("/reference/axes", referenceHandler.Axes)
		authed.GET("/reference/subjects", referenceHandler.Subjects)

		authed.GET("/notifications", notificationHandler.List)
		authed.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		authed.POST("/notifications/:id/read", notificationHandler.MarkRead)
		authed.POST("/notifications/read-all", notificationHandler.MarkAllRead)

		staff := middleware.RequireRoles(models.RoleLecturer, models.RoleAdmin)

		authed.POST("/requests", middleware.RequireRoles(models.RoleStudent), requestHandler.Create)
		authed.GET("/requests", requestHandler.List)
		authed.GET("/requests/export", middleware.RequireRoles(models.RoleAdmin), requestHandler.Export)
		authed.GET("/requests/:id", requestHandler.Get)
		authed.PUT("/requests/:id", requestHandler.Update)
		authed.DELETE("/requests/:id", requestHandler.Delete)
		authed.PATCH("/requests/:id/score", staff, requestHandler.UpdateScore)
		authed.GET("/requests/:id/logs", requestHandler.Logs)
		authed.GET("/requests/:id/result", requestHandler.Result)
		authed.GET("/requests/:id/print", requestHandler.Print)

		authed.POST("/requests/:id/acknowledge", staff, requestHandler.Acknowledge)
		authed.POST("/requests/:id/decision", staff, requestHandler.Decide)
		authed.POST("/requests/:id/send-to-cellule", staff, requestHandler.SendToCellule)
		authed.POST("/requests/:id/return", staff, requestHandler.Return)
		authed.POST("/requests/:id/complete", staff, requestHandler.Complete)

		authed.POST("/requests/:id/attachments", attachmentHandler.Upload)
		authed.GET("/requests/:id/attachments", attachmentHandler.List)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("api gateway listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
