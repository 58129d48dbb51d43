// Package main runs the equestrian training platform HTTP server with
// WebSocket push and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/equitrack/backend/config"
	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/apisettings"
	"github.com/equitrack/backend/internal/auth"
	"github.com/equitrack/backend/internal/care"
	"github.com/equitrack/backend/internal/dashboard"
	"github.com/equitrack/backend/internal/devices"
	"github.com/equitrack/backend/internal/horses"
	"github.com/equitrack/backend/internal/ingest"
	"github.com/equitrack/backend/internal/injuries"
	"github.com/equitrack/backend/internal/invitations"
	"github.com/equitrack/backend/internal/middleware"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/internal/organizations"
	"github.com/equitrack/backend/internal/realtime"
	"github.com/equitrack/backend/internal/sessions"
	"github.com/equitrack/backend/internal/tracks"
	"github.com/equitrack/backend/internal/users"
	"github.com/equitrack/backend/pkg/database"
	"github.com/equitrack/backend/pkg/queue"
	"github.com/equitrack/backend/pkg/redis"
	"github.com/equitrack/backend/pkg/response"
	"github.com/equitrack/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			PhotosBucket:         cfg.AWS.PhotosBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Repositories
	authRepo := auth.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	orgRepo := organizations.NewRepository(pool)
	horseRepo := horses.NewRepository(pool)
	trackRepo := tracks.NewRepository(pool)
	deviceRepo := devices.NewRepository(pool)
	sessionRepo := sessions.NewRepository(pool)
	injuryRepo := injuries.NewRepository(pool)
	careRepo := care.NewRepository(pool)
	keyRepo := apisettings.NewRepository(pool)
	invitationRepo := invitations.NewRepository(pool)
	dashboardRepo := dashboard.NewRepository(pool)

	// The organization repository doubles as the membership source behind
	// every authorization gate.
	guard := access.NewGuard(orgRepo)

	// Handlers
	authHandler := auth.NewHandler(authRepo, jwtService, logger)
	userHandler := users.NewHandler(userRepo)
	orgHandler := organizations.NewHandler(orgRepo, guard)
	horseHandler := horses.NewHandler(horseRepo, guard, s3Client, logger)
	trackHandler := tracks.NewHandler(trackRepo, guard)
	deviceHandler := devices.NewHandler(deviceRepo, horseRepo, guard)
	sessionHandler := sessions.NewHandler(sessionRepo, horseRepo, trackRepo, guard)
	injuryHandler := injuries.NewHandler(injuryRepo, sessionRepo, guard)
	careHandler := care.NewHandler(careRepo, horseRepo, guard)
	keyHandler := apisettings.NewHandler(keyRepo, guard)
	invitationHandler := invitations.NewHandler(invitationRepo, orgRepo, guard)
	dashboardHandler := dashboard.NewHandler(dashboardRepo, guard)
	ingestHandler := ingest.NewHandler(keyRepo, deviceRepo, sessionRepo, jobQueue, hub, cfg.Ingest.MaxBodyBytes, logger)

	wsAuthorize := func(ctx context.Context, token string, orgID uuid.UUID) (uuid.UUID, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, err
		}
		id := access.Identity{UserID: claims.UserID, Role: models.Role(claims.Role), UserType: models.UserType(claims.UserType)}
		if err := guard.RequireOrg(ctx, id, orgID); err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Public invitation validation (the invitee may not have an account yet)
	router.GET("/invitations/:token", invitationHandler.Validate)

	// Device ingestion (API key, no JWT)
	ingestGroup := router.Group("/ingest")
	ingestGroup.Use(ingestHandler.Authenticate())
	{
		ingestGroup.POST("/sessions", ingestHandler.CreateSession)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Users (admin)
		api.GET("/users", middleware.RequireAdmin(), userHandler.List)
		api.GET("/users/:id", middleware.RequireAdmin(), userHandler.Get)
		api.PATCH("/users/:id", middleware.RequireAdmin(), userHandler.Update)
		api.DELETE("/users/:id", middleware.RequireAdmin(), userHandler.Delete)

		// Organizations
		api.GET("/organizations", orgHandler.ListMine)
		api.POST("/organizations", orgHandler.Create)
		api.GET("/organizations/:id", orgHandler.Get)
		api.PATCH("/organizations/:id", orgHandler.Update)
		api.DELETE("/organizations/:id", orgHandler.Delete)
		api.GET("/organizations/:id/members", orgHandler.ListMembers)
		api.DELETE("/organizations/:id/members/:userId", orgHandler.RemoveMember)
		api.POST("/organizations/:id/join-requests", orgHandler.RequestJoin)
		api.GET("/organizations/:id/join-requests", orgHandler.ListJoinRequests)
		api.POST("/organizations/:id/join-requests/:requestId/:action", orgHandler.ResolveJoinRequest)
		api.GET("/organizations/:id/dashboard", dashboardHandler.Summary)

		// Invitations (owner-managed; accept is account-wide)
		api.POST("/organizations/:id/invitations", invitationHandler.Create)
		api.GET("/organizations/:id/invitations", invitationHandler.List)
		api.POST("/organizations/:id/invitations/:invitationId/revoke", invitationHandler.Revoke)
		api.POST("/invitations/:token/accept", invitationHandler.Accept)

		// Ingest API keys
		api.POST("/organizations/:id/api-keys", keyHandler.Create)
		api.GET("/organizations/:id/api-keys", keyHandler.List)
		api.POST("/organizations/:id/api-keys/:keyId/revoke", keyHandler.Revoke)

		// Horses
		api.GET("/horses", horseHandler.List)
		api.POST("/horses", horseHandler.Create)
		api.GET("/horses/favorites", horseHandler.ListFavorites)
		api.GET("/horses/:id", horseHandler.Get)
		api.PATCH("/horses/:id", horseHandler.Update)
		api.DELETE("/horses/:id", horseHandler.Delete)
		api.POST("/horses/:id/photo", horseHandler.UploadPhoto)
		api.GET("/horses/:id/photo", horseHandler.DownloadPhoto)
		api.PUT("/horses/:id/favorite", horseHandler.Favorite)
		api.DELETE("/horses/:id/favorite", horseHandler.Unfavorite)

		// Tracks
		api.GET("/tracks", trackHandler.List)
		api.POST("/tracks", trackHandler.Create)
		api.GET("/tracks/:id", trackHandler.Get)
		api.PATCH("/tracks/:id", trackHandler.Update)
		api.DELETE("/tracks/:id", trackHandler.Delete)

		// Devices
		api.GET("/devices", deviceHandler.List)
		api.POST("/devices", deviceHandler.Create)
		api.GET("/devices/:id", deviceHandler.Get)
		api.PATCH("/devices/:id", deviceHandler.Update)
		api.DELETE("/devices/:id", deviceHandler.Delete)
		api.POST("/devices/:id/link", deviceHandler.Link)
		api.POST("/devices/:id/unlink", deviceHandler.Unlink)

		// Sessions
		api.GET("/sessions", sessionHandler.List)
		api.POST("/sessions", sessionHandler.Create)
		api.POST("/sessions/batch-assign", sessionHandler.BatchAssign)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.PATCH("/sessions/:id", sessionHandler.Update)
		api.DELETE("/sessions/:id", sessionHandler.Delete)
		api.POST("/sessions/:id/comments", sessionHandler.CreateComment)
		api.GET("/sessions/:id/comments", sessionHandler.ListComments)
		api.DELETE("/sessions/:id/comments/:commentId", sessionHandler.DeleteComment)

		// Injury records
		api.GET("/injuries", injuryHandler.List)
		api.POST("/injuries", injuryHandler.Create)
		api.GET("/injuries/:id", injuryHandler.Get)
		api.PATCH("/injuries/:id", injuryHandler.UpdateNotes)
		api.POST("/injuries/:id/status", injuryHandler.SetStatus)
		api.DELETE("/injuries/:id", injuryHandler.Delete)

		// Care tasks
		api.GET("/care-tasks", careHandler.List)
		api.POST("/care-tasks", careHandler.Create)
		api.POST("/care-tasks/:id/complete", careHandler.Complete)
		api.DELETE("/care-tasks/:id", careHandler.Delete)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, wsAuthorize))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
