// Package main runs the risk analysis worker: it consumes session
// analysis jobs from Redis, scores performance data and raises injury
// records for risky sessions.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/equitrack/backend/config"
	"github.com/equitrack/backend/internal/injuries"
	"github.com/equitrack/backend/internal/realtime"
	"github.com/equitrack/backend/internal/sessions"
	"github.com/equitrack/backend/internal/worker"
	"github.com/equitrack/backend/pkg/database"
	"github.com/equitrack/backend/pkg/queue"
	"github.com/equitrack/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	sessionRepo := sessions.NewRepository(pool)
	injuryRepo := injuries.NewRepository(pool)
	processor := worker.NewRiskProcessor(sessionRepo, injuryRepo, jobQueue, hub, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutdown signal received")
		cancel()
	}()

	logger.Info("risk worker started")
	processor.Run(ctx)
	logger.Info("risk worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
