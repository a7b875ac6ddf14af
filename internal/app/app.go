package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cep360-payroll/internal/config"
	"cep360-payroll/internal/middleware"
	"cep360-payroll/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the stores and registers every module on router. The
// returned func releases the connections.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) (func(), error) {
	deps, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	deps.rdb, err = connection.ConnectRedisWithRetry(cfg.Redis.Addr, connectRetries)
	if err != nil {
		deps.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	router.Use(middleware.RequestID(logger))

	if err := registerModules(context.Background(), router, cfg, deps, logger); err != nil {
		deps.Close()
		return nil, err
	}

	return deps.Close, nil
}

func waitForShutdown() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}
