package main

import (
	"cep360-payroll/internal/app"
	"cep360-payroll/internal/config"
	"cep360-payroll/internal/shared/apperror"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewDevelopment()
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	if err := app.RunScheduler(cfg, logger); err != nil {
		logger.Fatal("run scheduler failed", zap.Error(err))
	}
}
