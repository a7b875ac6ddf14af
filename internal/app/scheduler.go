package app

import (
	"context"
	"time"

	"cep360-payroll/internal/config"
	"cep360-payroll/internal/scheduler"

	"go.uber.org/zap"
)

// RunScheduler closes the running month's invoices on a ticker until a
// shutdown signal.
func RunScheduler(cfg *config.Config, logger *zap.Logger) error {
	logger = logger.Named("app.scheduler")

	deps, err := connectDatabase(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	invoiceService, _, err := newInvoiceService(context.Background(), cfg, deps, newRepositories(deps), logger)
	if err != nil {
		return err
	}

	s := scheduler.New(logger)
	s.AddJob(
		scheduler.InvoiceCloseJobName,
		cfg.Payroll.TickInterval,
		scheduler.InvoiceCloseJob(invoiceService, cfg.Payroll.CloseDay, time.Now, logger),
	)
	s.Start()

	sig := waitForShutdown()
	logger.Info("scheduler shutting down", zap.String("signal", sig.String()))
	s.Stop()

	return nil
}
