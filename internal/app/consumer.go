package app

import (
	"context"
	"errors"
	"time"

	"cep360-payroll/internal/config"
	"cep360-payroll/internal/events"
	"cep360-payroll/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const documentRetryBackoff = 2 * time.Second

// RunConsumer renders documents for queued invoices until a shutdown
// signal.
func RunConsumer(cfg *config.Config, logger *zap.Logger) error {
	logger = logger.Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	deps, err := connectDatabase(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	invoiceService, _, err := newInvoiceService(ctx, cfg, deps, newRepositories(deps), logger)
	if err != nil {
		return err
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.InvoiceDocumentRequestedTopic,
		GroupID:        cfg.Kafka.GroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumeInvoiceDocumentRequested(ctx, reader, invoiceService, logger, documentRetryBackoff)
	}()

	sig := waitForShutdown()
	logger.Info("consumer shutting down", zap.String("signal", sig.String()))
	cancel()
	<-done

	return nil
}
