package consumer

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cep360-payroll/internal/events"
	"cep360-payroll/internal/invoice"
	"cep360-payroll/internal/shared/apperror"
	"cep360-payroll/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *kafkago.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type DocumentGenerator interface {
	GenerateDocument(ctx context.Context, invoiceID string) (invoice.UpdateInvoiceResult, error)
}

const maxBackoff = 30 * time.Second

// ConsumeInvoiceDocumentRequested renders documents for queued invoices.
// Malformed events and permanent failures are committed and skipped; other
// failures are retried with backoff and never committed, so a restart
// redelivers them.
func ConsumeInvoiceDocumentRequested(
	ctx context.Context,
	reader MessageReader,
	generator DocumentGenerator,
	logger *zap.Logger,
	backoff time.Duration,
) {
	if backoff <= 0 {
		backoff = time.Second
	}

	log := logger.Named("kafka.consumer.invoice_document")
	log.Info("invoice document consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("invoice document consumer stopped")
				return
			}
			log.Error("fetch invoice document message failed", zap.Error(err))
			continue
		}

		var event events.InvoiceDocumentRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.InvoiceID == "" {
			log.Error("decode invoice document event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := contextutil.WithRequestID(ctx, headerValue(msg, "request_id"))
		msgLog := log.With(
			zap.String("invoice_id", event.InvoiceID),
			zap.String("reason", event.Reason),
		)

		if !generateWithRetry(msgCtx, generator, event.InvoiceID, msgLog, backoff) {
			log.Info("invoice document consumer stopped")
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			msgLog.Error("commit invoice document message failed", zap.Error(err))
			continue
		}
	}
}

// generateWithRetry returns false only when ctx ended before the message
// was settled.
func generateWithRetry(
	ctx context.Context,
	generator DocumentGenerator,
	invoiceID string,
	log *zap.Logger,
	backoff time.Duration,
) bool {
	wait := backoff
	for attempt := 1; ; attempt++ {
		result, err := generator.GenerateDocument(ctx, invoiceID)
		if err == nil {
			url := ""
			if result.DocumentURL != nil {
				url = *result.DocumentURL
			}
			log.Info("invoice document generated", zap.Int("attempt", attempt), zap.String("url", url))
			return true
		}

		if isPermanent(err) {
			log.Warn("invoice document request dropped", zap.Error(err))
			return true
		}

		log.Error("generate invoice document failed",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}

		wait *= 2
		if wait > maxBackoff {
			wait = maxBackoff
		}
	}
}

func isPermanent(err error) bool {
	return apperror.ToHTTP(err).Status < http.StatusInternalServerError
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
