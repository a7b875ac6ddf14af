package scheduler

import (
	"context"
	"time"

	"cep360-payroll/internal/invoice"
	"cep360-payroll/internal/shared/dateutil"

	"go.uber.org/zap"
)

const InvoiceCloseJobName = "invoice-month-close"

// InvoiceGenerator is satisfied by *invoice.Generator and invoice.Service.
type InvoiceGenerator interface {
	GenerateInvoices(ctx context.Context, req invoice.GenerateInvoicesRequest) (invoice.GenerateInvoicesResult, error)
}

// InvoiceCloseJob generates drafts for the previous calendar month on every
// tick from closeDay onwards. Only elapsed days are ever aggregated, and runs
// are idempotent, so later ticks only pick up assignments added since the
// previous one.
func InvoiceCloseJob(generator InvoiceGenerator, closeDay int, now func() time.Time, logger *zap.Logger) func(ctx context.Context) error {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named(InvoiceCloseJobName)

	return func(ctx context.Context) error {
		today := dateutil.Normalize(now().UTC())
		if today.Day() < closeDay {
			return nil
		}

		first, last := dateutil.MonthBounds(today.AddDate(0, 0, -today.Day()))
		res, err := generator.GenerateInvoices(ctx, invoice.GenerateInvoicesRequest{
			PeriodStart: dateutil.Format(first),
			PeriodEnd:   dateutil.Format(last),
		})
		if err != nil {
			return err
		}

		if res.Inserted > 0 || res.Failed > 0 {
			log.Info("month close run",
				zap.String("month", dateutil.MonthLabel(first)),
				zap.Int("inserted", res.Inserted),
				zap.Int("duplicates", res.Duplicates),
				zap.Int("failed", res.Failed),
			)
		}
		return nil
	}
}
