package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cep360-payroll/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrRenderFailed  = errors.New("document: render failed")
	ErrPublishFailed = errors.New("document: publish failed")
)

const contentTypePDF = "application/pdf"

// Artifact locates a published document.
type Artifact struct {
	Key string
	URL string
}

// ObjectKey is unique per generation so a regenerated document never
// reuses a cached URL.
func ObjectKey(invoiceID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("payslips/%s/%d.pdf", invoiceID, at.UnixNano())
}

type Publisher struct {
	renderer Renderer
	store    storage.BlobStore
	tempDir  string
	now      func() time.Time
	logger   *zap.Logger
}

func NewPublisher(renderer Renderer, store storage.BlobStore, logger ...*zap.Logger) *Publisher {
	l := zap.L().Named("document.publisher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.publisher")
	}
	return &Publisher{
		renderer: renderer,
		store:    store,
		now:      time.Now,
		logger:   l,
	}
}

// Publish renders slip into a scratch file and uploads it. The scratch
// file is removed on every path and a failed upload leaves no remote
// object behind.
func (p *Publisher) Publish(ctx context.Context, slip Payslip) (Artifact, error) {
	f, err := os.CreateTemp(p.tempDir, "payslip-*.pdf")
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: create temp file: %w", ErrRenderFailed, err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	if err := p.renderer.Render(ctx, slip, f); err != nil {
		return Artifact{}, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Artifact{}, fmt.Errorf("%w: rewind temp file: %w", ErrRenderFailed, err)
	}

	key := ObjectKey(slip.InvoiceID, p.now())
	url, err := p.store.Put(ctx, key, f, contentTypePDF)
	if err != nil {
		if delErr := p.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			p.logger.Warn("cleanup of failed upload failed",
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return Artifact{}, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	p.logger.Info("payslip published",
		zap.String("invoice_id", slip.InvoiceID.String()),
		zap.String("key", key),
	)
	return Artifact{Key: key, URL: url}, nil
}

// Discard removes a published artifact. Used when the link could not be
// recorded and when a newer generation replaces an older one.
func (p *Publisher) Discard(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return p.store.Delete(ctx, key)
}
