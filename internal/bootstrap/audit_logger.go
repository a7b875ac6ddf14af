package bootstrap

import (
	"context"
	"time"

	"cep360-payroll/internal/shared/contextutil"

	"go.uber.org/zap"
)

// AuditLog is a lifecycle event worth keeping apart from request logs.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

type zapAuditLogger struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewAuditLogger writes audit entries to the "audit" child of logger.
func NewAuditLogger(logger *zap.Logger) AuditLogger {
	if logger == nil {
		logger = zap.L()
	}
	return &zapAuditLogger{logger: logger.Named("audit"), now: time.Now}
}

func (l *zapAuditLogger) Log(ctx context.Context, entry AuditLog) {
	fields := []zap.Field{
		zap.String("timestamp", l.now().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.Any("meta", entry.Meta),
	}
	if md := contextutil.ExtractMetadata(ctx); md.UserID != "" {
		fields = append(fields, zap.String("actor", md.UserID), zap.String("request_id", md.RequestID))
	}
	l.logger.Info(entry.Message, fields...)
}
