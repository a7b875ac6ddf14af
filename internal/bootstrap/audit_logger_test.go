package bootstrap

import (
	"context"
	"testing"
	"time"

	"cep360-payroll/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditLogger_Log(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := NewAuditLogger(zap.New(core)).(*zapAuditLogger)
	logger.now = func() time.Time { return time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC) }

	t.Run("system event", func(t *testing.T) {
		logger.Log(context.Background(), AuditLog{
			Action:  "SERVER_SHUTDOWN",
			Message: "payroll api is shutting down",
			Meta:    map[string]any{"signal": "terminated"},
		})

		entry := logs.TakeAll()[0]
		assert.Equal(t, "audit", entry.LoggerName)
		assert.Equal(t, "payroll api is shutting down", entry.Message)
		fields := entry.ContextMap()
		assert.Equal(t, "SERVER_SHUTDOWN", fields["action"])
		assert.Equal(t, "2024-06-30T23:00:00Z", fields["timestamp"])
		assert.NotContains(t, fields, "actor")
	})

	t.Run("caller identity is attached", func(t *testing.T) {
		ctx := contextutil.WithUserID(context.Background(), "finance-1")
		ctx = contextutil.WithRequestID(ctx, "rid-1")

		logger.Log(ctx, AuditLog{Action: "INVOICE_PUBLISHED", Message: "invoice published"})

		fields := logs.TakeAll()[0].ContextMap()
		assert.Equal(t, "finance-1", fields["actor"])
		assert.Equal(t, "rid-1", fields["request_id"])
	})
}
