// Package audit posts moderation and economy events to a tenant's configured
// audit channel. Logging is fire-and-forget: no audit channel means a silent
// no-op, and transport failures never propagate to the command that logged.
package audit

import (
	"context"
	"log/slog"

	"github.com/AesthetixDev/koko/internal/domain"
)

type settingsSource interface {
	Get(ctx context.Context, tenantID int64) (*domain.TenantSettings, error)
}

type messageSender interface {
	SendMessage(ctx context.Context, tenantID, channelID int64, text string) error
}

type Logger struct {
	settings settingsSource
	sender   messageSender
}

func NewLogger(settings settingsSource, sender messageSender) *Logger {
	return &Logger{settings: settings, sender: sender}
}

// Log posts message to the tenant's audit channel, if one is configured.
func (l *Logger) Log(ctx context.Context, tenantID int64, message string) {
	if tenantID == 0 {
		return
	}

	settings, err := l.settings.Get(ctx, tenantID)
	if err != nil {
		slog.WarnContext(ctx, "audit log skipped, settings unavailable", "tenant_id", tenantID, "error", err)
		return
	}
	if !settings.AuditChannel.Valid {
		return
	}

	if err := l.sender.SendMessage(ctx, tenantID, settings.AuditChannel.Int64, message); err != nil {
		slog.WarnContext(ctx, "audit log delivery failed", "tenant_id", tenantID, "error", err)
	}
}
