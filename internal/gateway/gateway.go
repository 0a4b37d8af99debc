// Package gateway declares the chat transport boundary. The connection
// itself, message parsing, and rendering live behind these interfaces; this
// repository only ever calls them.
package gateway

import (
	"context"
	"time"

	"github.com/AesthetixDev/koko/internal/dispatch"
)

// TenantInfo is a summary of a tenant as seen by the transport.
type TenantInfo struct {
	MemberCount  int
	ChannelCount int
}

// Gateway is the full transport surface the core depends on.
type Gateway interface {
	// SendMessage posts plain text to a channel in a tenant.
	SendMessage(ctx context.Context, tenantID, channelID int64, text string) error

	// PublishCommands replaces the tenant's advertised interactive-command
	// catalogue.
	PublishCommands(ctx context.Context, tenantID int64, commands []dispatch.Descriptor) error

	// Kick and Ban are moderation primitives; the transport enforces its own
	// hierarchy rules and may still refuse.
	Kick(ctx context.Context, tenantID, userID int64, reason string) error
	Ban(ctx context.Context, tenantID, userID int64, reason string) error

	// TenantInfo returns member and channel counts for the stats command.
	TenantInfo(ctx context.Context, tenantID int64) (*TenantInfo, error)

	// Latency is the transport's current heartbeat round-trip.
	Latency() time.Duration
}

// Noop satisfies Gateway without a transport. Used in tests and when the core
// runs detached (maintenance, offline verification).
type Noop struct{}

var _ Gateway = Noop{}

func (Noop) SendMessage(ctx context.Context, tenantID, channelID int64, text string) error {
	return nil
}

func (Noop) PublishCommands(ctx context.Context, tenantID int64, commands []dispatch.Descriptor) error {
	return nil
}

func (Noop) Kick(ctx context.Context, tenantID, userID int64, reason string) error { return nil }

func (Noop) Ban(ctx context.Context, tenantID, userID int64, reason string) error { return nil }

func (Noop) TenantInfo(ctx context.Context, tenantID int64) (*TenantInfo, error) {
	return &TenantInfo{}, nil
}

func (Noop) Latency() time.Duration { return 0 }
