// Package stats provides the stats command: balance and infraction summary
// for a user, or tenant-wide numbers when aimed at the bot itself.
package stats

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/AesthetixDev/koko/internal/dispatch"
	"github.com/AesthetixDev/koko/internal/domain"
	"github.com/AesthetixDev/koko/internal/gateway"
)

const ModuleName = "stats"

type balanceSource interface {
	Balance(ctx context.Context, userID int64) (int64, error)
}

type infractionSource interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.Infraction, error)
}

type tenantInfoSource interface {
	TenantInfo(ctx context.Context, tenantID int64) (*gateway.TenantInfo, error)
}

type Module struct {
	ledger      balanceSource
	infractions infractionSource
	gateway     tenantInfoSource
	clock       clockwork.Clock
	botUserID   int64
	started     int64
}

func New(ledger balanceSource, infractions infractionSource, gw tenantInfoSource, clock clockwork.Clock, botUserID int64) *Module {
	return &Module{
		ledger:      ledger,
		infractions: infractions,
		gateway:     gw,
		clock:       clock,
		botUserID:   botUserID,
		started:     clock.Now().Unix(),
	}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Register(reg *dispatch.Registry) {
	reg.Register(ModuleName, false,
		dispatch.Command{
			Name:        "stats",
			Description: "Show server or user stats.",
			Usage:       "stats [user]",
			Handler:     m.handleStats,
		},
	)
}

func (m *Module) handleStats(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	target := inv.UserID
	if len(inv.Args) == 1 {
		parsed, err := dispatch.ParseUserArg(inv.Args[0])
		if err != nil {
			return &dispatch.UsageError{Usage: "stats [user]"}
		}
		target = parsed
	} else if len(inv.Args) > 1 {
		return &dispatch.UsageError{Usage: "stats [user]"}
	}

	// Viewing someone else requires moderator visibility.
	if target != inv.UserID && target != m.botUserID && !inv.Perms.Has(dispatch.PermManageMessages) {
		return domain.ErrPermissionDenied
	}

	if target == m.botUserID {
		return m.replyTenantStats(ctx, inv, reply)
	}
	return m.replyUserStats(ctx, target, reply)
}

func (m *Module) replyTenantStats(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	info, err := m.gateway.TenantInfo(ctx, inv.TenantID)
	if err != nil {
		return err
	}
	uptimeHours := float64(m.clock.Now().Unix()-m.started) / 3600.0

	return reply.Reply(ctx, dispatch.Reply{
		Embed: &dispatch.Embed{
			Title: "Server & Bot Stats",
			Fields: []dispatch.EmbedField{
				{Name: "Members", Value: fmt.Sprintf("%d", info.MemberCount)},
				{Name: "Channels", Value: fmt.Sprintf("%d", info.ChannelCount)},
				{Name: "Uptime", Value: fmt.Sprintf("%.2f hours", uptimeHours)},
			},
		},
	})
}

func (m *Module) replyUserStats(ctx context.Context, target int64, reply dispatch.Replier) error {
	balance, err := m.ledger.Balance(ctx, target)
	if err != nil {
		return err
	}
	infractions, err := m.infractions.ListByUser(ctx, target)
	if err != nil {
		return err
	}

	return reply.Reply(ctx, dispatch.Reply{
		Embed: &dispatch.Embed{
			Title: fmt.Sprintf("Stats for %s", dispatch.Mention(target)),
			Fields: []dispatch.EmbedField{
				{Name: "Stars", Value: fmt.Sprintf("%d", balance)},
				{Name: "Infractions", Value: fmt.Sprintf("%d", len(infractions))},
			},
		},
		Ephemeral: true,
	})
}
