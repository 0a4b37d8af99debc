// Package moderation implements kick and ban. The transport does the actual
// removal; this module records the infraction and posts the audit entry.
package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AesthetixDev/koko/internal/dispatch"
)

const ModuleName = "moderation"

type moderationGateway interface {
	Kick(ctx context.Context, tenantID, userID int64, reason string) error
	Ban(ctx context.Context, tenantID, userID int64, reason string) error
}

type infractionRecorder interface {
	Record(ctx context.Context, userID int64, reason string, ts time.Time) (int64, error)
}

type auditLogger interface {
	Log(ctx context.Context, tenantID int64, message string)
}

type Module struct {
	gateway     moderationGateway
	infractions infractionRecorder
	audit       auditLogger
	clock       clockwork.Clock
}

func New(gw moderationGateway, infractions infractionRecorder, audit auditLogger, clock clockwork.Clock) *Module {
	return &Module{gateway: gw, infractions: infractions, audit: audit, clock: clock}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Register(reg *dispatch.Registry) {
	reg.Register(ModuleName, false,
		dispatch.Command{
			Name:          "kick",
			Description:   "Kick a member from the server.",
			Usage:         "kick <user> [reason]",
			RequiredPerms: dispatch.PermKickMembers,
			Handler:       m.handleKick,
		},
		dispatch.Command{
			Name:          "ban",
			Description:   "Ban a member from the server.",
			Usage:         "ban <user> [reason]",
			RequiredPerms: dispatch.PermBanMembers,
			Handler:       m.handleBan,
		},
	)
}

func (m *Module) handleKick(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	return m.moderate(ctx, inv, reply, "kick", "Kicked", m.gateway.Kick)
}

func (m *Module) handleBan(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	return m.moderate(ctx, inv, reply, "ban", "Banned", m.gateway.Ban)
}

func (m *Module) moderate(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier, name, verb string,
	action func(ctx context.Context, tenantID, userID int64, reason string) error) error {

	usage := name + " <user> [reason]"
	if len(inv.Args) < 1 {
		return &dispatch.UsageError{Usage: usage}
	}
	target, err := dispatch.ParseUserArg(inv.Args[0])
	if err != nil {
		return &dispatch.UsageError{Usage: usage}
	}
	reason := strings.Join(inv.Args[1:], " ")

	if err := action(ctx, inv.TenantID, target, reason); err != nil {
		return err
	}

	// The removal already happened; a failed infraction write must not fail
	// the command, only the audit trail entry.
	if _, err := m.infractions.Record(ctx, target, reason, m.clock.Now()); err != nil {
		m.audit.Log(ctx, inv.TenantID, fmt.Sprintf("failed to record infraction for %s: %v",
			dispatch.Mention(target), err))
	}

	display := reason
	if display == "" {
		display = "No reason"
	}
	m.audit.Log(ctx, inv.TenantID, fmt.Sprintf("%s %s %s for %s",
		dispatch.Mention(inv.UserID), strings.ToLower(verb), dispatch.Mention(target), display))
	return reply.Reply(ctx, dispatch.Reply{
		Text: fmt.Sprintf("%s %s for %s", verb, dispatch.Mention(target), display),
	})
}
