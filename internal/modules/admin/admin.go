// Package admin holds the administrator-facing configuration commands: the
// tenant setup flow and the per-tenant feature toggles. Always loaded, so a
// tenant can never toggle itself out of reach of the toggle commands.
package admin

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AesthetixDev/koko/internal/dispatch"
	"github.com/AesthetixDev/koko/internal/domain"
)

const ModuleName = "admin"

type settingsService interface {
	Update(ctx context.Context, tenantID int64, patch domain.SettingsPatch) (*domain.TenantSettings, error)
}

type featureManager interface {
	SetEnabled(ctx context.Context, tenantID int64, feature string, enabled bool) error
}

type auditLogger interface {
	Log(ctx context.Context, tenantID int64, message string)
}

type Module struct {
	settings settingsService
	features featureManager
	audit    auditLogger
}

func New(settings settingsService, features featureManager, audit auditLogger) *Module {
	return &Module{settings: settings, features: features, audit: audit}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Register(reg *dispatch.Registry) {
	reg.Register(ModuleName, true,
		dispatch.Command{
			Name:          "setup",
			Description:   "Configure the audit channel and command prefix.",
			Usage:         "setup [channel <id>|none] [prefix <prefix>]",
			RequiredPerms: dispatch.PermAdministrator,
			Handler:       m.handleSetup,
		},
		dispatch.Command{
			Name:          "enable",
			Group:         "settings",
			Description:   "Enable a bot feature.",
			Usage:         "settings enable <feature>",
			RequiredPerms: dispatch.PermAdministrator,
			Handler:       m.toggleHandler(true),
		},
		dispatch.Command{
			Name:          "disable",
			Group:         "settings",
			Description:   "Disable a bot feature.",
			Usage:         "settings disable <feature>",
			RequiredPerms: dispatch.PermAdministrator,
			Handler:       m.toggleHandler(false),
		},
	)
}

// handleSetup applies the provided fields and leaves the rest untouched.
// "channel none" explicitly clears the audit channel.
func (m *Module) handleSetup(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	const usage = "setup [channel <id>|none] [prefix <prefix>]"

	if inv.TenantID == 0 {
		return reply.Reply(ctx, dispatch.Reply{Text: "Setup only works inside a server.", Ephemeral: true})
	}

	var patch domain.SettingsPatch
	args := inv.Args
	for len(args) > 0 {
		if len(args) < 2 {
			return &dispatch.UsageError{Usage: usage}
		}
		switch args[0] {
		case "channel":
			if args[1] == "none" {
				patch.AuditChannel = &sql.NullInt64{}
			} else {
				id, err := dispatch.ParseChannelArg(args[1])
				if err != nil {
					return &dispatch.UsageError{Usage: usage}
				}
				patch.AuditChannel = &sql.NullInt64{Int64: id, Valid: true}
			}
		case "prefix":
			prefix := args[1]
			patch.Prefix = &prefix
		default:
			return &dispatch.UsageError{Usage: usage}
		}
		args = args[2:]
	}

	if patch.Prefix == nil && patch.AuditChannel == nil {
		return &dispatch.UsageError{Usage: usage}
	}

	if _, err := m.settings.Update(ctx, inv.TenantID, patch); err != nil {
		return err
	}

	m.audit.Log(ctx, inv.TenantID, fmt.Sprintf("%s updated server settings", dispatch.Mention(inv.UserID)))
	return reply.Reply(ctx, dispatch.Reply{Text: "Setup complete!", Ephemeral: true})
}

func (m *Module) toggleHandler(enable bool) dispatch.HandlerFunc {
	return func(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
		if len(inv.Args) != 1 {
			usage := "settings enable <feature>"
			if !enable {
				usage = "settings disable <feature>"
			}
			return &dispatch.UsageError{Usage: usage}
		}
		feature := inv.Args[0]

		if err := m.features.SetEnabled(ctx, inv.TenantID, feature, enable); err != nil {
			return err
		}

		verb := "Enabled"
		if !enable {
			verb = "Disabled"
		}
		m.audit.Log(ctx, inv.TenantID, fmt.Sprintf("Feature %s set to %t", feature, enable))
		return reply.Reply(ctx, dispatch.Reply{
			Embed: &dispatch.Embed{
				Title:       fmt.Sprintf("Feature %s", verb),
				Description: fmt.Sprintf("%s %s.", verb, feature),
			},
			Ephemeral: true,
		})
	}
}
