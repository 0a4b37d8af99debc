// Package general holds the always-on utility commands.
package general

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AesthetixDev/koko/internal/dispatch"
)

const ModuleName = "general"

type latencySource interface {
	Latency() time.Duration
}

type Module struct {
	gateway  latencySource
	registry *dispatch.Registry
}

func New(gateway latencySource) *Module {
	return &Module{gateway: gateway}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Register(reg *dispatch.Registry) {
	m.registry = reg
	reg.Register(ModuleName, true,
		dispatch.Command{
			Name:        "ping",
			Description: "Reply with bot latency.",
			Handler:     m.handlePing,
		},
		dispatch.Command{
			Name:        "help",
			Description: "Show available commands.",
			Handler:     m.handleHelp,
		},
		dispatch.Command{
			Name:            "greet",
			Description:     "Send a greeting to a user.",
			Usage:           "greet <user>",
			InteractiveOnly: true,
			Handler:         m.handleGreet,
		},
	)
}

func (m *Module) handlePing(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	latency := float64(m.gateway.Latency().Microseconds()) / 1000.0
	return reply.Reply(ctx, dispatch.Reply{
		Text: fmt.Sprintf("Pong! %.2fms", latency),
	})
}

// handleHelp lists the commands the invoker can actually run, grouped by
// module. Commands gated behind permissions the invoker lacks are omitted
// entirely rather than shown greyed out.
func (m *Module) handleHelp(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	var fields []dispatch.EmbedField
	for _, mod := range m.registry.CommandsByModule(inv.TenantID) {
		var lines []string
		for _, cmd := range mod.Commands {
			if !inv.Perms.Has(cmd.RequiredPerms) {
				continue
			}
			if cmd.InteractiveOnly && inv.Shape == dispatch.ShapeText {
				continue
			}
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.QualifiedName()
			}
			lines = append(lines, fmt.Sprintf("%s - %s", usage, cmd.Description))
		}
		if len(lines) == 0 {
			continue
		}
		sort.Strings(lines)
		fields = append(fields, dispatch.EmbedField{Name: mod.Module, Value: strings.Join(lines, "\n")})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	return reply.Reply(ctx, dispatch.Reply{
		Embed:     &dispatch.Embed{Title: "Available Commands", Fields: fields},
		Ephemeral: true,
	})
}

func (m *Module) handleGreet(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	if len(inv.Args) != 1 {
		return &dispatch.UsageError{Usage: "greet <user>"}
	}
	target, err := dispatch.ParseUserArg(inv.Args[0])
	if err != nil {
		return &dispatch.UsageError{Usage: "greet <user>"}
	}
	return reply.Reply(ctx, dispatch.Reply{
		Text:      fmt.Sprintf("%s says hello to %s!", dispatch.Mention(inv.UserID), dispatch.Mention(target)),
		Ephemeral: true,
	})
}
