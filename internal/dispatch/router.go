package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AesthetixDev/koko/internal/domain"
	"github.com/AesthetixDev/koko/internal/metrics"
	"github.com/AesthetixDev/koko/internal/platform/correlation"
)

// settingsSource resolves tenant configuration for prefix matching.
type settingsSource interface {
	Get(ctx context.Context, tenantID int64) (*domain.TenantSettings, error)
}

// Router resolves an invocation to a handler and normalizes both reply
// mechanisms behind the Replier the handler sees.
type Router struct {
	registry      *Registry
	settings      settingsSource
	defaultPrefix string
}

func NewRouter(registry *Registry, settings settingsSource, defaultPrefix string) *Router {
	return &Router{
		registry:      registry,
		settings:      settings,
		defaultPrefix: defaultPrefix,
	}
}

// Dispatch handles one invocation end to end. The returned error mirrors the
// outcome for callers that track it; the user-visible reply has already been
// sent (at most once) by the time Dispatch returns.
func (rt *Router) Dispatch(ctx context.Context, inv Invocation, replier Replier) error {
	ctx = correlation.WithID(ctx, correlation.NewID())
	guarded := newSingleReply(replier)
	start := time.Now()

	cmd, inv, err := rt.resolve(ctx, inv)
	if err != nil {
		rt.record(inv.Command, inv.Shape, err, start)
		if errors.Is(err, domain.ErrCommandNotFound) && inv.Command != "" {
			rt.sendReply(ctx, guarded, Reply{Text: "Unknown command.", Ephemeral: true})
		}
		return err
	}

	if !inv.Perms.Has(cmd.RequiredPerms) {
		rt.record(cmd.QualifiedName(), inv.Shape, domain.ErrPermissionDenied, start)
		rt.sendReply(ctx, guarded, Reply{Text: "You don't have permission to do that.", Ephemeral: true})
		return domain.ErrPermissionDenied
	}

	err = cmd.Handler(ctx, inv, guarded)
	rt.record(cmd.QualifiedName(), inv.Shape, err, start)
	if err != nil {
		rt.sendReply(ctx, guarded, rt.errorReply(ctx, err))
	}
	return err
}

// resolve maps the invocation shape to a registered command. For text shapes
// it resolves the tenant prefix, requires it, and derives command, group, and
// args from the raw payload.
func (rt *Router) resolve(ctx context.Context, inv Invocation) (Command, Invocation, error) {
	if inv.Shape == ShapeInteractive {
		cmd, ok := rt.registry.Lookup(inv.TenantID, inv.Group, inv.Command)
		if !ok {
			return Command{}, inv, domain.ErrCommandNotFound
		}
		return cmd, inv, nil
	}

	prefix := rt.defaultPrefix
	if inv.TenantID != 0 {
		settings, err := rt.settings.Get(ctx, inv.TenantID)
		if err != nil {
			return Command{}, inv, fmt.Errorf("failed to resolve tenant prefix: %w", err)
		}
		prefix = settings.Prefix
	}

	if !strings.HasPrefix(inv.RawText, prefix) {
		// Ordinary chatter, or a prefix this tenant no longer uses. No reply.
		return Command{}, inv, domain.ErrCommandNotFound
	}

	fields := strings.Fields(strings.TrimPrefix(inv.RawText, prefix))
	if len(fields) == 0 {
		return Command{}, inv, domain.ErrCommandNotFound
	}

	inv.Command = fields[0]
	inv.Group = ""
	inv.Args = fields[1:]

	cmd, ok := rt.registry.Lookup(inv.TenantID, "", inv.Command)
	if !ok && len(fields) >= 2 {
		// Try a sub-group qualifier: "settings enable economy".
		if grouped, found := rt.registry.Lookup(inv.TenantID, fields[0], fields[1]); found {
			inv.Group = fields[0]
			inv.Command = fields[1]
			inv.Args = fields[2:]
			cmd, ok = grouped, true
		}
	}
	if !ok {
		return Command{}, inv, domain.ErrCommandNotFound
	}
	if cmd.InteractiveOnly {
		return Command{}, inv, domain.ErrCommandNotFound
	}
	return cmd, inv, nil
}

// errorReply converts a handler outcome into the single user-visible reply.
func (rt *Router) errorReply(ctx context.Context, err error) Reply {
	var cooldown *domain.CooldownError
	var usage *UsageError

	switch {
	case errors.As(err, &cooldown):
		remaining := cooldown.Remaining
		hours := int(remaining.Hours())
		minutes := int(remaining.Minutes()) % 60
		return Reply{Text: fmt.Sprintf("Come back in %dh %dm to claim again.", hours, minutes), Ephemeral: true}
	case errors.Is(err, domain.ErrInsufficientFunds):
		return Reply{Text: "You don't have enough Stars.", Ephemeral: true}
	case errors.Is(err, domain.ErrPermissionDenied):
		return Reply{Text: "You don't have permission to do that.", Ephemeral: true}
	case errors.Is(err, domain.ErrUnknownFeature):
		return Reply{Text: "Unknown feature.", Ephemeral: true}
	case errors.As(err, &usage):
		return Reply{Text: fmt.Sprintf("Usage: %s", usage.Usage), Ephemeral: true}
	default:
		slog.ErrorContext(ctx, "command handler failed", "error", err)
		return Reply{Text: "Something went wrong. Please try again later.", Ephemeral: true}
	}
}

func (rt *Router) sendReply(ctx context.Context, replier Replier, r Reply) {
	if err := replier.Reply(ctx, r); err != nil {
		slog.WarnContext(ctx, "failed to send reply", "error", err)
	}
}

func (rt *Router) record(command string, shape Shape, err error, start time.Time) {
	if command == "" {
		command = "unknown"
	}
	metrics.CommandsTotal.WithLabelValues(command, shape.String(), statusLabel(err)).Inc()
	metrics.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

func statusLabel(err error) string {
	var cooldown *domain.CooldownError
	var usage *UsageError

	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCommandNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.As(err, &cooldown):
		return "cooldown"
	case errors.As(err, &usage):
		return "usage"
	default:
		return "error"
	}
}

// singleReply lets only the first reply through; handlers reply on success
// and the router replies on error, and a handler that did both would
// otherwise double-post.
type singleReply struct {
	inner   Replier
	mu      sync.Mutex
	replied bool
}

func newSingleReply(inner Replier) *singleReply {
	return &singleReply{inner: inner}
}

func (s *singleReply) Reply(ctx context.Context, r Reply) error {
	s.mu.Lock()
	if s.replied {
		s.mu.Unlock()
		return nil
	}
	s.replied = true
	s.mu.Unlock()
	return s.inner.Reply(ctx, r)
}

func (s *singleReply) EphemeralCapable() bool {
	return s.inner.EphemeralCapable()
}
