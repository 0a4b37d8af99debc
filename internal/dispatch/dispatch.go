// Package dispatch routes inbound command invocations to handlers. Two
// invocation shapes reach the router: prefix-triggered text messages and
// structured interactive calls. Both resolve to the same handler body; only
// the reply capability differs.
package dispatch

import (
	"context"
	"fmt"
)

// Shape tags how an invocation arrived.
type Shape int

const (
	ShapeText Shape = iota
	ShapeInteractive
)

func (s Shape) String() string {
	if s == ShapeInteractive {
		return "interactive"
	}
	return "text"
}

// Permissions is the invoker's permission bitfield, resolved by the transport
// before dispatch.
type Permissions uint64

const (
	PermAdministrator Permissions = 1 << iota
	PermKickMembers
	PermBanMembers
	PermManageMessages
)

// Has reports whether p contains every permission in req.
func (p Permissions) Has(req Permissions) bool {
	return p&req == req
}

// Invocation is the transport-agnostic record of one inbound command call.
type Invocation struct {
	Shape    Shape
	TenantID int64 // 0 for direct-message-shaped invocations
	UserID   int64
	Perms    Permissions

	// Command and Group are set directly for interactive invocations. For
	// text invocations the router derives them from RawText after prefix
	// resolution.
	Command string
	Group   string
	Args    []string
	RawText string
}

// Embed is a structured, embed-like reply payload.
type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Reply is the shape-agnostic outbound payload. Ephemeral is honored only
// when the replier reports the capability.
type Reply struct {
	Text      string
	Embed     *Embed
	Ephemeral bool
}

// Replier abstracts the shape-appropriate reply mechanism: the immediate
// acknowledgment channel for interactive calls, a follow-up post for text.
type Replier interface {
	Reply(ctx context.Context, r Reply) error
	EphemeralCapable() bool
}

// HandlerFunc is a shape-agnostic command body. It replies on success and
// returns a typed error on failure; the router converts the error into the
// single user-visible reply.
type HandlerFunc func(ctx context.Context, inv Invocation, reply Replier) error

// Command declares one registered command.
type Command struct {
	Name        string
	Group       string // optional sub-group qualifier, e.g. "settings"
	Description string
	Usage       string

	// RequiredPerms gates the handler; a failing check never reaches the
	// body.
	RequiredPerms Permissions

	// InteractiveOnly hides the command from prefix-text matching (user
	// commands and the like).
	InteractiveOnly bool

	Handler HandlerFunc
}

// QualifiedName returns "group name" or just the name for ungrouped commands.
func (c Command) QualifiedName() string {
	if c.Group == "" {
		return c.Name
	}
	return c.Group + " " + c.Name
}

// Descriptor is the externally-advertised form of a command, published to the
// transport as the tenant's interactive-command catalogue.
type Descriptor struct {
	Name        string
	Group       string
	Description string
	Usage       string
}

// UsageError reports malformed command arguments; the router replies with the
// usage line.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %s", e.Usage)
}
