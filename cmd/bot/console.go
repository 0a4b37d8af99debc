package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/AesthetixDev/koko/internal/dispatch"
)

// The console runs as a fixed operator identity with full permissions. It is
// a development harness, not a transport.
const (
	consoleTenantID = 1
	consoleUserID   = 1
)

type consoleReplier struct {
	out io.Writer
}

func (c consoleReplier) Reply(_ context.Context, r dispatch.Reply) error {
	if r.Text != "" {
		fmt.Fprintln(c.out, r.Text)
	}
	if r.Embed != nil {
		fmt.Fprintf(c.out, "== %s ==\n", r.Embed.Title)
		if r.Embed.Description != "" {
			fmt.Fprintln(c.out, r.Embed.Description)
		}
		for _, f := range r.Embed.Fields {
			fmt.Fprintf(c.out, "%s: %s\n", f.Name, f.Value)
		}
	}
	return nil
}

func (consoleReplier) EphemeralCapable() bool { return false }

// runConsole dispatches each input line as a text invocation until in is
// exhausted. Errors are already rendered as replies, so only the dispatch
// loop itself logs.
func runConsole(ctx context.Context, router *dispatch.Router, in io.Reader, out io.Writer) {
	perms := dispatch.PermAdministrator | dispatch.PermKickMembers |
		dispatch.PermBanMembers | dispatch.PermManageMessages

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		inv := dispatch.Invocation{
			Shape:    dispatch.ShapeText,
			TenantID: consoleTenantID,
			UserID:   consoleUserID,
			Perms:    perms,
			RawText:  line,
		}
		_ = router.Dispatch(ctx, inv, consoleReplier{out: out})
	}

	if err := scanner.Err(); err != nil {
		slog.Error("Console input error", "error", err)
	}
}
