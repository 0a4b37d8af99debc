// Package economy implements the Stars economy commands: balance, daily
// claim, transfers, administrative grant/revoke, the leaderboard, and the
// shop. Each command is one shape-agnostic handler body.
package economy

import (
	"context"
	"fmt"
	"strings"

	"github.com/AesthetixDev/koko/internal/dispatch"
	"github.com/AesthetixDev/koko/internal/domain"
)

const ModuleName = "economy"

const leaderboardSize = 10

// ledgerService is the slice of the ledger service this module uses.
type ledgerService interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	Grant(ctx context.Context, userID int64, amount int64) (int64, error)
	Revoke(ctx context.Context, userID int64, amount int64) (int64, error)
	Spend(ctx context.Context, userID int64, amount int64) (int64, error)
	ClaimDaily(ctx context.Context, userID int64) (int64, error)
	Transfer(ctx context.Context, from, to int64, amount int64) error
	Leaderboard(ctx context.Context, limit int) ([]domain.BalanceRank, error)
}

type auditLogger interface {
	Log(ctx context.Context, tenantID int64, message string)
}

// shopItems is the static shop catalogue.
var shopItems = []struct {
	Name  string
	Price int64
}{
	{Name: "cool_role", Price: 100},
}

type Module struct {
	ledger ledgerService
	audit  auditLogger
	daily  int64
}

func New(ledger ledgerService, audit auditLogger, dailyAmount int64) *Module {
	return &Module{ledger: ledger, audit: audit, daily: dailyAmount}
}

func (m *Module) Name() string { return ModuleName }

// Register adds the economy commands to the dispatch table.
func (m *Module) Register(reg *dispatch.Registry) {
	reg.Register(ModuleName, false,
		dispatch.Command{
			Name:        "balance",
			Description: "Check your Stars balance.",
			Handler:     m.handleBalance,
		},
		dispatch.Command{
			Name:        "daily",
			Description: "Claim daily Stars.",
			Handler:     m.handleDaily,
		},
		dispatch.Command{
			Name:        "transfer",
			Description: "Transfer Stars to another user.",
			Usage:       "transfer <user> <amount>",
			Handler:     m.handleTransfer,
		},
		dispatch.Command{
			Name:          "grant",
			Description:   "Add Stars to a user.",
			Usage:         "grant <user> <amount>",
			RequiredPerms: dispatch.PermAdministrator,
			Handler:       m.handleGrant,
		},
		dispatch.Command{
			Name:          "revoke",
			Description:   "Remove Stars from a user.",
			Usage:         "revoke <user> <amount>",
			RequiredPerms: dispatch.PermAdministrator,
			Handler:       m.handleRevoke,
		},
		dispatch.Command{
			Name:        "leaderboard",
			Description: "Top users by Stars.",
			Handler:     m.handleLeaderboard,
		},
		dispatch.Command{
			Name:        "shop",
			Description: "View shop items or buy one.",
			Usage:       "shop [buy <item>]",
			Handler:     m.handleShop,
		},
	)
}

func (m *Module) handleBalance(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	balance, err := m.ledger.Balance(ctx, inv.UserID)
	if err != nil {
		return err
	}
	return reply.Reply(ctx, dispatch.Reply{
		Text:      fmt.Sprintf("You have %d ✭", balance),
		Ephemeral: true,
	})
}

func (m *Module) handleDaily(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	balance, err := m.ledger.ClaimDaily(ctx, inv.UserID)
	if err != nil {
		return err
	}

	m.audit.Log(ctx, inv.TenantID, fmt.Sprintf("%s claimed daily stars", dispatch.Mention(inv.UserID)))
	return reply.Reply(ctx, dispatch.Reply{
		Text:      fmt.Sprintf("You claimed %d ✭! You now have %d.", m.daily, balance),
		Ephemeral: true,
	})
}

func (m *Module) handleTransfer(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	if len(inv.Args) != 2 {
		return &dispatch.UsageError{Usage: "transfer <user> <amount>"}
	}
	target, err := dispatch.ParseUserArg(inv.Args[0])
	if err != nil {
		return &dispatch.UsageError{Usage: "transfer <user> <amount>"}
	}
	amount, err := dispatch.ParseAmountArg(inv.Args[1])
	if err != nil {
		return &dispatch.UsageError{Usage: "transfer <user> <amount>"}
	}

	if err := m.ledger.Transfer(ctx, inv.UserID, target, amount); err != nil {
		return err
	}

	m.audit.Log(ctx, inv.TenantID, fmt.Sprintf("%s sent %d stars to %s",
		dispatch.Mention(inv.UserID), amount, dispatch.Mention(target)))
	return reply.Reply(ctx, dispatch.Reply{
		Text:      fmt.Sprintf("Transferred %d ✭ to %s.", amount, dispatch.Mention(target)),
		Ephemeral: true,
	})
}

func (m *Module) handleGrant(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	target, amount, err := parseUserAmount(inv.Args, "grant <user> <amount>")
	if err != nil {
		return err
	}

	if _, err := m.ledger.Grant(ctx, target, amount); err != nil {
		return err
	}

	m.audit.Log(ctx, inv.TenantID, fmt.Sprintf("%s added %d stars to %s",
		dispatch.Mention(inv.UserID), amount, dispatch.Mention(target)))
	return reply.Reply(ctx, dispatch.Reply{
		Text:      fmt.Sprintf("Added %d ✭ to %s.", amount, dispatch.Mention(target)),
		Ephemeral: true,
	})
}

func (m *Module) handleRevoke(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	target, amount, err := parseUserAmount(inv.Args, "revoke <user> <amount>")
	if err != nil {
		return err
	}

	if _, err := m.ledger.Revoke(ctx, target, amount); err != nil {
		return err
	}

	m.audit.Log(ctx, inv.TenantID, fmt.Sprintf("%s removed %d stars from %s",
		dispatch.Mention(inv.UserID), amount, dispatch.Mention(target)))
	return reply.Reply(ctx, dispatch.Reply{
		Text:      fmt.Sprintf("Removed %d ✭ from %s.", amount, dispatch.Mention(target)),
		Ephemeral: true,
	})
}

func (m *Module) handleLeaderboard(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	ranks, err := m.ledger.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		return err
	}

	description := "No data."
	if len(ranks) > 0 {
		lines := make([]string, 0, len(ranks))
		for i, rank := range ranks {
			lines = append(lines, fmt.Sprintf("%d. %s - %d ✭", i+1, dispatch.Mention(rank.UserID), rank.Balance))
		}
		description = strings.Join(lines, "\n")
	}

	return reply.Reply(ctx, dispatch.Reply{
		Embed: &dispatch.Embed{
			Title:       "Stars Leaderboard",
			Description: description,
		},
	})
}

func (m *Module) handleShop(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	if len(inv.Args) == 0 {
		lines := make([]string, 0, len(shopItems))
		for _, item := range shopItems {
			lines = append(lines, fmt.Sprintf("%s - %d ✭", item.Name, item.Price))
		}
		return reply.Reply(ctx, dispatch.Reply{Text: strings.Join(lines, "\n"), Ephemeral: true})
	}

	if len(inv.Args) != 2 || inv.Args[0] != "buy" {
		return &dispatch.UsageError{Usage: "shop [buy <item>]"}
	}

	for _, item := range shopItems {
		if item.Name != inv.Args[1] {
			continue
		}
		if _, err := m.ledger.Spend(ctx, inv.UserID, item.Price); err != nil {
			return err
		}
		m.audit.Log(ctx, inv.TenantID, fmt.Sprintf("%s bought %s for %d stars",
			dispatch.Mention(inv.UserID), item.Name, item.Price))
		return reply.Reply(ctx, dispatch.Reply{
			Text:      fmt.Sprintf("You bought %s for %d ✭.", item.Name, item.Price),
			Ephemeral: true,
		})
	}
	return reply.Reply(ctx, dispatch.Reply{
		Text:      fmt.Sprintf("No such item %q.", inv.Args[1]),
		Ephemeral: true,
	})
}

func parseUserAmount(args []string, usage string) (int64, int64, error) {
	if len(args) != 2 {
		return 0, 0, &dispatch.UsageError{Usage: usage}
	}
	target, err := dispatch.ParseUserArg(args[0])
	if err != nil {
		return 0, 0, &dispatch.UsageError{Usage: usage}
	}
	amount, err := dispatch.ParseAmountArg(args[1])
	if err != nil {
		return 0, 0, &dispatch.UsageError{Usage: usage}
	}
	return target, amount, nil
}

