// Package fun holds the entertainment commands.
package fun

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/AesthetixDev/koko/internal/dispatch"
)

const ModuleName = "fun"

type Module struct {
	// roll is swappable so tests get deterministic dice.
	roll func() int
}

func New() *Module {
	return &Module{roll: func() int { return rand.IntN(6) + 1 }}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Register(reg *dispatch.Registry) {
	reg.Register(ModuleName, false,
		dispatch.Command{
			Name:        "roll",
			Description: "Roll a six-sided die.",
			Handler:     m.handleRoll,
		},
	)
}

func (m *Module) handleRoll(ctx context.Context, inv dispatch.Invocation, reply dispatch.Replier) error {
	return reply.Reply(ctx, dispatch.Reply{
		Text: fmt.Sprintf("You rolled **%d**", m.roll()),
	})
}
