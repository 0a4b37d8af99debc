// Package ledger exposes the balance operations as a service: atomic
// adjustments, the daily claim cooldown, peer transfers, and the leaderboard.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AesthetixDev/koko/internal/domain"
)

// Service wraps the ledger repository with claim policy and a clock. All
// concurrency guarantees live in the repository's atomic statements; the
// service adds validation and the notion of "now".
type Service struct {
	repo   domain.LedgerRepository
	clock  clockwork.Clock
	amount int64
	period time.Duration
}

// NewService creates the ledger service. amount and period define the daily
// claim reward and its cooldown.
func NewService(repo domain.LedgerRepository, clock clockwork.Clock, amount int64, period time.Duration) *Service {
	return &Service{repo: repo, clock: clock, amount: amount, period: period}
}

// Balance returns the user's balance, creating the ledger row if absent.
func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	return s.repo.Balance(ctx, userID)
}

// Grant adds amount to the user's balance. Administrative: no floor applies.
func (s *Service) Grant(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	return s.repo.Adjust(ctx, userID, amount)
}

// Revoke removes amount from the user's balance. Administrative: the balance
// may go negative, matching the admin override the grant/revoke commands have
// always had.
func (s *Service) Revoke(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("revoke amount must be positive, got %d", amount)
	}
	return s.repo.Adjust(ctx, userID, -amount)
}

// Spend withdraws amount with a non-negative floor, returning
// ErrInsufficientFunds if the guard fails.
func (s *Service) Spend(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("spend amount must be positive, got %d", amount)
	}
	return s.repo.Withdraw(ctx, userID, amount)
}

// ClaimDaily credits the daily reward if the cooldown has elapsed, returning
// the new balance, or a *domain.CooldownError carrying the remaining wait.
func (s *Service) ClaimDaily(ctx context.Context, userID int64) (int64, error) {
	return s.repo.ClaimDaily(ctx, userID, s.clock.Now(), s.amount, s.period)
}

// Transfer moves amount between users, all or nothing.
func (s *Service) Transfer(ctx context.Context, from, to int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %d", amount)
	}
	if from == to {
		return fmt.Errorf("cannot transfer to yourself")
	}
	return s.repo.Transfer(ctx, from, to, amount)
}

// Leaderboard returns the top balances, highest first.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]domain.BalanceRank, error) {
	return s.repo.Top(ctx, limit)
}
