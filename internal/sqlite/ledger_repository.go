package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AesthetixDev/koko/internal/domain"
)

// LedgerRepo implements domain.LedgerRepository backed by SQLite.
//
// Every mutation is either a single guarded UPDATE or a short transaction
// pairing the lazy-create insert with the statement that needs the row. No
// operation reads a balance in one transaction and writes it in another.
type LedgerRepo struct {
	db *DB
}

func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

const ensureLedgerRow = `INSERT INTO ledger (user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING`

func (r *LedgerRepo) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.WithTx(ctx, "ledger.balance", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureLedgerRow, userID); err != nil {
			return fmt.Errorf("failed to ensure ledger row: %w", err)
		}
		return tx.QueryRowContext(ctx,
			`SELECT balance FROM ledger WHERE user_id = ?`, userID).Scan(&balance)
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *LedgerRepo) Adjust(ctx context.Context, userID int64, delta int64) (int64, error) {
	var balance int64
	err := r.db.WithTx(ctx, "ledger.adjust", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureLedgerRow, userID); err != nil {
			return fmt.Errorf("failed to ensure ledger row: %w", err)
		}
		return tx.QueryRowContext(ctx,
			`UPDATE ledger SET balance = balance + ? WHERE user_id = ? RETURNING balance`,
			delta, userID).Scan(&balance)
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *LedgerRepo) Withdraw(ctx context.Context, userID int64, amount int64) (int64, error) {
	var balance int64
	err := r.db.WithTx(ctx, "ledger.withdraw", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureLedgerRow, userID); err != nil {
			return fmt.Errorf("failed to ensure ledger row: %w", err)
		}
		err := tx.QueryRowContext(ctx,
			`UPDATE ledger SET balance = balance - ? WHERE user_id = ? AND balance >= ? RETURNING balance`,
			amount, userID, amount).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInsufficientFunds
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *LedgerRepo) ClaimDaily(ctx context.Context, userID int64, now time.Time, amount int64, period time.Duration) (int64, error) {
	var balance int64
	err := r.db.WithTx(ctx, "ledger.claim_daily", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureLedgerRow, userID); err != nil {
			return fmt.Errorf("failed to ensure ledger row: %w", err)
		}

		var lastClaim float64
		if err := tx.QueryRowContext(ctx,
			`SELECT last_claim FROM ledger WHERE user_id = ?`, userID).Scan(&lastClaim); err != nil {
			return fmt.Errorf("failed to read last claim: %w", err)
		}

		if elapsed := now.Sub(fromUnixSeconds(lastClaim)); elapsed < period {
			return &domain.CooldownError{Remaining: period - elapsed}
		}

		// Same transaction as the read above: two concurrent claims cannot
		// both pass the cooldown check.
		return tx.QueryRowContext(ctx,
			`UPDATE ledger SET balance = balance + ?, last_claim = ? WHERE user_id = ? RETURNING balance`,
			amount, toUnixSeconds(now), userID).Scan(&balance)
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *LedgerRepo) Transfer(ctx context.Context, from, to int64, amount int64) error {
	return r.db.WithTx(ctx, "ledger.transfer", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureLedgerRow, from); err != nil {
			return fmt.Errorf("failed to ensure sender row: %w", err)
		}
		if _, err := tx.ExecContext(ctx, ensureLedgerRow, to); err != nil {
			return fmt.Errorf("failed to ensure recipient row: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE ledger SET balance = balance - ? WHERE user_id = ? AND balance >= ?`,
			amount, from, amount)
		if err != nil {
			return fmt.Errorf("failed to debit sender: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read debit result: %w", err)
		}
		if n == 0 {
			return domain.ErrInsufficientFunds
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE ledger SET balance = balance + ? WHERE user_id = ?`, amount, to); err != nil {
			return fmt.Errorf("failed to credit recipient: %w", err)
		}
		return nil
	})
}

func (r *LedgerRepo) Top(ctx context.Context, limit int) ([]domain.BalanceRank, error) {
	var ranks []domain.BalanceRank
	err := r.db.WithTx(ctx, "ledger.top", func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT user_id, balance FROM ledger ORDER BY balance DESC, rowid ASC LIMIT ?`, limit)
		if err != nil {
			return fmt.Errorf("failed to query leaderboard: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var rank domain.BalanceRank
			if err := rows.Scan(&rank.UserID, &rank.Balance); err != nil {
				return fmt.Errorf("failed to scan leaderboard row: %w", err)
			}
			ranks = append(ranks, rank)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return ranks, nil
}

// Claim timestamps are stored as unix seconds (REAL) with millisecond
// precision.
func toUnixSeconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000.0
}

func fromUnixSeconds(s float64) time.Time {
	return time.UnixMilli(int64(s * 1000.0))
}
