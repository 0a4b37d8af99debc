package domain

import (
	"context"
	"database/sql"
	"time"
)

// --- Model types ---

// LedgerEntry is one user's balance row. Rows are created lazily on first
// reference and are never deleted.
type LedgerEntry struct {
	UserID    int64
	Balance   int64
	LastClaim time.Time
}

// BalanceRank is one leaderboard row.
type BalanceRank struct {
	UserID  int64
	Balance int64
}

// TenantSettings holds per-tenant configuration. A missing row is
// indistinguishable from the defaults: prefix "!" and no audit channel.
type TenantSettings struct {
	TenantID     int64
	AuditChannel sql.NullInt64
	Prefix       string
}

// SettingsPatch describes a partial settings update. A nil field is left
// unchanged; a non-nil AuditChannel with Valid=false explicitly clears the
// audit channel.
type SettingsPatch struct {
	Prefix       *string
	AuditChannel *sql.NullInt64
}

// Infraction is one append-only moderation record.
type Infraction struct {
	ID        int64
	UserID    int64
	Reason    string
	Timestamp time.Time
}

// --- Repository contracts ---

// LedgerRepository abstracts balance persistence. Every mutation is a single
// atomic statement or transaction; callers never observe a missing row.
type LedgerRepository interface {
	// Balance returns the user's balance, creating the row if absent.
	Balance(ctx context.Context, userID int64) (int64, error)

	// Adjust applies balance += delta unconditionally and returns the new
	// balance. Administrative adjustments may drive the balance negative.
	Adjust(ctx context.Context, userID int64, delta int64) (int64, error)

	// Withdraw decrements the balance only if at least amount is available,
	// returning ErrInsufficientFunds (and leaving the row untouched)
	// otherwise.
	Withdraw(ctx context.Context, userID int64, amount int64) (int64, error)

	// ClaimDaily credits amount and stamps the claim time in one transaction.
	// If now is within period of the previous claim it returns a
	// *CooldownError carrying the remaining wait and mutates nothing.
	ClaimDaily(ctx context.Context, userID int64, now time.Time, amount int64, period time.Duration) (int64, error)

	// Transfer moves amount from one user to another, all or nothing. A
	// failed funds guard returns ErrInsufficientFunds with neither balance
	// changed.
	Transfer(ctx context.Context, from, to int64, amount int64) error

	// Top returns up to limit rows ordered by balance descending, ties
	// broken by insertion order.
	Top(ctx context.Context, limit int) ([]BalanceRank, error)
}

// SettingsRepository abstracts tenant settings persistence.
type SettingsRepository interface {
	// Get returns the tenant's settings, creating the row with defaults if
	// absent.
	Get(ctx context.Context, tenantID int64) (*TenantSettings, error)

	// Update applies a partial update and returns the resulting settings.
	Update(ctx context.Context, tenantID int64, patch SettingsPatch) (*TenantSettings, error)
}

// InfractionRepository abstracts the append-only infraction log. There is no
// update or delete path.
type InfractionRepository interface {
	Record(ctx context.Context, userID int64, reason string, ts time.Time) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]Infraction, error)
}
