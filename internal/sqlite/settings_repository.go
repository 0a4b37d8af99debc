package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AesthetixDev/koko/internal/domain"
)

// settingsColumns must match the Scan order in scanSettings.
const settingsColumns = `tenant_id, audit_channel, prefix`

// SettingsRepo implements domain.SettingsRepository backed by SQLite.
type SettingsRepo struct {
	db *DB
}

func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

const ensureSettingsRow = `INSERT INTO tenant_settings (tenant_id) VALUES (?) ON CONFLICT(tenant_id) DO NOTHING`

func scanSettings(row *sql.Row) (*domain.TenantSettings, error) {
	var st domain.TenantSettings
	if err := row.Scan(&st.TenantID, &st.AuditChannel, &st.Prefix); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *SettingsRepo) Get(ctx context.Context, tenantID int64) (*domain.TenantSettings, error) {
	var settings *domain.TenantSettings
	err := r.db.WithTx(ctx, "settings.get", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureSettingsRow, tenantID); err != nil {
			return fmt.Errorf("failed to ensure settings row: %w", err)
		}
		var err error
		settings, err = scanSettings(tx.QueryRowContext(ctx,
			`SELECT `+settingsColumns+` FROM tenant_settings WHERE tenant_id = ?`, tenantID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *SettingsRepo) Update(ctx context.Context, tenantID int64, patch domain.SettingsPatch) (*domain.TenantSettings, error) {
	var settings *domain.TenantSettings
	err := r.db.WithTx(ctx, "settings.update", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureSettingsRow, tenantID); err != nil {
			return fmt.Errorf("failed to ensure settings row: %w", err)
		}

		if patch.Prefix != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE tenant_settings SET prefix = ? WHERE tenant_id = ?`,
				*patch.Prefix, tenantID); err != nil {
				return fmt.Errorf("failed to update prefix: %w", err)
			}
		}

		if patch.AuditChannel != nil {
			// Valid=false writes NULL: an explicit unset, distinct from an
			// absent patch field.
			if _, err := tx.ExecContext(ctx,
				`UPDATE tenant_settings SET audit_channel = ? WHERE tenant_id = ?`,
				*patch.AuditChannel, tenantID); err != nil {
				return fmt.Errorf("failed to update audit channel: %w", err)
			}
		}

		var err error
		settings, err = scanSettings(tx.QueryRowContext(ctx,
			`SELECT `+settingsColumns+` FROM tenant_settings WHERE tenant_id = ?`, tenantID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}
