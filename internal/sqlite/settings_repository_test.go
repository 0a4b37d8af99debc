package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AesthetixDev/koko/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestSettingsRepo_Get_UnseenTenantHasDefaults(t *testing.T) {
	repo := NewSettingsRepo(newTestDB(t))

	settings, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), settings.TenantID)
	assert.Equal(t, "!", settings.Prefix)
	assert.False(t, settings.AuditChannel.Valid)
}

func TestSettingsRepo_Update_PrefixOnly(t *testing.T) {
	repo := NewSettingsRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Update(ctx, 1, domain.SettingsPatch{
		AuditChannel: &sql.NullInt64{Int64: 555, Valid: true},
	})
	require.NoError(t, err)

	settings, err := repo.Update(ctx, 1, domain.SettingsPatch{Prefix: ptr("?")})
	require.NoError(t, err)

	assert.Equal(t, "?", settings.Prefix)
	// An absent patch field leaves the stored value alone.
	assert.Equal(t, sql.NullInt64{Int64: 555, Valid: true}, settings.AuditChannel)
}

func TestSettingsRepo_Update_ExplicitAuditChannelUnset(t *testing.T) {
	repo := NewSettingsRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Update(ctx, 1, domain.SettingsPatch{
		AuditChannel: &sql.NullInt64{Int64: 555, Valid: true},
	})
	require.NoError(t, err)

	settings, err := repo.Update(ctx, 1, domain.SettingsPatch{
		AuditChannel: &sql.NullInt64{},
	})
	require.NoError(t, err)

	assert.False(t, settings.AuditChannel.Valid)
	assert.Equal(t, "!", settings.Prefix)
}

func TestSettingsRepo_Update_CreatesRowLazily(t *testing.T) {
	repo := NewSettingsRepo(newTestDB(t))

	settings, err := repo.Update(context.Background(), 9, domain.SettingsPatch{Prefix: ptr("$")})
	require.NoError(t, err)

	assert.Equal(t, int64(9), settings.TenantID)
	assert.Equal(t, "$", settings.Prefix)
}

func TestSettingsRepo_TenantsAreIsolated(t *testing.T) {
	repo := NewSettingsRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Update(ctx, 1, domain.SettingsPatch{Prefix: ptr("?")})
	require.NoError(t, err)

	other, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "!", other.Prefix)
}
