package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfractionRepo_RecordAndList(t *testing.T) {
	repo := NewInfractionRepo(newTestDB(t))
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := repo.Record(ctx, 1, "spam", ts)
	require.NoError(t, err)
	second, err := repo.Record(ctx, 1, "spam again", ts.Add(time.Hour))
	require.NoError(t, err)
	assert.Greater(t, second, first)

	_, err = repo.Record(ctx, 2, "unrelated", ts)
	require.NoError(t, err)

	infractions, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, infractions, 2)

	assert.Equal(t, first, infractions[0].ID)
	assert.Equal(t, "spam", infractions[0].Reason)
	assert.True(t, infractions[0].Timestamp.Equal(ts))
	assert.Equal(t, "spam again", infractions[1].Reason)
}

func TestInfractionRepo_ListByUser_Empty(t *testing.T) {
	repo := NewInfractionRepo(newTestDB(t))

	infractions, err := repo.ListByUser(context.Background(), 404)
	require.NoError(t, err)
	assert.Empty(t, infractions)
}
