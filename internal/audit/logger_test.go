package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AesthetixDev/koko/internal/domain"
)

type mockSettings struct {
	settings *domain.TenantSettings
	err      error
}

func (m *mockSettings) Get(context.Context, int64) (*domain.TenantSettings, error) {
	return m.settings, m.err
}

type mockSender struct {
	calls     int
	channelID int64
	text      string
	err       error
}

func (m *mockSender) SendMessage(_ context.Context, _ int64, channelID int64, text string) error {
	m.calls++
	m.channelID = channelID
	m.text = text
	return m.err
}

func TestLogger_Log_SendsToConfiguredChannel(t *testing.T) {
	sender := &mockSender{}
	logger := NewLogger(&mockSettings{settings: &domain.TenantSettings{
		TenantID:     1,
		AuditChannel: sql.NullInt64{Int64: 555, Valid: true},
		Prefix:       "!",
	}}, sender)

	logger.Log(context.Background(), 1, "something happened")

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, int64(555), sender.channelID)
	assert.Equal(t, "something happened", sender.text)
}

func TestLogger_Log_NoChannelConfigured(t *testing.T) {
	sender := &mockSender{}
	logger := NewLogger(&mockSettings{settings: &domain.TenantSettings{TenantID: 1, Prefix: "!"}}, sender)

	logger.Log(context.Background(), 1, "something happened")

	assert.Zero(t, sender.calls)
}

func TestLogger_Log_DirectMessageIsNoop(t *testing.T) {
	sender := &mockSender{}
	logger := NewLogger(&mockSettings{}, sender)

	logger.Log(context.Background(), 0, "something happened")

	assert.Zero(t, sender.calls)
}

func TestLogger_Log_SwallowsFailures(t *testing.T) {
	// Settings failure: no panic, no send.
	sender := &mockSender{}
	logger := NewLogger(&mockSettings{err: errors.New("db down")}, sender)
	logger.Log(context.Background(), 1, "msg")
	assert.Zero(t, sender.calls)

	// Send failure: still returns normally.
	sender = &mockSender{err: errors.New("gateway down")}
	logger = NewLogger(&mockSettings{settings: &domain.TenantSettings{
		AuditChannel: sql.NullInt64{Int64: 5, Valid: true},
	}}, sender)
	logger.Log(context.Background(), 1, "msg")
	assert.Equal(t, 1, sender.calls)
}
