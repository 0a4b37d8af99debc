package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AesthetixDev/koko/internal/dispatch"
)

type mockGateway struct {
	kickFunc func(ctx context.Context, tenantID, userID int64, reason string) error
	banFunc  func(ctx context.Context, tenantID, userID int64, reason string) error
}

func (m *mockGateway) Kick(ctx context.Context, tenantID, userID int64, reason string) error {
	return m.kickFunc(ctx, tenantID, userID, reason)
}

func (m *mockGateway) Ban(ctx context.Context, tenantID, userID int64, reason string) error {
	return m.banFunc(ctx, tenantID, userID, reason)
}

type mockRecorder struct {
	calls  int
	userID int64
	reason string
	ts     time.Time
	err    error
}

func (m *mockRecorder) Record(_ context.Context, userID int64, reason string, ts time.Time) (int64, error) {
	m.calls++
	m.userID = userID
	m.reason = reason
	m.ts = ts
	return 1, m.err
}

type mockAudit struct {
	messages []string
}

func (m *mockAudit) Log(_ context.Context, _ int64, message string) {
	m.messages = append(m.messages, message)
}

type captureReplier struct {
	last dispatch.Reply
	sent bool
}

func (c *captureReplier) Reply(_ context.Context, r dispatch.Reply) error {
	c.last = r
	c.sent = true
	return nil
}

func (c *captureReplier) EphemeralCapable() bool { return false }

func inv(args ...string) dispatch.Invocation {
	return dispatch.Invocation{TenantID: 1, UserID: 7, Args: args}
}

func TestHandleKick(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	var kicked int64
	gw := &mockGateway{
		kickFunc: func(_ context.Context, tenantID, userID int64, reason string) error {
			assert.Equal(t, int64(1), tenantID)
			assert.Equal(t, "spamming", reason)
			kicked = userID
			return nil
		},
	}
	recorder := &mockRecorder{}
	audit := &mockAudit{}
	m := New(gw, recorder, audit, clock)
	rec := &captureReplier{}

	require.NoError(t, m.handleKick(context.Background(), inv("<@9>", "spamming"), rec))

	assert.Equal(t, int64(9), kicked)
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, int64(9), recorder.userID)
	assert.Equal(t, "spamming", recorder.reason)
	assert.Equal(t, clock.Now(), recorder.ts)
	assert.Equal(t, "Kicked <@9> for spamming", rec.last.Text)
	require.Len(t, audit.messages, 1)
	assert.Equal(t, "<@7> kicked <@9> for spamming", audit.messages[0])
}

func TestHandleBan_MultiWordReason(t *testing.T) {
	gw := &mockGateway{
		banFunc: func(_ context.Context, _, _ int64, reason string) error {
			assert.Equal(t, "repeat rule violations", reason)
			return nil
		},
	}
	m := New(gw, &mockRecorder{}, &mockAudit{}, clockwork.NewFakeClock())
	rec := &captureReplier{}

	require.NoError(t, m.handleBan(context.Background(), inv("<@9>", "repeat", "rule", "violations"), rec))
	assert.Equal(t, "Banned <@9> for repeat rule violations", rec.last.Text)
}

func TestHandleKick_NoReason(t *testing.T) {
	gw := &mockGateway{
		kickFunc: func(context.Context, int64, int64, string) error { return nil },
	}
	m := New(gw, &mockRecorder{}, &mockAudit{}, clockwork.NewFakeClock())
	rec := &captureReplier{}

	require.NoError(t, m.handleKick(context.Background(), inv("<@9>"), rec))
	assert.Equal(t, "Kicked <@9> for No reason", rec.last.Text)
}

func TestHandleKick_BadArgs(t *testing.T) {
	m := New(&mockGateway{}, &mockRecorder{}, &mockAudit{}, clockwork.NewFakeClock())

	for _, args := range [][]string{{}, {"notauser"}} {
		err := m.handleKick(context.Background(), inv(args...), &captureReplier{})
		var usage *dispatch.UsageError
		require.ErrorAs(t, err, &usage, args)
		assert.Equal(t, "kick <user> [reason]", usage.Usage)
	}
}

func TestHandleKick_GatewayFailureAborts(t *testing.T) {
	gw := &mockGateway{
		kickFunc: func(context.Context, int64, int64, string) error {
			return errors.New("missing permissions")
		},
	}
	recorder := &mockRecorder{}
	m := New(gw, recorder, &mockAudit{}, clockwork.NewFakeClock())
	rec := &captureReplier{}

	err := m.handleKick(context.Background(), inv("<@9>"), rec)
	require.Error(t, err)
	assert.Zero(t, recorder.calls)
	assert.False(t, rec.sent)
}

func TestHandleKick_InfractionWriteFailureIsNotFatal(t *testing.T) {
	gw := &mockGateway{
		kickFunc: func(context.Context, int64, int64, string) error { return nil },
	}
	recorder := &mockRecorder{err: errors.New("db locked")}
	audit := &mockAudit{}
	m := New(gw, recorder, audit, clockwork.NewFakeClock())
	rec := &captureReplier{}

	require.NoError(t, m.handleKick(context.Background(), inv("<@9>", "spam"), rec))

	// The command still completes; the failure lands in the audit trail.
	assert.True(t, rec.sent)
	assert.Len(t, audit.messages, 2)
	assert.Contains(t, audit.messages[0], "failed to record infraction")
}
