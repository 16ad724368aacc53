package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenniferm/eunoia-backend/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCallLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.CreateCall(ctx, &domain.Call{
		CallID:  "call_abc",
		AgentID: "agent_1",
		Status:  domain.CallStatusRegistered,
	})
	require.NoError(t, err)

	call, err := st.GetCall(ctx, "call_abc")
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.Equal(t, "agent_1", call.AgentID)
	assert.Equal(t, domain.CallStatusRegistered, call.Status)
	assert.Empty(t, call.EndReason)
	assert.Nil(t, call.EndedAt)

	require.NoError(t, st.UpdateCallStatus(ctx, "call_abc", domain.CallStatusOngoing))
	call, err = st.GetCall(ctx, "call_abc")
	require.NoError(t, err)
	assert.Equal(t, domain.CallStatusOngoing, call.Status)

	require.NoError(t, st.EndCall(ctx, "call_abc", domain.EndReasonAgentHangup))
	call, err = st.GetCall(ctx, "call_abc")
	require.NoError(t, err)
	assert.Equal(t, domain.CallStatusEnded, call.Status)
	assert.Equal(t, domain.EndReasonAgentHangup, call.EndReason)
	assert.NotNil(t, call.EndedAt)
}

func TestGetCallNotFound(t *testing.T) {
	st := newTestStore(t)

	call, err := st.GetCall(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, call)
}

func TestListCallsLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"call_1", "call_2", "call_3"} {
		require.NoError(t, st.CreateCall(ctx, &domain.Call{
			CallID:  id,
			AgentID: "agent_1",
			Status:  domain.CallStatusRegistered,
		}))
	}

	calls, err := st.ListCalls(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, calls, 3)

	calls, err = st.ListCalls(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, calls, 2)
}

func TestAppointments(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.CreateAppointment(ctx, &domain.Appointment{
		AppointmentID: "appt_1",
		CallID:        "call_abc",
		Date:          "2024-05-01",
	})
	require.NoError(t, err)

	appts, err := st.ListAppointments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "call_abc", appts[0].CallID)
	assert.Equal(t, "2024-05-01", appts[0].Date)
	assert.False(t, appts[0].CreatedAt.IsZero())
}
