package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"windrose/internal/types"
)

func TestAuditLogRoundTrip(t *testing.T) {
	a, err := OpenAuditLog(t.TempDir())
	require.NoError(t, err)
	defer a.Close()

	a.Record(CallRecord{SessionID: "s1", Phase: types.PhaseRumble, Persona: "north", Round: 1, Tokens: 120, DurationMs: 900})
	a.Record(CallRecord{SessionID: "s1", Phase: types.PhaseRumble, Persona: "east", Round: 1, Error: "timeout"})
	a.Record(CallRecord{SessionID: "s2", Phase: types.PhaseKnit, Tokens: 300})

	calls, err := a.Calls("s1", 0)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	require.Equal(t, "north", calls[0].Persona)
	require.Equal(t, 120, calls[0].Tokens)
	require.Equal(t, "timeout", calls[1].Error)
	require.False(t, calls[0].CreatedAt.IsZero())

	other, err := a.Calls("s2", 0)
	require.NoError(t, err)
	require.Len(t, other, 1)
	require.Equal(t, types.PhaseKnit, other[0].Phase)
}

func TestAuditLogNilSafe(t *testing.T) {
	var a *AuditLog
	// Recording to a nil audit log must be a silent no-op.
	a.Record(CallRecord{SessionID: "s1", Phase: types.PhaseKnit})
	require.NoError(t, a.Close())
}
