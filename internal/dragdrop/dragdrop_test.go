package dragdrop

import (
	"testing"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropOnLane(t *testing.T) {
	m := New()
	require.NoError(t, m.Start("7"))
	assert.Equal(t, Dragging, m.State())

	m.Enter(api.StatusPending)
	m.Leave(api.StatusPending)
	m.Enter(api.StatusInProgress)
	assert.True(t, m.IsTarget(api.StatusInProgress))
	assert.False(t, m.IsTarget(api.StatusPending))

	out := m.Release()
	assert.Equal(t, Dropped, out.State)
	require.NotNil(t, out.Drop)
	assert.Equal(t, Drop{TaskID: 7, Status: api.StatusInProgress}, *out.Drop)

	assert.Equal(t, Idle, m.State())
	assert.False(t, m.IsTarget(api.StatusInProgress))
}

func TestEnterWithoutLeaveMovesTarget(t *testing.T) {
	m := New()
	require.NoError(t, m.Start("1"))
	m.Enter(api.StatusPending)
	m.Enter(api.StatusReview)

	assert.False(t, m.IsTarget(api.StatusPending))
	assert.True(t, m.IsTarget(api.StatusReview))

	// A late leave for the previous lane must not clear the new target.
	m.Leave(api.StatusPending)
	lane, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, api.StatusReview, lane)
}

func TestReleaseOverNothingCancels(t *testing.T) {
	m := New()
	require.NoError(t, m.Start("3"))
	m.Enter(api.StatusReview)
	m.Leave(api.StatusReview)
	assert.Equal(t, OverNothing, m.State())

	out := m.Release()
	assert.Equal(t, Cancelled, out.State)
	assert.Nil(t, out.Drop)
	assert.Equal(t, Idle, m.State())
}

func TestReleaseWithoutEnterCancels(t *testing.T) {
	m := New()
	require.NoError(t, m.Start("3"))
	out := m.Release()
	assert.Equal(t, Cancelled, out.State)
	assert.Nil(t, out.Drop)
}

func TestBadPayloadDropsNothing(t *testing.T) {
	for _, payload := range []string{"", "abc", "1.5"} {
		t.Run(payload, func(t *testing.T) {
			m := New()
			require.NoError(t, m.Start(payload))
			m.Enter(api.StatusCompleted)
			out := m.Release()
			assert.Equal(t, Dropped, out.State)
			assert.Nil(t, out.Drop)
			assert.Equal(t, Idle, m.State())
		})
	}
}

func TestCancel(t *testing.T) {
	m := New()
	require.NoError(t, m.Start("5"))
	m.Enter(api.StatusPending)
	out := m.Cancel()
	assert.Equal(t, Cancelled, out.State)
	assert.Nil(t, out.Drop)
	assert.Equal(t, Idle, m.State())
	assert.Empty(t, m.Payload())
}

func TestStartWhileActiveFails(t *testing.T) {
	m := New()
	require.NoError(t, m.Start("5"))
	assert.Error(t, m.Start("6"))
	assert.Equal(t, "5", m.Payload(), "payload is fixed for the gesture")
}

func TestIdleEventsAreIgnored(t *testing.T) {
	m := New()
	m.Enter(api.StatusPending)
	m.Leave(api.StatusPending)
	assert.Equal(t, Idle, m.State())
	assert.False(t, m.IsTarget(api.StatusPending))

	out := m.Release()
	assert.Equal(t, Idle, out.State)
	assert.Nil(t, out.Drop)
	assert.Equal(t, Idle, m.Cancel().State)
}

func TestAtMostOneDropPerGesture(t *testing.T) {
	m := New()
	require.NoError(t, m.Start("9"))
	m.Enter(api.StatusReview)

	drops := 0
	for range 3 {
		if m.Release().Drop != nil {
			drops++
		}
	}
	assert.Equal(t, 1, drops)
}

func TestSameLaneDropStillEmits(t *testing.T) {
	m := New()
	require.NoError(t, m.Start("4"))
	m.Enter(api.StatusPending)
	out := m.Release()
	require.NotNil(t, out.Drop)
	assert.Equal(t, api.StatusPending, out.Drop.Status)
}
