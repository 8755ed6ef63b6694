package status

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStateMachineHappyPath(t *testing.T) {
	m := NewStateMachine(testLogger(), time.Minute)
	require.Equal(t, Starting, m.Current())

	now := time.Now()
	s, changed := m.SubmitStatusAction(Action{Kind: ActionDoneReplaying, Time: now})
	assert.True(t, changed)
	assert.Equal(t, Observing, s)

	s, changed = m.SubmitStatusAction(Action{Kind: ActionSelfEventReachedConsensus, Time: now})
	assert.True(t, changed)
	assert.Equal(t, Active, s)

	// Repeating the action changes nothing.
	_, changed = m.SubmitStatusAction(Action{Kind: ActionSelfEventReachedConsensus, Time: now})
	assert.False(t, changed)
}

func TestStateMachineObservationWindowViaHeartbeat(t *testing.T) {
	m := NewStateMachine(testLogger(), 50*time.Millisecond)

	start := time.Now()
	m.SubmitStatusAction(Action{Kind: ActionDoneReplaying, Time: start})

	_, changed := m.Heartbeat(start.Add(10 * time.Millisecond))
	assert.False(t, changed, "observation window not elapsed")

	s, changed := m.Heartbeat(start.Add(100 * time.Millisecond))
	assert.True(t, changed)
	assert.Equal(t, Active, s)
}

func TestStateMachineFallenBehindAndReconnect(t *testing.T) {
	m := NewStateMachine(testLogger(), time.Minute)
	now := time.Now()
	m.SubmitStatusAction(Action{Kind: ActionDoneReplaying, Time: now})
	m.SubmitStatusAction(Action{Kind: ActionSelfEventReachedConsensus, Time: now})

	s, changed := m.SubmitStatusAction(Action{Kind: ActionFallenBehind, Time: now})
	assert.True(t, changed)
	assert.Equal(t, Behind, s)

	s, changed = m.SubmitStatusAction(Action{Kind: ActionReconnectComplete, Time: now})
	assert.True(t, changed)
	assert.Equal(t, Reconnecting, s)

	s, changed = m.SubmitStatusAction(Action{Kind: ActionSelfEventReachedConsensus, Time: now})
	assert.True(t, changed)
	assert.Equal(t, Active, s)
}

func TestNexusPublishesStatus(t *testing.T) {
	n := NewNexus()
	assert.Equal(t, Starting, n.CurrentStatus())

	n.SetCurrentStatus(Active)
	assert.Equal(t, Active, n.CurrentStatus())
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "behind", Behind.String())
	assert.Equal(t, "starting", Starting.String())
}
