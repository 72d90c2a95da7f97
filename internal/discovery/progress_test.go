package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressPublishAndDrain(t *testing.T) {
	p := NewProgressTracker(10)
	p.Publish(10, "normalizing name")
	p.Publish(40, "querying agents")

	events := p.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, 10, events[0].Percentage)
	assert.Equal(t, "querying agents", events[1].Message)
	assert.Empty(t, p.Drain())
}

func TestProgressDropsOldestWhenFull(t *testing.T) {
	p := NewProgressTracker(2)
	p.Publish(10, "a")
	p.Publish(20, "b")
	p.Publish(30, "c")

	events := p.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].Message)
	assert.Equal(t, "c", events[1].Message)
}

func TestProgressStopFlag(t *testing.T) {
	p := NewProgressTracker(4)
	assert.False(t, p.Stopped())
	p.Stop()
	assert.True(t, p.Stopped())
}

func TestProgressFinishSilencesPublish(t *testing.T) {
	p := NewProgressTracker(4)
	p.Finish()
	assert.True(t, p.Done())
	p.Publish(99, "ignored")
	assert.Empty(t, p.Drain())
}
