package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDelivers(t *testing.T) {
	hub := New[int]()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(1)
	assert.Equal(t, 1, <-ch)
}

func TestSlowSubscriberGetsLatest(t *testing.T) {
	hub := New[int]()
	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 1; i <= 10; i++ {
		hub.Publish(i)
	}

	assert.Equal(t, 10, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected backlog value %d", v)
	default:
	}
}

func TestCancelClosesChannel(t *testing.T) {
	hub := New[string]()
	ch, cancel := hub.Subscribe()
	require.Equal(t, 1, hub.Len())

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Len())

	// Publishing after cancel must not panic
	hub.Publish("x")
}

func TestClose(t *testing.T) {
	hub := New[int]()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Close()
	_, ok := <-ch
	assert.False(t, ok)

	late, _ := hub.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}
