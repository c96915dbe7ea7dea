package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyReplacesVisible(t *testing.T) {
	f := New(time.Minute)

	f.Notify(SeverityError, "first")
	f.Notify(SeveritySuccess, "second")

	n, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, "second", n.Message)
	assert.Equal(t, SeveritySuccess, n.Severity)
}

func TestNotifyIgnoresEmptyMessage(t *testing.T) {
	f := New(time.Minute)
	f.Notify(SeverityError, "   ")
	_, ok := f.Current()
	assert.False(t, ok)
}

func TestNotifyAutoDismiss(t *testing.T) {
	f := New(20 * time.Millisecond)

	dismissed := make(chan Notification, 1)
	f.Subscribe(func(n Notification, visible bool) {
		if !visible {
			dismissed <- n
		}
	})

	f.Notify(SeverityWarning, "bye soon")
	select {
	case n := <-dismissed:
		assert.Equal(t, "bye soon", n.Message)
	case <-time.After(time.Second):
		t.Fatal("notification was not auto-dismissed")
	}
	_, ok := f.Current()
	assert.False(t, ok)
}

func TestStaleTimerDoesNotDismissNewer(t *testing.T) {
	f := New(40 * time.Millisecond)

	f.Notify(SeverityError, "old")
	time.Sleep(25 * time.Millisecond)
	f.Notify(SeverityError, "new")
	time.Sleep(25 * time.Millisecond)

	// The first timer would have fired by now; the newer message stays.
	n, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, "new", n.Message)
}

func TestSubscribeEvents(t *testing.T) {
	f := New(time.Minute)

	type event struct {
		msg     string
		visible bool
	}
	var events []event
	unsubscribe := f.Subscribe(func(n Notification, visible bool) {
		events = append(events, event{n.Message, visible})
	})

	f.Notify(SeveritySuccess, "saved")
	f.Dismiss()
	f.Dismiss()
	unsubscribe()
	f.Notify(SeveritySuccess, "unseen")

	assert.Equal(t, []event{{"saved", true}, {"saved", false}}, events)
}
