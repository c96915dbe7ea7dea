package busy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalOverlappingRequests(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"single request", 1},
		{"two overlapping", 2},
		{"many overlapping", 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			var transitions []bool
			s.Subscribe(func(b bool) { transitions = append(transitions, b) })

			for i := 0; i < tt.n; i++ {
				s.Begin()
				assert.True(t, s.Busy())
			}
			for i := 0; i < tt.n-1; i++ {
				s.End()
				assert.True(t, s.Busy(), "still busy with %d outstanding", tt.n-1-i)
			}
			s.End()
			assert.False(t, s.Busy())

			// initial idle, one busy, one idle
			assert.Equal(t, []bool{false, true, false}, transitions)
		})
	}
}

func TestSignalEndSaturates(t *testing.T) {
	s := New()
	s.End()
	s.End()
	assert.Equal(t, 0, s.InFlight())

	s.SetBusy(true)
	assert.True(t, s.Busy())
	s.SetBusy(false)
	s.SetBusy(false)
	assert.False(t, s.Busy())
}

func TestSignalLateSubscriber(t *testing.T) {
	s := New()
	s.Begin()
	s.Begin()

	var got []bool
	unsubscribe := s.Subscribe(func(b bool) { got = append(got, b) })
	s.End()
	s.End()

	assert.Equal(t, []bool{true, false}, got)

	unsubscribe()
	s.Begin()
	assert.Len(t, got, 2, "unsubscribed callback must not fire")
}

func TestSignalConcurrentRequests(t *testing.T) {
	s := New()

	var mu sync.Mutex
	var last bool
	s.Subscribe(func(b bool) {
		mu.Lock()
		last = b
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Begin()
			s.End()
		}()
	}
	wg.Wait()

	require.Equal(t, 0, s.InFlight())
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, last, "final observed state must be idle")
}
