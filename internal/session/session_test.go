package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"", RoleGuest},
		{"admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{" guest ", RoleGuest},
		{"customer", RoleCustomer},
		{"user", RoleCustomer},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.in))
		})
	}
}

func TestStoresRoundTrip(t *testing.T) {
	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			_, ok := store.Get()
			require.False(t, ok)

			require.NoError(t, store.Set("tok-1", RoleAdmin, time.Hour))
			got, ok := store.Get()
			require.True(t, ok)
			assert.Equal(t, "tok-1", got.Token)
			assert.Equal(t, RoleAdmin, got.Role)

			require.NoError(t, store.Clear())
			_, ok = store.Get()
			assert.False(t, ok)

			// Clearing twice is fine.
			require.NoError(t, store.Clear())
		})
	}
}

func TestStoreRejectsEmptyToken(t *testing.T) {
	assert.Error(t, NewMemoryStore().Set("", RoleCustomer, time.Hour))

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, fs.Set("", RoleCustomer, time.Hour))
}

func TestFileStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	store, err := NewFileStore(t.TempDir(), WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, store.Set("tok", RoleCustomer, time.Hour))

	_, ok := store.Get()
	require.True(t, ok)

	mu.Lock()
	now = now.Add(2 * time.Hour)
	mu.Unlock()

	_, ok = store.Get()
	assert.False(t, ok, "expired session must be reported absent")
}

func TestFileStoreWatchReportsLapsedSession(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	store, err := NewFileStore(t.TempDir(), WithClock(clock), WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, store.Set("tok", RoleCustomer, time.Hour))

	changes := make(chan bool, 4)
	store.Subscribe(func(_ Session, ok bool) { changes <- ok })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = store.Watch(ctx) }()

	mu.Lock()
	now = now.Add(2 * time.Hour)
	mu.Unlock()

	select {
	case ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("lapsed session was not reported")
	}
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("secret", RoleCustomer, 0))

	info, err := os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreCorruptFileIsAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o600))

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	_, ok := store.Get()
	assert.False(t, ok)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	store := NewMemoryStore()

	var events []bool
	unsubscribe := store.Subscribe(func(_ Session, ok bool) {
		events = append(events, ok)
	})

	require.NoError(t, store.Set("a", RoleCustomer, time.Hour))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear()) // no change, no event
	unsubscribe()
	require.NoError(t, store.Set("b", RoleCustomer, time.Hour))

	assert.Equal(t, []bool{true, false}, events)
}

// Two stores over one directory stand in for two running clients.
func TestFileStoreWatchSeesOtherProcess(t *testing.T) {
	dir := t.TempDir()
	watched, err := NewFileStore(dir, WithPollInterval(20*time.Millisecond))
	require.NoError(t, err)
	other, err := NewFileStore(dir)
	require.NoError(t, err)

	changes := make(chan bool, 4)
	watched.Subscribe(func(_ Session, ok bool) { changes <- ok })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watched.Watch(ctx) }()

	// Give the watcher a moment to register.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, other.Set("from-other-tab", RoleCustomer, time.Hour))
	select {
	case ok := <-changes:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("login in another process was not observed")
	}

	require.NoError(t, other.Clear())
	select {
	case ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("logout in another process was not observed")
	}
}

func TestFileStorePollFallback(t *testing.T) {
	dir := t.TempDir()
	watched, err := NewFileStore(dir, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	other, err := NewFileStore(dir)
	require.NoError(t, err)

	changes := make(chan bool, 4)
	watched.Subscribe(func(_ Session, ok bool) { changes <- ok })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = watched.poll(ctx)
		close(done)
	}()

	require.NoError(t, other.Set("polled", RoleAdmin, time.Hour))
	select {
	case ok := <-changes:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("poll did not observe change")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poll did not stop on cancel")
	}
}
