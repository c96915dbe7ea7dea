package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// FileName is the session document inside the state directory
	FileName = "session.json"

	// DefaultPollInterval is used when no file watcher can be created
	DefaultPollInterval = time.Second
)

// FileStore persists the session as a JSON document readable only by the user.
// Other processes sharing the state directory observe changes through Watch.
type FileStore struct {
	dir          string
	path         string
	now          func() time.Time
	logger       *slog.Logger
	pollInterval time.Duration

	mu   sync.Mutex
	last Session // last state observed or written, for change detection
	subs listeners
}

// FileOption customises a FileStore
type FileOption func(*FileStore)

// WithLogger sets the logger used for watcher diagnostics
func WithLogger(logger *slog.Logger) FileOption {
	return func(s *FileStore) { s.logger = logger }
}

// WithPollInterval sets the polling fallback interval
func WithPollInterval(d time.Duration) FileOption {
	return func(s *FileStore) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithClock overrides time.Now, used by tests to exercise expiry
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) { s.now = now }
}

// NewFileStore opens (creating if needed) the session store in dir
func NewFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("session: state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("session: create state dir: %w", err)
	}

	s := &FileStore{
		dir:          dir,
		path:         filepath.Join(dir, FileName),
		now:          time.Now,
		logger:       slog.Default(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	if cur, ok := s.Get(); ok {
		s.last = cur
	}
	return s, nil
}

// Path returns the session file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get() (Session, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("read session file", "error", err)
		}
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn("corrupt session file", "error", err)
		return Session{}, false
	}
	if !sess.Valid(s.now()) {
		return Session{}, false
	}
	return sess, true
}

func (s *FileStore) Set(token string, role Role, ttl time.Duration) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	sess := Session{Token: token, Role: role, ExpiresAt: s.now().Add(ttl)}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	s.mu.Lock()
	err = s.writeLocked(data)
	if err == nil {
		s.last = sess
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.subs.emit(sess, true)
	return nil
}

// writeLocked replaces the session file atomically
func (s *FileStore) writeLocked(data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("session: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("session: write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("session: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: replace session file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		s.mu.Unlock()
		return fmt.Errorf("session: remove session file: %w", err)
	}
	had := s.last.Token != ""
	s.last = Session{}
	s.mu.Unlock()

	if had {
		s.subs.emit(Session{}, false)
	}
	return nil
}

func (s *FileStore) Subscribe(fn func(Session, bool)) func() {
	return s.subs.add(fn)
}

// reload re-reads the file and notifies subscribers if the token or role changed
func (s *FileStore) reload() {
	cur, ok := s.Get()

	s.mu.Lock()
	changed := cur.Token != s.last.Token || cur.Role != s.last.Role
	if changed {
		s.last = cur
	}
	s.mu.Unlock()

	if changed {
		s.logger.Debug("session changed on disk", "present", ok, "role", cur.Role)
		s.subs.emit(cur, ok)
	}
}

// Watch follows changes made by other processes until ctx is done.
// It uses fsnotify on the state directory and falls back to polling.
// The file is also re-read every poll interval so a session that lapses
// by TTL is reported absent without any file event.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("file watcher unavailable, polling session file", "error", err)
		return s.poll(ctx)
	}
	defer watcher.Close()

	// Watch the directory: atomic renames replace the file's inode.
	if err := watcher.Add(s.dir); err != nil {
		s.logger.Warn("cannot watch state dir, polling session file", "error", err)
		return s.poll(ctx)
	}

	expiry := time.NewTicker(s.pollInterval)
	defer expiry.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-expiry.C:
			s.reload()
		case ev, ok := <-watcher.Events:
			if !ok {
				return s.poll(ctx)
			}
			if filepath.Base(ev.Name) != FileName {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				s.reload()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return s.poll(ctx)
			}
			s.logger.Warn("session watcher error", "error", werr)
		}
	}
}

func (s *FileStore) poll(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.reload()
		}
	}
}
