// Package cart keeps the cart badge count in sync with the server.
package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/model"
	"github.com/pyropark/storefront/internal/session"
)

// DefaultPollInterval is how often Run re-checks the session
const DefaultPollInterval = time.Second

// Fetcher loads the cart lines
type Fetcher interface {
	Items(ctx context.Context) ([]model.CartItem, error)
}

// Sessions is the part of the session store the summary watches
type Sessions interface {
	Get() (session.Session, bool)
	Subscribe(fn func(session.Session, bool)) func()
}

// Summary caches the number of distinct cart lines. A refresh that is
// overtaken by a later refresh, adjustment, or reset is discarded.
type Summary struct {
	sessions Sessions
	fetcher  Fetcher
	logger   *slog.Logger

	emit sync.Mutex

	mu      sync.Mutex
	count   int
	gen     uint64
	nextSub int
	subs    map[int]func(int)
}

// New creates a summary with a count of zero
func New(sessions Sessions, fetcher Fetcher, logger *slog.Logger) *Summary {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summary{
		sessions: sessions,
		fetcher:  fetcher,
		logger:   logger,
		subs:     make(map[int]func(int)),
	}
}

// Count returns the cached count
func (s *Summary) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Refresh reloads the count. Without a session the count drops to zero and
// no request is made. Failures are logged, never shown.
func (s *Summary) Refresh(ctx context.Context) error {
	gen := s.begin()

	if _, ok := s.sessions.Get(); !ok {
		s.commit(gen, 0)
		return nil
	}

	items, err := s.fetcher.Items(api.WithQuiet(ctx))
	if err != nil {
		if api.IsUnauthorized(err) {
			s.commit(gen, 0)
		}
		s.logger.Debug("cart refresh failed", "error", err)
		return err
	}
	s.commit(gen, len(items))
	return nil
}

// Adjust applies an optimistic change, clamped at zero
func (s *Summary) Adjust(delta int) {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	s.gen++
	n := s.count + delta
	if n < 0 {
		n = 0
	}
	fns := s.setLocked(n)
	s.mu.Unlock()

	notifyAll(fns, n)
}

// Reset forces the count to zero
func (s *Summary) Reset() {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	s.gen++
	fns := s.setLocked(0)
	s.mu.Unlock()

	notifyAll(fns, 0)
}

// Subscribe calls fn with the current count and after every change
func (s *Summary) Subscribe(fn func(count int)) (unsubscribe func()) {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	current := s.count
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Run keeps the count in step with the session until ctx is done. It
// reacts to store notifications and, as a fallback, compares the session
// every poll interval.
func (s *Summary) Run(ctx context.Context, poll time.Duration) error {
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	changed := make(chan struct{}, 1)
	unsubscribe := s.sessions.Subscribe(func(session.Session, bool) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	last := ""
	if sess, ok := s.sessions.Get(); ok {
		last = sess.Token
	}
	_ = s.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		case <-ticker.C:
		}

		token := ""
		if sess, ok := s.sessions.Get(); ok {
			token = sess.Token
		}
		if token == last {
			continue
		}
		last = token
		if token == "" {
			s.Reset()
			continue
		}
		_ = s.Refresh(ctx)
	}
}

func (s *Summary) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// commit stores n if no later update has happened since gen was issued
func (s *Summary) commit(gen uint64, n int) {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	fns := s.setLocked(n)
	s.mu.Unlock()

	notifyAll(fns, n)
}

// setLocked stores n and returns the subscribers to notify, if it changed
func (s *Summary) setLocked(n int) []func(int) {
	if n == s.count {
		return nil
	}
	s.count = n
	fns := make([]func(int), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}

func notifyAll(fns []func(int), n int) {
	for _, fn := range fns {
		fn(n)
	}
}
