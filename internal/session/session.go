package session

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultTTL keeps a session across restarts for a week
const DefaultTTL = 7 * 24 * time.Hour

// ErrNoSession is returned by operations that need a stored session
var ErrNoSession = errors.New("session: no active session")

// Role is the user's role as reported by the API at login
type Role string

const (
	RoleGuest    Role = "guest"
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps the API's role string onto a Role.
// Empty means guest; anything unrecognised is treated as a customer.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return RoleGuest
	case "admin":
		return RoleAdmin
	case "guest":
		return RoleGuest
	default:
		return RoleCustomer
	}
}

// Session is the client-held bearer token plus the user's role
type Session struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session has a token and has not expired at now
func (s Session) Valid(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// IsAdmin reports whether the session belongs to an admin
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Store owns the persisted session.
// Get reports absent for missing or expired sessions.
type Store interface {
	Get() (Session, bool)
	Set(token string, role Role, ttl time.Duration) error
	Clear() error
	Subscribe(fn func(Session, bool)) (unsubscribe func())
}

// listeners is a small registry shared by the store implementations
type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Session, bool)
}

func (l *listeners) add(fn func(Session, bool)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(Session, bool))
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners) emit(s Session, ok bool) {
	l.mu.Lock()
	fns := make([]func(Session, bool), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(s, ok)
	}
}

// MemoryStore keeps the session in process memory only
type MemoryStore struct {
	mu      sync.Mutex
	current Session
	now     func() time.Time
	subs    listeners
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Get() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current.Valid(m.now()) {
		return Session{}, false
	}
	return m.current, true
}

func (m *MemoryStore) Set(token string, role Role, ttl time.Duration) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := Session{Token: token, Role: role, ExpiresAt: m.now().Add(ttl)}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.subs.emit(s, true)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	had := m.current.Token != ""
	m.current = Session{}
	m.mu.Unlock()

	if had {
		m.subs.emit(Session{}, false)
	}
	return nil
}

func (m *MemoryStore) Subscribe(fn func(Session, bool)) func() {
	return m.subs.add(fn)
}
