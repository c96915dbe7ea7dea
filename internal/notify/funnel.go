// Package notify is the single channel for transient user-facing messages.
package notify

import (
	"strings"
	"sync"
	"time"
)

// DefaultTimeout is how long a notification stays visible
const DefaultTimeout = 1500 * time.Millisecond

// Severity selects the visual treatment of a notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is one visible message
type Notification struct {
	ID       uint64
	Severity Severity
	Message  string
	ShownAt  time.Time
}

// Notifier is what services depend on to surface messages
type Notifier interface {
	Notify(severity Severity, message string)
}

// Funnel shows at most one notification at a time. A new notification
// replaces the visible one; there is no queue.
type Funnel struct {
	timeout time.Duration
	now     func() time.Time

	emit sync.Mutex // serialises subscriber callbacks

	mu      sync.Mutex
	seq     uint64
	current *Notification
	timer   *time.Timer
	nextSub int
	subs    map[int]func(Notification, bool)
}

// New creates a funnel that auto-dismisses after timeout (DefaultTimeout if <= 0)
func New(timeout time.Duration) *Funnel {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Funnel{
		timeout: timeout,
		now:     time.Now,
		subs:    make(map[int]func(Notification, bool)),
	}
}

// Notify dismisses whatever is shown and displays message
func (f *Funnel) Notify(severity Severity, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}

	f.emit.Lock()
	defer f.emit.Unlock()

	f.mu.Lock()
	f.seq++
	n := Notification{ID: f.seq, Severity: severity, Message: message, ShownAt: f.now()}
	f.current = &n
	if f.timer != nil {
		f.timer.Stop()
	}
	id := n.ID
	f.timer = time.AfterFunc(f.timeout, func() { f.expire(id) })
	fns := f.subscribersLocked()
	f.mu.Unlock()

	for _, fn := range fns {
		fn(n, true)
	}
}

// Current returns the visible notification, if any
func (f *Funnel) Current() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Notification{}, false
	}
	return *f.current, true
}

// Dismiss hides the visible notification
func (f *Funnel) Dismiss() {
	f.emit.Lock()
	defer f.emit.Unlock()

	f.mu.Lock()
	if f.current == nil {
		f.mu.Unlock()
		return
	}
	n := *f.current
	f.current = nil
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	fns := f.subscribersLocked()
	f.mu.Unlock()

	for _, fn := range fns {
		fn(n, false)
	}
}

// expire dismisses notification id if it is still the visible one
func (f *Funnel) expire(id uint64) {
	f.emit.Lock()
	defer f.emit.Unlock()

	f.mu.Lock()
	if f.current == nil || f.current.ID != id {
		f.mu.Unlock()
		return
	}
	n := *f.current
	f.current = nil
	f.timer = nil
	fns := f.subscribersLocked()
	f.mu.Unlock()

	for _, fn := range fns {
		fn(n, false)
	}
}

// Subscribe registers fn for show (visible=true) and dismiss events
func (f *Funnel) Subscribe(fn func(n Notification, visible bool)) (unsubscribe func()) {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

func (f *Funnel) subscribersLocked() []func(Notification, bool) {
	fns := make([]func(Notification, bool), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	return fns
}
