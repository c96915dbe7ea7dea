package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/busy"
	"github.com/pyropark/storefront/internal/cart"
	"github.com/pyropark/storefront/internal/nav"
	"github.com/pyropark/storefront/internal/notify"
	"github.com/pyropark/storefront/internal/session"
)

// Sender is satisfied by *tea.Program
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge turns service callbacks into tea messages. Send never blocks:
// messages are queued and forwarded in order by a single pump goroutine,
// so callbacks fired from inside Update cannot deadlock the program.
// Messages sent before Attach are delivered once a sender is attached.
type Bridge struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []tea.Msg
	sender Sender
	closed bool
	done   chan struct{}
}

// NewBridge creates a detached bridge
func NewBridge() *Bridge {
	b := &Bridge{done: make(chan struct{})}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Attach starts forwarding queued and future messages to s. Only the
// first call has an effect.
func (b *Bridge) Attach(s Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sender != nil || b.closed {
		return
	}
	b.sender = s
	go b.pump()
}

// Close stops the pump. Queued messages are dropped.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.queue = nil
	attached := b.sender != nil
	b.cond.Broadcast()
	b.mu.Unlock()
	if attached {
		<-b.done
	}
}

// Send queues msg for the program
func (b *Bridge) Send(msg tea.Msg) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.queue = append(b.queue, msg)
	b.cond.Signal()
}

func (b *Bridge) pump() {
	defer close(b.done)
	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.closed {
			b.cond.Wait()
		}
		if b.closed {
			b.mu.Unlock()
			return
		}
		msg := b.queue[0]
		b.queue = b.queue[1:]
		sender := b.sender
		b.mu.Unlock()

		sender.Send(msg)
	}
}

// Navigate implements nav.Navigator
func (b *Bridge) Navigate(r nav.Route) {
	b.Send(NavigateMsg{Route: r})
}

// Observe records a finished API call; pass it to api.WithObserver
func (b *Bridge) Observe(c api.Call) {
	b.Send(APICallMsg{Call: c})
}

// Watch subscribes to every service the root model renders and returns a
// function that removes the subscriptions.
func (b *Bridge) Watch(sig *busy.Signal, funnel *notify.Funnel, summary *cart.Summary, sessions session.Store) (unsubscribe func()) {
	var unsubs []func()
	if sig != nil {
		unsubs = append(unsubs, sig.Subscribe(func(busy bool) {
			b.Send(BusyMsg{Busy: busy})
		}))
	}
	if funnel != nil {
		unsubs = append(unsubs, funnel.Subscribe(func(n notify.Notification, visible bool) {
			b.Send(ToastMsg{Notification: n, Visible: visible})
		}))
	}
	if summary != nil {
		unsubs = append(unsubs, summary.Subscribe(func(count int) {
			b.Send(CartCountMsg{Count: count})
		}))
	}
	if sessions != nil {
		unsubs = append(unsubs, sessions.Subscribe(func(s session.Session, ok bool) {
			b.Send(SessionMsg{Session: s, OK: ok})
		}))
	}
	return func() {
		for _, fn := range unsubs {
			fn()
		}
	}
}

var _ nav.Navigator = (*Bridge)(nil)
