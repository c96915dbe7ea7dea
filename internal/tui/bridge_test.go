package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pyropark/storefront/internal/busy"
	"github.com/pyropark/storefront/internal/nav"
	"github.com/pyropark/storefront/internal/notify"
	"github.com/pyropark/storefront/internal/session"
)

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func receive(t *testing.T, ch chanSender) tea.Msg {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestBridgeQueuesUntilAttached(t *testing.T) {
	b := NewBridge()
	b.Navigate(nav.RouteLogin)
	b.Send(BusyMsg{Busy: true})

	ch := make(chanSender, 4)
	b.Attach(ch)
	t.Cleanup(b.Close)

	if got := receive(t, ch); got != (NavigateMsg{Route: nav.RouteLogin}) {
		t.Fatalf("first message = %#v", got)
	}
	if got := receive(t, ch); got != (BusyMsg{Busy: true}) {
		t.Fatalf("second message = %#v", got)
	}
}

func TestBridgeSendNeverBlocks(t *testing.T) {
	b := NewBridge()
	// Unbuffered and never read: a blocking Send would hang the test.
	b.Attach(make(chanSender))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Send(BusyMsg{Busy: i%2 == 0})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked")
	}
}

func TestBridgeWatchForwardsServiceEvents(t *testing.T) {
	sig := busy.New()
	funnel := notify.New(time.Minute)
	sessions := session.NewMemoryStore()

	b := NewBridge()
	ch := make(chanSender, 16)
	unsubscribe := b.Watch(sig, funnel, nil, sessions)
	b.Attach(ch)
	t.Cleanup(b.Close)

	// Subscribe reports the current busy state straight away
	if got := receive(t, ch); got != (BusyMsg{Busy: false}) {
		t.Fatalf("initial busy = %#v", got)
	}

	sig.Begin()
	if got := receive(t, ch); got != (BusyMsg{Busy: true}) {
		t.Fatalf("busy = %#v", got)
	}

	funnel.Notify(notify.SeverityError, "boom")
	toast, ok := receive(t, ch).(ToastMsg)
	if !ok || !toast.Visible || toast.Notification.Message != "boom" {
		t.Fatalf("toast = %#v", toast)
	}

	if err := sessions.Set("tok", session.RoleCustomer, 0); err != nil {
		t.Fatal(err)
	}
	sess, ok := receive(t, ch).(SessionMsg)
	if !ok || !sess.OK || sess.Session.Token != "tok" {
		t.Fatalf("session = %#v", sess)
	}

	unsubscribe()
	sig.End()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message after unsubscribe: %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBridgeCloseDropsMessages(t *testing.T) {
	b := NewBridge()
	ch := make(chanSender, 1)
	b.Attach(ch)
	b.Close()
	b.Send(BusyMsg{Busy: true})
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message after close: %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
