package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/nav"
	"github.com/pyropark/storefront/internal/notify"
	"github.com/pyropark/storefront/internal/session"
)

// NavigateMsg switches the visible screen. ProductID is used by the
// product editor.
type NavigateMsg struct {
	Route     nav.Route
	ProductID int64
}

// BusyMsg mirrors the busy signal
type BusyMsg struct {
	Busy bool
}

// ToastMsg mirrors the notification funnel
type ToastMsg struct {
	Notification notify.Notification
	Visible      bool
}

// CartCountMsg mirrors the cart summary
type CartCountMsg struct {
	Count int
}

// SessionMsg is sent whenever the stored session changes
type SessionMsg struct {
	Session session.Session
	OK      bool
}

// APICallMsg carries a finished request for the debug panel
type APICallMsg struct {
	Call api.Call
}

type spinnerTickMsg struct{}

// Spinner animation frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerTickCmd returns a fast tick command for spinner animation
func spinnerTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// navigate returns a command that switches screens
func navigate(r nav.Route) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: r} }
}
