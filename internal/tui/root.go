// Package tui is the terminal front-end of the storefront.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pyropark/storefront/internal/auth"
	"github.com/pyropark/storefront/internal/busy"
	"github.com/pyropark/storefront/internal/cart"
	"github.com/pyropark/storefront/internal/config"
	"github.com/pyropark/storefront/internal/nav"
	"github.com/pyropark/storefront/internal/notify"
	"github.com/pyropark/storefront/internal/session"
	"github.com/pyropark/storefront/internal/shop"
)

// Deps are the services the screens use
type Deps struct {
	Shop     *shop.Shop
	Auth     *auth.Service
	Sessions session.Store
	Cart     *cart.Summary
	Busy     *busy.Signal
	Funnel   *notify.Funnel
	Config   *config.Config
	Logger   *slog.Logger
}

func (d *Deps) notify(severity notify.Severity, message string) {
	if d.Funnel != nil {
		d.Funnel.Notify(severity, message)
	}
}

func (d *Deps) session() (session.Session, bool) {
	if d.Sessions == nil {
		return session.Session{}, false
	}
	return d.Sessions.Get()
}

func (d *Deps) pageSize() int {
	if d.Config != nil && d.Config.PageSize > 0 {
		return d.Config.PageSize
	}
	return shop.DefaultPageSize
}

func (d *Deps) adminPageSize() int {
	if d.Config != nil && d.Config.AdminPageSize > 0 {
		return d.Config.AdminPageSize
	}
	return shop.DefaultAdminPageSize
}

// refreshCart re-reads the badge count after a cart change
func (d *Deps) refreshCart(ctx context.Context) {
	if d.Cart != nil {
		_ = d.Cart.Refresh(ctx)
	}
}

// adjustCart moves the badge ahead of the server when a cart line appears
// or disappears. The refresh that follows the request settles it.
func (d *Deps) adjustCart(before, after int) {
	if d.Cart == nil {
		return
	}
	switch {
	case before == 0 && after > 0:
		d.Cart.Adjust(1)
	case before > 0 && after <= 0:
		d.Cart.Adjust(-1)
	}
}

// screen is one route's view
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View(width, height int) string
	Title() string
	// Capturing reports whether keys go to a text input, which disables
	// single-letter global shortcuts.
	Capturing() bool
	Hints() []hint
}

// hint is one entry of the status bar key legend
type hint struct {
	key  string
	desc string
}

// Model is the root Bubble Tea model
type Model struct {
	deps *Deps
	keys KeyMap

	// Terminal dimensions
	width  int
	height int
	ready  bool

	// Routing
	route    nav.Route
	screen   screen
	sess     session.Session
	signedIn bool

	// Mirrors of service state
	busy         bool
	spinnerIndex int
	toast        *notify.Notification
	cartCount    int

	showHelp bool
	debug    DebugPanel
}

// NewRootModel creates the root model on the home screen
func NewRootModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	m := Model{
		deps:  &deps,
		keys:  DefaultKeyMap(),
		debug: NewDebugPanel(false),
	}
	m.sess, m.signedIn = deps.session()
	if deps.Busy != nil {
		m.busy = deps.Busy.Busy()
	}
	if deps.Funnel != nil {
		if n, ok := deps.Funnel.Current(); ok {
			m.toast = &n
		}
	}
	if deps.Cart != nil {
		m.cartCount = deps.Cart.Count()
	}
	m.route = nav.Resolve(nav.RouteHome, m.sess, m.signedIn)
	m.screen = m.build(m.route, 0)
	return m
}

// WithDebugPanel returns m with the API call panel open
func (m Model) WithDebugPanel() Model {
	m.debug = NewDebugPanel(true)
	return m
}

// Route returns the visible route
func (m Model) Route() nav.Route {
	return m.route
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.screen.Init(), spinnerTickCmd())
}

// build creates the screen for an already resolved route
func (m Model) build(r nav.Route, productID int64) screen {
	switch r {
	case nav.RouteLogin:
		return newLoginScreen(m.deps)
	case nav.RouteRegister:
		return newRegisterScreen(m.deps)
	case nav.RouteOTP:
		return newOTPScreen(m.deps)
	case nav.RouteCart:
		return newCartScreen(m.deps)
	case nav.RouteOrders:
		return newOrdersScreen(m.deps)
	case nav.RouteAdmin:
		return newDashboardScreen(m.deps)
	case nav.RouteAdminProducts:
		return newProductListScreen(m.deps)
	case nav.RouteAdminAddProduct:
		return newProductFormScreen(m.deps, 0)
	case nav.RouteAdminEditProduct:
		if productID == 0 {
			return newProductListScreen(m.deps)
		}
		return newProductFormScreen(m.deps, productID)
	case nav.RouteAdminOrders:
		return newAdminOrdersScreen(m.deps)
	case nav.RouteAdminContact:
		return newContactScreen(m.deps)
	default:
		return newHomeScreen(m.deps)
	}
}

// navigate applies the route guards and swaps the screen
func (m Model) navigate(r nav.Route, productID int64) (Model, tea.Cmd) {
	resolved := nav.Resolve(r, m.sess, m.signedIn)
	if resolved == nav.RouteAdminEditProduct && productID == 0 {
		resolved = nav.RouteAdminProducts
	}
	m.deps.Logger.Debug("navigate", "requested", string(r), "route", string(resolved))
	m.route = resolved
	m.screen = m.build(resolved, productID)
	m.showHelp = false
	return m, m.screen.Init()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case NavigateMsg:
		return m.navigate(msg.Route, msg.ProductID)

	case SessionMsg:
		m.sess, m.signedIn = msg.Session, msg.OK
		// Re-check the guard for the visible screen, e.g. after a sign-out
		// in another process.
		if nav.Resolve(m.route, m.sess, m.signedIn) != m.route {
			return m.navigate(m.route, 0)
		}
		return m, nil

	case BusyMsg:
		m.busy = msg.Busy
		return m, nil

	case ToastMsg:
		switch {
		case msg.Visible:
			n := msg.Notification
			m.toast = &n
		case m.toast != nil && m.toast.ID == msg.Notification.ID:
			m.toast = nil
		}
		return m, nil

	case CartCountMsg:
		m.cartCount = msg.Count
		return m, nil

	case APICallMsg:
		m.debug.AddCall(msg.Call)
		return m, nil

	case spinnerTickMsg:
		if m.busy {
			m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		}
		return m, spinnerTickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Interrupt) {
		return m, tea.Quit
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Escape, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Debug) {
		m.debug.Toggle()
		return m, nil
	}

	if !m.screen.Capturing() {
		switch {
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Home):
			return m.navigate(nav.RouteHome, 0)
		case key.Matches(msg, m.keys.Cart):
			return m.navigate(nav.RouteCart, 0)
		case key.Matches(msg, m.keys.Orders):
			return m.navigate(nav.RouteOrders, 0)
		case key.Matches(msg, m.keys.Admin):
			return m.navigate(nav.RouteAdmin, 0)
		case key.Matches(msg, m.keys.Auth):
			if m.signedIn {
				return m, m.logout()
			}
			return m.navigate(nav.RouteLogin, 0)
		}
	}

	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

func (m Model) logout() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		if deps.Auth == nil {
			return nil
		}
		if err := deps.Auth.Logout(); err != nil {
			deps.Logger.Error("logout failed", "error", err)
			deps.notify(notify.SeverityError, "Logout failed")
		}
		return nil
	}
}

// View renders the current screen
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.helpView()
	}

	header := m.renderHeader()
	toast := m.renderToast()
	statusBar := m.renderStatusBar()

	// Account for header, toast line, status bar and body borders
	bodyHeight := m.height - 5
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	bodyWidth := m.width
	var debug string
	if m.debug.IsEnabled() {
		debugWidth := m.width / 3
		if debugWidth < 30 {
			debugWidth = 30
		}
		bodyWidth = m.width - debugWidth - 2
		debug = m.debug.Render(debugWidth, bodyHeight)
	}

	content := TitleStyle.Render(m.screen.Title()) + "\n\n" + m.screen.View(bodyWidth-4, bodyHeight-2)
	body := BodyStyle.Width(bodyWidth - 2).Height(bodyHeight).Render(content)
	if debug != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, debug)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		toast,
		statusBar,
	)
}

// renderHeader renders the brand, spinner overlay and cart badge
func (m Model) renderHeader() string {
	title := HeaderStyle.Render("PYRO PARK")
	subtitle := lipgloss.NewStyle().
		Foreground(ColorFgMuted).
		Render("Storefront")

	line := title + "  " + subtitle

	if m.busy {
		line += "  " + SpinnerStyle.Render(spinnerFrames[m.spinnerIndex]+" Loading…")
	}

	if m.signedIn && !m.sess.IsAdmin() {
		badge := BadgeStyle.Render(fmt.Sprintf("cart %d", m.cartCount))
		gap := m.width - lipgloss.Width(line) - lipgloss.Width(badge) - 2
		if gap < 2 {
			gap = 2
		}
		line += strings.Repeat(" ", gap) + badge
	}

	return lipgloss.NewStyle().
		PaddingLeft(1).
		Width(m.width).
		Render(line)
}

// renderToast renders the single visible notification, or a blank line
func (m Model) renderToast() string {
	if m.toast == nil {
		return ""
	}
	switch m.toast.Severity {
	case notify.SeveritySuccess:
		return ToastSuccessStyle.Render("✓ " + m.toast.Message)
	case notify.SeverityWarning:
		return ToastWarningStyle.Render("! " + m.toast.Message)
	default:
		return ToastErrorStyle.Render("✗ " + m.toast.Message)
	}
}

func (m Model) renderStatusBar() string {
	var status string
	switch {
	case m.signedIn && m.sess.IsAdmin():
		status = StatusSignedInStyle.Render("● Admin")
	case m.signedIn:
		status = StatusSignedInStyle.Render("● Signed in")
	default:
		status = StatusGuestStyle.Render("○ Guest")
	}

	mutedStyle := lipgloss.NewStyle().Foreground(ColorFgMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorFgPrimary)

	var helpHint strings.Builder
	for _, h := range m.screen.Hints() {
		helpHint.WriteString(mutedStyle.Render(" │ ") + keyStyle.Render(h.key) + mutedStyle.Render(" "+h.desc))
	}
	if !m.screen.Capturing() {
		helpHint.WriteString(mutedStyle.Render(" │ ") + keyStyle.Render("?") + mutedStyle.Render(" help"))
	}
	helpHint.WriteString(mutedStyle.Render(" │ ") + keyStyle.Render("Ctrl+C") + mutedStyle.Render(" quit"))

	return StatusBarStyle.Render(status + helpHint.String())
}

// helpView renders the help overlay
func (m Model) helpView() string {
	title := HelpTitleStyle.Render("Keyboard Shortcuts")

	var b strings.Builder
	for _, column := range m.keys.FullHelp() {
		b.WriteString("\n")
		for _, binding := range column {
			h := binding.Help()
			b.WriteString(HelpKeyStyle.Render(fmt.Sprintf("%-10s", h.Key)) + HelpDescStyle.Render(h.Desc) + "\n")
		}
	}

	content := title + "\n" + b.String() + "\n" + HelpDescStyle.Render("Press ? or Esc to close")

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		HelpStyle.Render(content),
	)
}

// window returns the slice bounds of rows visible around cursor
func window(n, cursor, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

// clamp keeps a cursor inside [0, n)
func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// truncate shortens s to max runes
func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
