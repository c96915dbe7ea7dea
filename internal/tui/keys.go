package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	// Screens
	Home   key.Binding
	Cart   key.Binding
	Orders key.Binding
	Admin  key.Binding
	Auth   key.Binding

	// Actions
	Help     key.Binding
	Debug    key.Binding
	Search   key.Binding
	Refresh  key.Binding
	Increase key.Binding
	Decrease key.Binding
	Delete   key.Binding
	New      key.Binding
	Edit     key.Binding
	Invoice  key.Binding
	Confirm  key.Binding
	Submit   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Escape   key.Binding
	Enter    key.Binding
	Quit     key.Binding

	// Always active
	Interrupt key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "pgup"),
			key.WithHelp("←", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "pgdown"),
			key.WithHelp("→", "next page"),
		),
		Home: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "home"),
		),
		Cart: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cart"),
		),
		Orders: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "orders"),
		),
		Admin: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "admin"),
		),
		Auth: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "sign in/out"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Debug: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "api log"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Increase: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "add one"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "remove one"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Invoice: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "invoice"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns a short help string
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Home, k.Cart, k.Quit}
}

// FullHelp returns the full help string
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage, k.Enter, k.Escape},
		{k.Home, k.Cart, k.Orders, k.Admin, k.Auth},
		{k.Search, k.Increase, k.Decrease, k.Delete, k.New, k.Edit, k.Invoice, k.Refresh},
		{k.Next, k.Submit, k.Help, k.Debug, k.Quit},
	}
}
