package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pyropark/storefront/internal/model"
	"github.com/pyropark/storefront/internal/nav"
	"github.com/pyropark/storefront/internal/notify"
	"github.com/pyropark/storefront/internal/validate"
)

// OrderPlacedMessage is shown after a successful checkout
const OrderPlacedMessage = "Order placed successfully!"

type orderPlacedMsg struct {
	err error
}

// cartScreen lists the cart and places the order
type cartScreen struct {
	deps *Deps
	keys KeyMap

	items   []model.CartItem
	cursor  int
	address textinput.Model
	loading bool
	placing bool
}

func newCartScreen(deps *Deps) *cartScreen {
	ti := textinput.New()
	ti.Placeholder = "Delivery address"
	ti.Prompt = "❯ "
	ti.PromptStyle = InputPromptStyle
	ti.CharLimit = 300
	ti.Width = 60
	return &cartScreen{deps: deps, keys: DefaultKeyMap(), address: ti, loading: true}
}

func (s *cartScreen) Title() string { return "Your Cart" }

func (s *cartScreen) Capturing() bool { return s.address.Focused() }

func (s *cartScreen) Hints() []hint {
	if s.address.Focused() {
		return []hint{{"Enter", "place order"}, {"Esc", "back to items"}}
	}
	return []hint{{"+/-", "quantity"}, {"d", "remove"}, {"tab", "address"}, {"p", "place order"}}
}

func (s *cartScreen) Init() tea.Cmd {
	return s.load()
}

func (s *cartScreen) load() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		items, err := deps.Shop.Cart.Items(context.Background())
		return cartLoadedMsg{items: items, err: err}
	}
}

func (s *cartScreen) setQuantity(it model.CartItem, quantity int) tea.Cmd {
	s.deps.adjustCart(it.Quantity, quantity)
	deps, productID := s.deps, it.Product.Key()
	return func() tea.Msg {
		ctx := context.Background()
		if err := deps.Shop.Cart.SetQuantity(ctx, productID, quantity); err != nil {
			deps.refreshCart(ctx)
			return cartLoadedMsg{err: err}
		}
		items, err := deps.Shop.Cart.Items(ctx)
		deps.refreshCart(ctx)
		return cartLoadedMsg{items: items, err: err}
	}
}

func (s *cartScreen) place() tea.Cmd {
	if s.placing {
		return nil
	}
	address := s.address.Value()
	if err := validate.Address(address); err != nil {
		s.deps.notify(notify.SeverityWarning, validate.AddressRequired)
		return s.address.Focus()
	}
	s.placing = true
	deps := s.deps
	return func() tea.Msg {
		ctx := context.Background()
		err := deps.Shop.Orders.Place(ctx, address)
		if err == nil {
			deps.refreshCart(ctx)
			deps.notify(notify.SeveritySuccess, OrderPlacedMessage)
		}
		return orderPlacedMsg{err: err}
	}
}

func (s *cartScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case cartLoadedMsg:
		s.loading = false
		if msg.err == nil {
			s.items = msg.items
			s.cursor = clamp(s.cursor, len(s.items))
		}
		return s, nil

	case orderPlacedMsg:
		s.placing = false
		if msg.err != nil {
			var verr validate.Errors
			if errors.As(msg.err, &verr) {
				s.deps.notify(notify.SeverityWarning, verr.Error())
			}
			return s, nil
		}
		return s, navigate(nav.RouteOrders)

	case tea.KeyMsg:
		if s.address.Focused() {
			switch {
			case key.Matches(msg, s.keys.Enter):
				return s, s.place()
			case key.Matches(msg, s.keys.Escape), key.Matches(msg, s.keys.Next):
				s.address.Blur()
				return s, nil
			}
			var cmd tea.Cmd
			s.address, cmd = s.address.Update(msg)
			return s, cmd
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *cartScreen) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keys.Up):
		s.cursor = clamp(s.cursor-1, len(s.items))
	case key.Matches(msg, s.keys.Down):
		s.cursor = clamp(s.cursor+1, len(s.items))
	case key.Matches(msg, s.keys.Increase):
		if len(s.items) > 0 {
			it := s.items[s.cursor]
			return s, s.setQuantity(it, it.Quantity+1)
		}
	case key.Matches(msg, s.keys.Decrease):
		if len(s.items) > 0 {
			it := s.items[s.cursor]
			return s, s.setQuantity(it, it.Quantity-1)
		}
	case key.Matches(msg, s.keys.Delete):
		if len(s.items) > 0 {
			return s, s.setQuantity(s.items[s.cursor], 0)
		}
	case key.Matches(msg, s.keys.Next):
		return s, s.address.Focus()
	case key.Matches(msg, s.keys.Refresh):
		return s, s.load()
	case msg.String() == "p":
		if len(s.items) == 0 {
			return s, nil
		}
		return s, s.place()
	case key.Matches(msg, s.keys.Escape):
		return s, navigate(nav.RouteHome)
	}
	return s, nil
}

func (s *cartScreen) View(width, height int) string {
	var b strings.Builder
	switch {
	case s.loading:
		return DimStyle.Render("Loading cart...")
	case len(s.items) == 0:
		return DimStyle.Render("Your cart is empty. Press h to browse products.")
	}

	start, end := window(len(s.items), s.cursor, height-8)
	for i := start; i < end; i++ {
		it := s.items[i]
		marker, row := "  ", RowStyle
		if i == s.cursor {
			marker, row = "❯ ", SelectedStyle
		}
		name := truncate(it.Product.Name, width/3)
		b.WriteString(marker + row.Render(fmt.Sprintf("%-*s", width/3, name)) +
			fmt.Sprintf("  %3d × %s = ", it.Quantity, model.FormatPrice(it.Product.Price)) +
			PriceStyle.Render(model.FormatPrice(it.Subtotal())) + "\n")
	}

	b.WriteString("\n" + TitleStyle.Render("Total: ") + PriceStyle.Render(model.FormatPrice(model.CartTotal(s.items))) + "\n\n")
	b.WriteString(LabelStyle.Render("Delivery address") + "\n" + s.address.View() + "\n")
	if s.placing {
		b.WriteString(DimStyle.Render("Placing order…") + "\n")
	}
	return b.String()
}
