package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pyropark/storefront/internal/model"
	"github.com/pyropark/storefront/internal/nav"
	"github.com/pyropark/storefront/internal/notify"
)

// LoginToModifyCartMessage is shown when a guest touches the cart
const LoginToModifyCartMessage = "Please log in to modify cart"

type productsLoadedMsg struct {
	page model.Page[model.Product]
	err  error
}

type cartLoadedMsg struct {
	items []model.CartItem
	err   error
}

type contactLoadedMsg struct {
	contact model.Contact
	err     error
}

// homeScreen is the public catalogue
type homeScreen struct {
	deps *Deps
	keys KeyMap

	page     int
	query    string
	search   textinput.Model
	products model.Page[model.Product]
	cart     []model.CartItem
	contact  model.Contact
	cursor   int
	loading  bool
	updating int64
}

func newHomeScreen(deps *Deps) *homeScreen {
	ti := textinput.New()
	ti.Placeholder = "Search crackers..."
	ti.Prompt = "/ "
	ti.PromptStyle = InputPromptStyle
	ti.CharLimit = 100
	ti.Width = 40
	return &homeScreen{deps: deps, keys: DefaultKeyMap(), search: ti, loading: true}
}

func (s *homeScreen) Title() string { return "Products" }

func (s *homeScreen) Capturing() bool { return s.search.Focused() }

func (s *homeScreen) Hints() []hint {
	if s.search.Focused() {
		return []hint{{"Enter", "search"}, {"Esc", "cancel"}}
	}
	return []hint{{"/", "search"}, {"+/-", "quantity"}, {"←/→", "page"}, {"c", "cart"}}
}

func (s *homeScreen) Init() tea.Cmd {
	return tea.Batch(s.loadProducts(), s.loadCart(), s.loadContact())
}

func (s *homeScreen) loadProducts() tea.Cmd {
	deps, page, query := s.deps, s.page, s.query
	return func() tea.Msg {
		p, err := deps.Shop.Products.ListActive(context.Background(), page, deps.pageSize(), query)
		return productsLoadedMsg{page: p, err: err}
	}
}

func (s *homeScreen) loadCart() tea.Cmd {
	deps := s.deps
	if _, ok := deps.session(); !ok {
		return nil
	}
	return func() tea.Msg {
		items, err := deps.Shop.Cart.Items(context.Background())
		return cartLoadedMsg{items: items, err: err}
	}
}

func (s *homeScreen) loadContact() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		c, err := deps.Shop.Contact.Get(context.Background())
		return contactLoadedMsg{contact: c, err: err}
	}
}

// setQuantity writes the new quantity, then reloads the cart lines and the
// badge count
func (s *homeScreen) setQuantity(p model.Product, quantity int) tea.Cmd {
	if _, ok := s.deps.session(); !ok {
		s.deps.notify(notify.SeverityWarning, LoginToModifyCartMessage)
		return nil
	}
	if s.updating != 0 {
		return nil
	}
	s.updating = p.Key()
	s.deps.adjustCart(model.QuantityOf(s.cart, p.Key()), quantity)
	deps := s.deps
	return func() tea.Msg {
		ctx := context.Background()
		if err := deps.Shop.Cart.SetQuantity(ctx, p.Key(), quantity); err != nil {
			deps.refreshCart(ctx)
			return cartLoadedMsg{err: err}
		}
		items, err := deps.Shop.Cart.Items(ctx)
		deps.refreshCart(ctx)
		return cartLoadedMsg{items: items, err: err}
	}
}

func (s *homeScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case productsLoadedMsg:
		s.loading = false
		if msg.err == nil {
			s.products = msg.page
			s.cursor = clamp(s.cursor, len(s.products.Content))
		}
		return s, nil

	case cartLoadedMsg:
		s.updating = 0
		if msg.err == nil {
			s.cart = msg.items
		}
		return s, nil

	case contactLoadedMsg:
		if msg.err == nil {
			s.contact = msg.contact
		}
		return s, nil

	case tea.KeyMsg:
		if s.search.Focused() {
			return s.updateSearch(msg)
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *homeScreen) updateSearch(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keys.Enter):
		s.search.Blur()
		s.query = strings.TrimSpace(s.search.Value())
		s.page = 0
		s.loading = true
		return s, s.loadProducts()
	case key.Matches(msg, s.keys.Escape):
		s.search.Blur()
		s.search.SetValue(s.query)
		return s, nil
	}
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	return s, cmd
}

func (s *homeScreen) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	items := s.products.Content
	switch {
	case key.Matches(msg, s.keys.Up):
		s.cursor = clamp(s.cursor-1, len(items))
	case key.Matches(msg, s.keys.Down):
		s.cursor = clamp(s.cursor+1, len(items))
	case key.Matches(msg, s.keys.PrevPage):
		if s.page > 0 {
			s.page--
			s.cursor = 0
			s.loading = true
			return s, s.loadProducts()
		}
	case key.Matches(msg, s.keys.NextPage):
		if s.page+1 < s.products.Pages() {
			s.page++
			s.cursor = 0
			s.loading = true
			return s, s.loadProducts()
		}
	case key.Matches(msg, s.keys.Search):
		return s, s.search.Focus()
	case key.Matches(msg, s.keys.Refresh):
		s.loading = true
		return s, tea.Batch(s.loadProducts(), s.loadCart())
	case key.Matches(msg, s.keys.Increase):
		if len(items) > 0 {
			p := items[s.cursor]
			return s, s.setQuantity(p, model.QuantityOf(s.cart, p.Key())+1)
		}
	case key.Matches(msg, s.keys.Decrease):
		if len(items) > 0 {
			p := items[s.cursor]
			if qty := model.QuantityOf(s.cart, p.Key()); qty > 0 {
				return s, s.setQuantity(p, qty-1)
			}
		}
	case key.Matches(msg, s.keys.Enter):
		return s, navigate(nav.RouteCart)
	}
	return s, nil
}

func (s *homeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(s.search.View() + "\n\n")

	items := s.products.Content
	switch {
	case s.loading && len(items) == 0:
		b.WriteString(DimStyle.Render("Loading products...") + "\n")
	case len(items) == 0:
		b.WriteString(DimStyle.Render("No products found.") + "\n")
	}

	for i, p := range items {
		b.WriteString(s.renderProduct(p, i == s.cursor, width) + "\n")
	}

	if len(items) > 0 {
		b.WriteString("\n" + DimStyle.Render(fmt.Sprintf("Page %d of %d · %d products",
			s.products.Number+1, s.products.Pages(), s.products.TotalElements)) + "\n")
	}

	if !s.contact.Empty() {
		b.WriteString("\n" + DimStyle.Render(strings.Join(nonEmpty(
			s.contact.ShopName, s.contact.Address, s.contact.PhoneNumber, s.contact.MailID), " · ")))
	}
	return b.String()
}

func (s *homeScreen) renderProduct(p model.Product, selected bool, width int) string {
	marker := "  "
	if selected {
		marker = "❯ "
	}

	price := PriceStyle.Render(model.FormatPrice(p.UnitPrice()))
	if p.HasDiscount() {
		price = StrikeStyle.Render(model.FormatPrice(p.Price)) + " " + price +
			" " + DiscountStyle.Render(fmt.Sprintf("-%g%%", p.Discount))
	}

	stock := SuccessStyle.Render(fmt.Sprintf("%d in stock", p.StockQuantity))
	if !p.InStock() {
		stock = ErrorStyle.Render("out of stock")
	}

	qty := ""
	if n := model.QuantityOf(s.cart, p.Key()); n > 0 {
		qty = "  " + BadgeStyle.Render(fmt.Sprintf("×%d", n))
	}
	if s.updating == p.Key() {
		qty += DimStyle.Render(" updating…")
	}

	name := truncate(p.Name, width/3)
	row := RowStyle
	if selected {
		row = SelectedStyle
	}
	return marker + row.Render(fmt.Sprintf("%-*s", width/3, name)) + "  " + price + "  " + stock + qty
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
