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

// dashboardScreen is the admin landing menu
type dashboardScreen struct {
	keys   KeyMap
	cursor int
}

var dashboardItems = []struct {
	title string
	desc  string
	route nav.Route
}{
	{"Add Product", "Create a new product listing", nav.RouteAdminAddProduct},
	{"Manage Products", "Edit or remove products", nav.RouteAdminProducts},
	{"Orders", "Update order status and tracking", nav.RouteAdminOrders},
	{"Contact Details", "Shop name, address, phone and email", nav.RouteAdminContact},
}

func newDashboardScreen(*Deps) *dashboardScreen {
	return &dashboardScreen{keys: DefaultKeyMap()}
}

func (s *dashboardScreen) Title() string   { return "Admin Dashboard" }
func (s *dashboardScreen) Capturing() bool { return false }
func (s *dashboardScreen) Init() tea.Cmd   { return nil }

func (s *dashboardScreen) Hints() []hint {
	return []hint{{"Enter", "open"}}
}

func (s *dashboardScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, s.keys.Up):
			s.cursor = clamp(s.cursor-1, len(dashboardItems))
		case key.Matches(km, s.keys.Down):
			s.cursor = clamp(s.cursor+1, len(dashboardItems))
		case key.Matches(km, s.keys.Enter):
			return s, navigate(dashboardItems[s.cursor].route)
		}
	}
	return s, nil
}

func (s *dashboardScreen) View(width, height int) string {
	var b strings.Builder
	for i, item := range dashboardItems {
		marker, row := "  ", RowStyle
		if i == s.cursor {
			marker, row = "❯ ", SelectedStyle
		}
		b.WriteString(marker + row.Render(fmt.Sprintf("%-18s", item.title)) + "  " + DimStyle.Render(item.desc) + "\n")
	}
	return b.String()
}

type productDeletedMsg struct {
	err error
}

// productListScreen lists every product, active or not
type productListScreen struct {
	deps *Deps
	keys KeyMap

	page     int
	query    string
	search   textinput.Model
	products model.Page[model.Product]
	cursor   int
	loading  bool
	confirm  *model.Product
}

func newProductListScreen(deps *Deps) *productListScreen {
	ti := textinput.New()
	ti.Placeholder = "Search products..."
	ti.Prompt = "/ "
	ti.PromptStyle = InputPromptStyle
	ti.Width = 40
	return &productListScreen{deps: deps, keys: DefaultKeyMap(), search: ti, loading: true}
}

func (s *productListScreen) Title() string   { return "Manage Products" }
func (s *productListScreen) Capturing() bool { return s.search.Focused() }

func (s *productListScreen) Hints() []hint {
	switch {
	case s.search.Focused():
		return []hint{{"Enter", "search"}, {"Esc", "cancel"}}
	case s.confirm != nil:
		return []hint{{"y", "delete"}, {"any", "cancel"}}
	}
	return []hint{{"n", "new"}, {"e", "edit"}, {"d", "delete"}, {"/", "search"}, {"←/→", "page"}}
}

func (s *productListScreen) Init() tea.Cmd {
	deps, page, query := s.deps, s.page, s.query
	return func() tea.Msg {
		p, err := deps.Shop.Products.List(context.Background(), page, deps.adminPageSize(), query)
		return productsLoadedMsg{page: p, err: err}
	}
}

func (s *productListScreen) delete(id int64) tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		err := deps.Shop.Products.Delete(context.Background(), id)
		if err == nil {
			deps.notify(notify.SeveritySuccess, "Product deleted successfully")
		}
		return productDeletedMsg{err: err}
	}
}

func (s *productListScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case productsLoadedMsg:
		s.loading = false
		if msg.err == nil {
			s.products = msg.page
			s.cursor = clamp(s.cursor, len(s.products.Content))
		}
		return s, nil
	case productDeletedMsg:
		s.loading = true
		return s, s.Init()
	case tea.KeyMsg:
		if s.confirm != nil {
			target := s.confirm
			s.confirm = nil
			if key.Matches(msg, s.keys.Confirm) {
				return s, s.delete(target.Key())
			}
			return s, nil
		}
		if s.search.Focused() {
			switch {
			case key.Matches(msg, s.keys.Enter):
				s.search.Blur()
				s.query = strings.TrimSpace(s.search.Value())
				s.page = 0
				s.loading = true
				return s, s.Init()
			case key.Matches(msg, s.keys.Escape):
				s.search.Blur()
				s.search.SetValue(s.query)
				return s, nil
			}
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			return s, cmd
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *productListScreen) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	items := s.products.Content
	switch {
	case key.Matches(msg, s.keys.Up):
		s.cursor = clamp(s.cursor-1, len(items))
	case key.Matches(msg, s.keys.Down):
		s.cursor = clamp(s.cursor+1, len(items))
	case key.Matches(msg, s.keys.PrevPage):
		if s.page > 0 {
			s.page--
			s.loading = true
			return s, s.Init()
		}
	case key.Matches(msg, s.keys.NextPage):
		if s.page+1 < s.products.Pages() {
			s.page++
			s.loading = true
			return s, s.Init()
		}
	case key.Matches(msg, s.keys.Search):
		return s, s.search.Focus()
	case key.Matches(msg, s.keys.New):
		return s, navigate(nav.RouteAdminAddProduct)
	case key.Matches(msg, s.keys.Edit), key.Matches(msg, s.keys.Enter):
		if len(items) > 0 {
			id := items[s.cursor].Key()
			return s, func() tea.Msg { return NavigateMsg{Route: nav.RouteAdminEditProduct, ProductID: id} }
		}
	case key.Matches(msg, s.keys.Delete):
		if len(items) > 0 {
			p := items[s.cursor]
			s.confirm = &p
		}
	case key.Matches(msg, s.keys.Refresh):
		s.loading = true
		return s, s.Init()
	case key.Matches(msg, s.keys.Escape):
		return s, navigate(nav.RouteAdmin)
	}
	return s, nil
}

func (s *productListScreen) View(width, height int) string {
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
		marker, row := "  ", RowStyle
		if i == s.cursor {
			marker, row = "❯ ", SelectedStyle
		}
		state := SuccessStyle.Render("active")
		if !p.Active {
			state = DimStyle.Render("hidden")
		}
		b.WriteString(fmt.Sprintf("%s%s  %s  stock %-4d %s\n",
			marker,
			row.Render(fmt.Sprintf("%-*s", width/3, truncate(p.Name, width/3))),
			PriceStyle.Render(model.FormatPrice(p.Price)),
			p.StockQuantity,
			state))
	}
	if len(items) > 0 {
		b.WriteString("\n" + DimStyle.Render(fmt.Sprintf("Page %d of %d", s.products.Number+1, s.products.Pages())) + "\n")
	}
	if s.confirm != nil {
		b.WriteString("\n" + WarningStyle.Render(fmt.Sprintf("Delete %q? Press y to confirm.", s.confirm.Name)))
	}
	return b.String()
}
