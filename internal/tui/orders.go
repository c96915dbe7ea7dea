package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pyropark/storefront/internal/model"
	"github.com/pyropark/storefront/internal/notify"
)

type ordersLoadedMsg struct {
	orders []model.Order
	err    error
}

type invoiceSavedMsg struct {
	path string
	err  error
}

// ordersScreen shows the signed-in user's order history
type ordersScreen struct {
	deps *Deps
	keys KeyMap

	orders   []model.Order
	cursor   int
	expanded map[int64]bool
	loading  bool
}

func newOrdersScreen(deps *Deps) *ordersScreen {
	return &ordersScreen{deps: deps, keys: DefaultKeyMap(), expanded: map[int64]bool{}, loading: true}
}

func (s *ordersScreen) Title() string { return "My Orders" }

func (s *ordersScreen) Capturing() bool { return false }

func (s *ordersScreen) Hints() []hint {
	return []hint{{"Enter", "items"}, {"i", "save invoice"}, {"r", "refresh"}}
}

func (s *ordersScreen) Init() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		orders, err := deps.Shop.Orders.List(context.Background())
		return ordersLoadedMsg{orders: orders, err: err}
	}
}

func (s *ordersScreen) saveInvoice(id int64) tea.Cmd {
	deps := s.deps
	dir := "."
	if deps.Config != nil {
		dir = deps.Config.DownloadDir()
	}
	return func() tea.Msg {
		path, err := deps.Shop.Orders.SaveInvoice(context.Background(), id, dir)
		return invoiceSavedMsg{path: path, err: err}
	}
}

func (s *ordersScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ordersLoadedMsg:
		s.loading = false
		if msg.err == nil {
			s.orders = msg.orders
			s.cursor = clamp(s.cursor, len(s.orders))
		}
	case invoiceSavedMsg:
		if msg.err == nil {
			s.deps.notify(notify.SeveritySuccess, "Invoice saved to "+msg.path)
		} else if s.deps.Logger != nil {
			s.deps.Logger.Warn("invoice not saved", "error", msg.err)
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Up):
			s.cursor = clamp(s.cursor-1, len(s.orders))
		case key.Matches(msg, s.keys.Down):
			s.cursor = clamp(s.cursor+1, len(s.orders))
		case key.Matches(msg, s.keys.Enter):
			if len(s.orders) > 0 {
				id := s.orders[s.cursor].OrderID
				s.expanded[id] = !s.expanded[id]
			}
		case key.Matches(msg, s.keys.Invoice):
			if len(s.orders) > 0 {
				return s, s.saveInvoice(s.orders[s.cursor].OrderID)
			}
		case key.Matches(msg, s.keys.Refresh):
			s.loading = true
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *ordersScreen) View(width, height int) string {
	switch {
	case s.loading && len(s.orders) == 0:
		return DimStyle.Render("Loading orders...")
	case len(s.orders) == 0:
		return DimStyle.Render("You have no orders yet.")
	}

	var b strings.Builder
	start, end := window(len(s.orders), s.cursor, height-2)
	for i := start; i < end; i++ {
		o := s.orders[i]
		marker, row := "  ", RowStyle
		if i == s.cursor {
			marker, row = "❯ ", SelectedStyle
		}
		line := fmt.Sprintf("#%-6d %s  %d item(s)  %s %s", o.OrderID, o.OrderDate.Date(), o.NumberOfItems, o.Status.Icon(), o.Status)
		if o.TrackingID != "" {
			line += "  tracking " + o.TrackingID
		}
		b.WriteString(marker + row.Render(truncate(line, width-2)) + "\n")

		if s.expanded[o.OrderID] {
			var total float64
			for _, it := range o.Items {
				sub := it.UnitPrice() * float64(it.Quantity)
				total += sub
				b.WriteString(DimStyle.Render(fmt.Sprintf("      %s × %d  %s", truncate(it.Product.Name, width/2), it.Quantity, model.FormatPrice(sub))) + "\n")
			}
			b.WriteString("      " + PriceStyle.Render("Total "+model.FormatPrice(total)) + "\n")
		}
	}
	return b.String()
}
