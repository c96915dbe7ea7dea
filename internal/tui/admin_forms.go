package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pyropark/storefront/internal/model"
	"github.com/pyropark/storefront/internal/nav"
	"github.com/pyropark/storefront/internal/notify"
	"github.com/pyropark/storefront/internal/shop"
	"github.com/pyropark/storefront/internal/validate"
)

type productLoadedMsg struct {
	product model.Product
	err     error
}

type savedMsg struct {
	err error
}

// productFormScreen adds a product (id 0) or edits an existing one
type productFormScreen struct {
	deps   *Deps
	keys   KeyMap
	id     int64
	form   form
	active bool
	saving bool
}

func newProductFormScreen(deps *Deps, id int64) *productFormScreen {
	return &productFormScreen{
		deps:   deps,
		keys:   DefaultKeyMap(),
		id:     id,
		active: true,
		form: newForm(
			newField("name", "Name", "Product name"),
			newField("description", "Description", "Short description"),
			newField("price", "Price", "0.00"),
			newField("stockQuantity", "Stock quantity", "0"),
			newField("image", "Image file", "path/to/image.jpg"),
		),
	}
}

func (s *productFormScreen) Title() string {
	if s.id == 0 {
		return "Add Product"
	}
	return "Edit Product"
}

func (s *productFormScreen) Capturing() bool { return true }

func (s *productFormScreen) Hints() []hint {
	return []hint{{"tab", "next"}, {"ctrl+t", "active"}, {"ctrl+s", "save"}, {"Esc", "back"}}
}

func (s *productFormScreen) Init() tea.Cmd {
	if s.id == 0 {
		return nil
	}
	deps, id := s.deps, s.id
	return func() tea.Msg {
		p, err := deps.Shop.Products.Get(context.Background(), id)
		return productLoadedMsg{product: p, err: err}
	}
}

func (s *productFormScreen) save() tea.Cmd {
	if s.saving {
		return nil
	}
	creating := s.id == 0
	product, err := validate.Product(validate.ProductForm{
		Name:          s.form.Value("name"),
		Description:   s.form.Value("description"),
		Price:         s.form.Value("price"),
		StockQuantity: s.form.Value("stockQuantity"),
		Active:        s.active,
		ImagePath:     s.form.Value("image"),
	}, creating)
	if err != nil {
		s.form.SetErrors(err)
		var verr validate.Errors
		if errors.As(err, &verr) && verr.Field("image") != "" {
			s.deps.notify(notify.SeverityError, validate.ImageRequired)
		}
		return nil
	}
	s.form.SetErrors(nil)

	image, err := shop.LoadImage(s.form.Value("image"))
	if err != nil {
		s.deps.notify(notify.SeverityError, err.Error())
		return nil
	}

	s.saving = true
	deps, id := s.deps, s.id
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if creating {
			err = deps.Shop.Products.Create(ctx, product, image)
			if err == nil {
				deps.notify(notify.SeveritySuccess, "Product added successfully!")
			}
		} else {
			err = deps.Shop.Products.Update(ctx, id, product, image)
			if err == nil {
				deps.notify(notify.SeveritySuccess, "Product updated successfully")
			}
		}
		return savedMsg{err: err}
	}
}

func (s *productFormScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case productLoadedMsg:
		if msg.err != nil {
			return s, navigate(nav.RouteAdminProducts)
		}
		p := msg.product
		s.form.SetValue("name", p.Name)
		s.form.SetValue("description", p.Description)
		s.form.SetValue("price", strconv.FormatFloat(p.Price, 'f', -1, 64))
		s.form.SetValue("stockQuantity", strconv.Itoa(p.StockQuantity))
		s.active = p.Active
		return s, nil
	case savedMsg:
		s.saving = false
		if msg.err != nil {
			return s, nil
		}
		return s, navigate(nav.RouteAdminProducts)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Escape):
			return s, navigate(nav.RouteAdminProducts)
		case msg.String() == "ctrl+t":
			s.active = !s.active
			return s, nil
		case key.Matches(msg, s.keys.Submit):
			return s, s.save()
		case key.Matches(msg, s.keys.Enter):
			if s.form.OnLast() {
				return s, s.save()
			}
			return s, s.form.move(1)
		}
	}
	return s, s.form.Update(msg)
}

func (s *productFormScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(s.form.View())
	b.WriteString(LabelStyle.Render("Active") + " ")
	if s.active {
		b.WriteString(SuccessStyle.Render("[x] listed in the catalogue"))
	} else {
		b.WriteString(DimStyle.Render("[ ] hidden"))
	}
	b.WriteString("\n")
	if s.id != 0 {
		b.WriteString(DimStyle.Render("Leave the image empty to keep the current one.") + "\n")
	}
	if s.saving {
		b.WriteString(DimStyle.Render("Saving…") + "\n")
	}
	return b.String()
}

type adminOrdersLoadedMsg struct {
	orders []model.AdminOrder
	err    error
}

// adminOrdersScreen updates order status and tracking ids
type adminOrdersScreen struct {
	deps *Deps
	keys KeyMap

	orders   []model.AdminOrder
	cursor   int
	status   map[int64]model.OrderStatus // unsaved edits
	tracking textinput.Model
	loading  bool
	saving   bool
}

func newAdminOrdersScreen(deps *Deps) *adminOrdersScreen {
	ti := textinput.New()
	ti.Placeholder = "Tracking ID"
	ti.Prompt = "❯ "
	ti.PromptStyle = InputPromptStyle
	ti.Width = 30
	return &adminOrdersScreen{deps: deps, keys: DefaultKeyMap(), status: map[int64]model.OrderStatus{}, tracking: ti, loading: true}
}

func (s *adminOrdersScreen) Title() string   { return "All Orders" }
func (s *adminOrdersScreen) Capturing() bool { return s.tracking.Focused() }

func (s *adminOrdersScreen) Hints() []hint {
	if s.tracking.Focused() {
		return []hint{{"Enter", "save"}, {"Esc", "cancel"}}
	}
	return []hint{{"←/→", "status"}, {"t", "tracking"}, {"Enter", "save"}, {"r", "refresh"}}
}

func (s *adminOrdersScreen) Init() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		orders, err := deps.Shop.Orders.All(context.Background())
		return adminOrdersLoadedMsg{orders: orders, err: err}
	}
}

func (s *adminOrdersScreen) current() (model.AdminOrder, bool) {
	if len(s.orders) == 0 {
		return model.AdminOrder{}, false
	}
	return s.orders[s.cursor], true
}

func (s *adminOrdersScreen) statusOf(o model.AdminOrder) model.OrderStatus {
	if st, ok := s.status[o.ID]; ok {
		return st
	}
	return o.OrderStatus
}

// cycle moves the selected order's pending status through the lifecycle
func (s *adminOrdersScreen) cycle(delta int) {
	o, ok := s.current()
	if !ok {
		return
	}
	cur := s.statusOf(o)
	idx := 0
	for i, st := range model.OrderStatuses {
		if st == cur {
			idx = i
			break
		}
	}
	n := len(model.OrderStatuses)
	s.status[o.ID] = model.OrderStatuses[(idx+delta+n)%n]
}

func (s *adminOrdersScreen) save() tea.Cmd {
	o, ok := s.current()
	if !ok || s.saving {
		return nil
	}
	tracking := o.TrackingID
	if s.tracking.Focused() || s.tracking.Value() != "" {
		tracking = s.tracking.Value()
	}
	update := model.OrderUpdate{ID: o.ID, OrderStatus: s.statusOf(o), TrackingID: tracking}
	s.tracking.Blur()
	s.saving = true
	deps := s.deps
	return func() tea.Msg {
		err := deps.Shop.Orders.Update(context.Background(), update)
		if err == nil {
			deps.notify(notify.SeveritySuccess, "Order updated successfully")
		} else if errors.As(err, new(validate.Errors)) {
			deps.notify(notify.SeverityError, err.Error())
		}
		return savedMsg{err: err}
	}
}

func (s *adminOrdersScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case adminOrdersLoadedMsg:
		s.loading = false
		if msg.err == nil {
			s.orders = msg.orders
			s.cursor = clamp(s.cursor, len(s.orders))
			s.status = map[int64]model.OrderStatus{}
			s.tracking.SetValue("")
		}
		return s, nil
	case savedMsg:
		s.saving = false
		if msg.err != nil {
			return s, nil
		}
		return s, s.Init()
	case tea.KeyMsg:
		if s.tracking.Focused() {
			switch {
			case key.Matches(msg, s.keys.Enter):
				return s, s.save()
			case key.Matches(msg, s.keys.Escape):
				s.tracking.Blur()
				s.tracking.SetValue("")
				return s, nil
			}
			var cmd tea.Cmd
			s.tracking, cmd = s.tracking.Update(msg)
			return s, cmd
		}
		switch {
		case key.Matches(msg, s.keys.Up):
			s.cursor = clamp(s.cursor-1, len(s.orders))
			s.tracking.SetValue("")
		case key.Matches(msg, s.keys.Down):
			s.cursor = clamp(s.cursor+1, len(s.orders))
			s.tracking.SetValue("")
		case key.Matches(msg, s.keys.PrevPage):
			s.cycle(-1)
		case key.Matches(msg, s.keys.NextPage):
			s.cycle(1)
		case msg.String() == "t":
			if o, ok := s.current(); ok {
				s.tracking.SetValue(o.TrackingID)
				return s, s.tracking.Focus()
			}
		case key.Matches(msg, s.keys.Enter):
			return s, s.save()
		case key.Matches(msg, s.keys.Refresh):
			s.loading = true
			return s, s.Init()
		case key.Matches(msg, s.keys.Escape):
			return s, navigate(nav.RouteAdmin)
		}
	}
	return s, nil
}

func (s *adminOrdersScreen) View(width, height int) string {
	switch {
	case s.loading && len(s.orders) == 0:
		return DimStyle.Render("Loading orders...")
	case len(s.orders) == 0:
		return DimStyle.Render("No orders yet.")
	}

	var b strings.Builder
	start, end := window(len(s.orders), s.cursor, height-8)
	for i := start; i < end; i++ {
		o := s.orders[i]
		marker, row := "  ", RowStyle
		if i == s.cursor {
			marker, row = "❯ ", SelectedStyle
		}
		st := s.statusOf(o)
		status := fmt.Sprintf("%s %s", st.Icon(), st)
		if st != o.OrderStatus {
			status = WarningStyle.Render(status + "*")
		}
		line := fmt.Sprintf("#%-5d %s  %-18s", o.ID, o.OrderDate.Date(), truncate(o.UserName, 18))
		b.WriteString(marker + row.Render(line) + "  " + status + "\n")
	}

	if o, ok := s.current(); ok {
		b.WriteString("\n" + TitleStyle.Render(fmt.Sprintf("Order #%d", o.ID)) + "\n")
		b.WriteString(DimStyle.Render(strings.Join(nonEmpty(o.UserEmail, o.UserPhone), " · ")) + "\n")
		b.WriteString(DimStyle.Render(truncate(o.DeliveryAddress, width-2)) + "\n")
		var total float64
		for _, it := range o.Items {
			total += it.UnitPrice() * float64(it.Quantity)
			b.WriteString(DimStyle.Render(fmt.Sprintf("  %s × %d", truncate(it.Product.Name, width/2), it.Quantity)) + "\n")
		}
		b.WriteString(PriceStyle.Render("Total "+model.FormatPrice(total)) + "\n")
		if s.tracking.Focused() {
			b.WriteString(s.tracking.View() + "\n")
		} else if o.TrackingID != "" {
			b.WriteString(LabelStyle.Render("Tracking ") + o.TrackingID + "\n")
		}
	}
	return b.String()
}

// contactScreen edits the shop contact details
type contactScreen struct {
	deps   *Deps
	keys   KeyMap
	form   form
	saving bool
}

func newContactScreen(deps *Deps) *contactScreen {
	return &contactScreen{
		deps: deps,
		keys: DefaultKeyMap(),
		form: newForm(
			newField("shopName", "Shop name", ""),
			newField("address", "Address", ""),
			newField("phoneNumber", "Phone", ""),
			newField("mailId", "Email", ""),
		),
	}
}

func (s *contactScreen) Title() string   { return "Contact Details" }
func (s *contactScreen) Capturing() bool { return true }

func (s *contactScreen) Hints() []hint {
	return []hint{{"tab", "next"}, {"ctrl+s", "save"}, {"Esc", "back"}}
}

func (s *contactScreen) Init() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		c, err := deps.Shop.Contact.Get(context.Background())
		return contactLoadedMsg{contact: c, err: err}
	}
}

func (s *contactScreen) save() tea.Cmd {
	if s.saving {
		return nil
	}
	s.saving = true
	deps := s.deps
	c := model.Contact{
		ShopName:    strings.TrimSpace(s.form.Value("shopName")),
		Address:     strings.TrimSpace(s.form.Value("address")),
		PhoneNumber: strings.TrimSpace(s.form.Value("phoneNumber")),
		MailID:      strings.TrimSpace(s.form.Value("mailId")),
	}
	return func() tea.Msg {
		err := deps.Shop.Contact.Update(context.Background(), c)
		if err == nil {
			deps.notify(notify.SeveritySuccess, "Contact information saved!")
		}
		return savedMsg{err: err}
	}
}

func (s *contactScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case contactLoadedMsg:
		if msg.err == nil {
			s.form.SetValue("shopName", msg.contact.ShopName)
			s.form.SetValue("address", msg.contact.Address)
			s.form.SetValue("phoneNumber", msg.contact.PhoneNumber)
			s.form.SetValue("mailId", msg.contact.MailID)
		}
		return s, nil
	case savedMsg:
		s.saving = false
		return s, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Escape):
			return s, navigate(nav.RouteAdmin)
		case key.Matches(msg, s.keys.Submit):
			return s, s.save()
		case key.Matches(msg, s.keys.Enter):
			if s.form.OnLast() {
				return s, s.save()
			}
			return s, s.form.move(1)
		}
	}
	return s, s.form.Update(msg)
}

func (s *contactScreen) View(width, height int) string {
	out := s.form.View()
	if s.saving {
		out += DimStyle.Render("Saving…")
	}
	return out
}
