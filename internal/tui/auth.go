package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pyropark/storefront/internal/model"
	"github.com/pyropark/storefront/internal/nav"
)

type authDoneMsg struct {
	err error
}

// loginScreen signs a user in. The auth service moves to the landing
// screen on success.
type loginScreen struct {
	deps       *Deps
	keys       KeyMap
	form       form
	submitting bool
}

func newLoginScreen(deps *Deps) *loginScreen {
	email := newField("email", "Email", "you@example.com")
	return &loginScreen{
		deps: deps,
		keys: DefaultKeyMap(),
		form: newForm(email, newSecretField("password", "Password")),
	}
}

func (s *loginScreen) Title() string   { return "Sign In" }
func (s *loginScreen) Capturing() bool { return true }

func (s *loginScreen) Hints() []hint {
	return []hint{{"tab", "next"}, {"Enter", "sign in"}, {"ctrl+r", "register"}, {"Esc", "home"}}
}

func (s *loginScreen) Init() tea.Cmd { return nil }

func (s *loginScreen) submit() tea.Cmd {
	if s.submitting {
		return nil
	}
	s.submitting = true
	deps := s.deps
	email, password := s.form.Value("email"), s.form.Value("password")
	return func() tea.Msg {
		_, err := deps.Auth.Login(context.Background(), email, password)
		return authDoneMsg{err: err}
	}
}

func (s *loginScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		s.submitting = false
		s.form.SetErrors(msg.err)
		if msg.err != nil {
			s.form.SetValue("password", "")
		}
		return s, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Escape):
			return s, navigate(nav.RouteHome)
		case msg.String() == "ctrl+r":
			return s, navigate(nav.RouteRegister)
		case key.Matches(msg, s.keys.Submit):
			return s, s.submit()
		case key.Matches(msg, s.keys.Enter):
			if s.form.OnLast() {
				return s, s.submit()
			}
			return s, s.form.move(1)
		}
	}
	return s, s.form.Update(msg)
}

func (s *loginScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(s.form.View())
	if s.submitting {
		b.WriteString("\n" + DimStyle.Render("Signing in…"))
	}
	b.WriteString("\n" + DimStyle.Render("New here? Press ctrl+r to create an account."))
	return b.String()
}

// registerScreen creates an account and sends the user to OTP entry
type registerScreen struct {
	deps       *Deps
	keys       KeyMap
	form       form
	submitting bool
}

func newRegisterScreen(deps *Deps) *registerScreen {
	return &registerScreen{
		deps: deps,
		keys: DefaultKeyMap(),
		form: newForm(
			newField("name", "Name", "Full name"),
			newField("email", "Email", "you@example.com"),
			newField("phoneNumber", "Phone", "10 digit mobile number"),
			newSecretField("password", "Password"),
			newSecretField("confirmPassword", "Confirm password"),
		),
	}
}

func (s *registerScreen) Title() string   { return "Create Account" }
func (s *registerScreen) Capturing() bool { return true }

func (s *registerScreen) Hints() []hint {
	return []hint{{"tab", "next"}, {"ctrl+s", "register"}, {"ctrl+l", "sign in"}, {"Esc", "home"}}
}

func (s *registerScreen) Init() tea.Cmd { return nil }

func (s *registerScreen) submit() tea.Cmd {
	if s.submitting {
		return nil
	}
	s.submitting = true
	deps := s.deps
	reg := model.Registration{
		Name:            s.form.Value("name"),
		Email:           s.form.Value("email"),
		PhoneNumber:     s.form.Value("phoneNumber"),
		Password:        s.form.Value("password"),
		ConfirmPassword: s.form.Value("confirmPassword"),
	}
	return func() tea.Msg {
		return authDoneMsg{err: deps.Auth.Register(context.Background(), reg)}
	}
}

func (s *registerScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		s.submitting = false
		s.form.SetErrors(msg.err)
		return s, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Escape):
			return s, navigate(nav.RouteHome)
		case msg.String() == "ctrl+l":
			return s, navigate(nav.RouteLogin)
		case key.Matches(msg, s.keys.Submit):
			return s, s.submit()
		case key.Matches(msg, s.keys.Enter):
			if s.form.OnLast() {
				return s, s.submit()
			}
			return s, s.form.move(1)
		}
	}
	return s, s.form.Update(msg)
}

func (s *registerScreen) View(width, height int) string {
	out := s.form.View()
	if s.submitting {
		out += "\n" + DimStyle.Render("Sending OTP…")
	}
	return out
}

type otpTickMsg struct {
	id uint64
}

var otpScreenSeq atomic.Uint64

// otpScreen verifies the emailed code and offers a throttled resend
type otpScreen struct {
	deps       *Deps
	keys       KeyMap
	id         uint64
	form       form
	cooldown   time.Duration
	submitting bool
}

func newOTPScreen(deps *Deps) *otpScreen {
	otp := newField("otp", "One-time password", "6 digit code")
	otp.input.CharLimit = 6
	return &otpScreen{
		deps: deps,
		keys: DefaultKeyMap(),
		id:   otpScreenSeq.Add(1),
		form: newForm(otp),
	}
}

func (s *otpScreen) Title() string   { return "Verify Email" }
func (s *otpScreen) Capturing() bool { return true }

func (s *otpScreen) Hints() []hint {
	return []hint{{"Enter", "verify"}, {"ctrl+r", "resend"}, {"Esc", "home"}}
}

func (s *otpScreen) Init() tea.Cmd {
	s.cooldown = s.deps.Auth.Cooldown()
	return s.tick()
}

func (s *otpScreen) tick() tea.Cmd {
	id := s.id
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return otpTickMsg{id: id} })
}

func (s *otpScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case otpTickMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.cooldown = s.deps.Auth.Cooldown()
		return s, s.tick()
	case authDoneMsg:
		s.submitting = false
		s.form.SetErrors(msg.err)
		s.cooldown = s.deps.Auth.Cooldown()
		return s, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Escape):
			return s, navigate(nav.RouteHome)
		case msg.String() == "ctrl+r":
			return s, s.resend()
		case key.Matches(msg, s.keys.Enter), key.Matches(msg, s.keys.Submit):
			return s, s.verify()
		}
	}
	return s, s.form.Update(msg)
}

func (s *otpScreen) verify() tea.Cmd {
	if s.submitting {
		return nil
	}
	s.submitting = true
	deps, code := s.deps, s.form.Value("otp")
	return func() tea.Msg {
		return authDoneMsg{err: deps.Auth.VerifyOTP(context.Background(), "", code)}
	}
}

func (s *otpScreen) resend() tea.Cmd {
	if s.submitting {
		return nil
	}
	s.submitting = true
	deps := s.deps
	return func() tea.Msg {
		return authDoneMsg{err: deps.Auth.ResendOTP(context.Background(), "")}
	}
}

func (s *otpScreen) View(width, height int) string {
	var b strings.Builder
	if email, ok := s.deps.Auth.PendingEmail(); ok {
		b.WriteString(DimStyle.Render("We sent a code to ") + LabelStyle.Render(email) + "\n\n")
	} else {
		b.WriteString(WarningStyle.Render("No registration in progress.") + "\n\n")
	}
	b.WriteString(s.form.View())
	if s.cooldown > 0 {
		b.WriteString("\n" + DimStyle.Render(fmt.Sprintf("Resend available in %ds", int(s.cooldown.Round(time.Second)/time.Second))))
	} else {
		b.WriteString("\n" + DimStyle.Render("Didn't get it? Press ctrl+r to resend."))
	}
	return b.String()
}
