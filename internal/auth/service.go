// Package auth covers sign-in, registration, and session validation.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/model"
	"github.com/pyropark/storefront/internal/nav"
	"github.com/pyropark/storefront/internal/notify"
	"github.com/pyropark/storefront/internal/session"
	"github.com/pyropark/storefront/internal/validate"
)

// ResendCooldown is the minimum gap between OTP resends
const ResendCooldown = 60 * time.Second

// Messages shown by the auth flows
const (
	LoginFailedMessage    = "Login failed. Check your credentials."
	OTPSentMessage        = "OTP sent to your email."
	OTPVerifiedMessage    = "OTP verified! You can now log in."
	OTPResentMessage      = "OTP resent to your email."
	OTPInvalidMessage     = "Invalid or expired OTP. Please try again."
	ResendFailedMessage   = "Failed to resend OTP. Please re-register."
	RegisterFailedMessage = "Registration failed."
	MissingEmailMessage   = "User data missing. Please re-register."
)

// ErrCooldown is matched by errors returned while a resend is throttled
var ErrCooldown = errors.New("otp resend cooling down")

// CooldownError carries the time left before another resend
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %ds before requesting another OTP", int(e.Remaining.Round(time.Second).Seconds()))
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldown
}

// Doer is the part of *api.Client auth needs
type Doer interface {
	Do(ctx context.Context, req api.Request) (*api.Response, error)
	JSON(ctx context.Context, req api.Request, out any) error
}

// Service runs the sign-in and sign-up flows
type Service struct {
	client    Doer
	sessions  session.Store
	notifier  notify.Notifier
	navigator nav.Navigator
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu           sync.Mutex
	pendingEmail string
	lastResend   time.Time
}

// Option configures a Service
type Option func(*Service)

// WithTTL sets the lifetime of stored sessions
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates the auth service
func NewService(client Doer, sessions session.Store, notifier notify.Notifier, navigator nav.Navigator, opts ...Option) *Service {
	s := &Service{
		client:    client,
		sessions:  sessions,
		notifier:  notifier,
		navigator: navigator,
		ttl:       session.DefaultTTL,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login signs in and stores the session. On success the user is sent to
// their landing screen; on failure no session is stored.
func (s *Service) Login(ctx context.Context, email, password string) (session.Session, error) {
	creds := model.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Login(creds); err != nil {
		s.notifier.Notify(notify.SeverityError, err.Error())
		return session.Session{}, err
	}

	var out model.LoginResult
	err := s.client.JSON(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     "/auth/login",
		JSON:     creds,
		Public:   true,
		Fallback: LoginFailedMessage,
	}, &out)
	if err != nil {
		return session.Session{}, err
	}
	if out.Token == "" {
		s.notifier.Notify(notify.SeverityError, LoginFailedMessage)
		return session.Session{}, fmt.Errorf("login: response carried no token")
	}

	if err := s.sessions.Set(out.Token, session.ParseRole(out.Role), s.ttl); err != nil {
		return session.Session{}, fmt.Errorf("store session: %w", err)
	}
	sess, ok := s.sessions.Get()
	if !ok {
		return session.Session{}, session.ErrNoSession
	}

	s.logger.Info("signed in", "role", sess.Role)
	s.navigator.Navigate(nav.Landing(sess))
	return sess, nil
}

// Register validates the form and starts a registration. The email is
// remembered for OTP verification.
func (s *Service) Register(ctx context.Context, form model.Registration) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.PhoneNumber = strings.TrimSpace(form.PhoneNumber)

	if err := validate.Registration(form); err != nil {
		s.notifier.Notify(notify.SeverityError, validate.RegistrationSummary)
		return err
	}

	_, err := s.client.Do(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     "/auth/register",
		JSON:     form,
		Public:   true,
		Fallback: RegisterFailedMessage,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pendingEmail = form.Email
	s.lastResend = time.Time{}
	s.mu.Unlock()

	s.notifier.Notify(notify.SeveritySuccess, OTPSentMessage)
	s.navigator.Navigate(nav.RouteOTP)
	return nil
}

// PendingEmail is the address awaiting OTP verification
func (s *Service) PendingEmail() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingEmail, s.pendingEmail != ""
}

// VerifyOTP confirms a registration, then sends the user to sign in
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) error {
	email, err := s.resolveEmail(email)
	if err != nil {
		return err
	}
	if err := validate.OTP(otp); err != nil {
		s.notifier.Notify(notify.SeverityError, err.Error())
		return err
	}

	_, err = s.client.Do(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     "/auth/verify-otp",
		JSON:     model.OTPVerification{Email: email, OTP: strings.TrimSpace(otp)},
		Public:   true,
		Fallback: OTPInvalidMessage,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pendingEmail = ""
	s.lastResend = time.Time{}
	s.mu.Unlock()

	s.notifier.Notify(notify.SeveritySuccess, OTPVerifiedMessage)
	s.navigator.Navigate(nav.RouteLogin)
	return nil
}

// ResendOTP asks for a new code. It is throttled to one call per
// ResendCooldown.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	email, err := s.resolveEmail(email)
	if err != nil {
		return err
	}
	if remaining := s.Cooldown(); remaining > 0 {
		err := &CooldownError{Remaining: remaining}
		s.notifier.Notify(notify.SeverityWarning, err.Error())
		return err
	}

	_, err = s.client.Do(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     "/auth/register",
		JSON:     map[string]string{"email": email},
		Public:   true,
		Fallback: ResendFailedMessage,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lastResend = s.now()
	s.mu.Unlock()

	s.notifier.Notify(notify.SeveritySuccess, OTPResentMessage)
	return nil
}

// Cooldown returns the time left before ResendOTP is allowed
func (s *Service) Cooldown() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResend.IsZero() {
		return 0
	}
	left := ResendCooldown - s.now().Sub(s.lastResend)
	if left < 0 {
		return 0
	}
	return left
}

// Logout forgets the session and returns to the login screen
func (s *Service) Logout() error {
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("signed out")
	s.navigator.Navigate(nav.RouteLogin)
	return nil
}

func (s *Service) resolveEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email != "" {
		return email, nil
	}
	if pending, ok := s.PendingEmail(); ok {
		return pending, nil
	}
	s.notifier.Notify(notify.SeverityWarning, MissingEmailMessage)
	s.navigator.Navigate(nav.RouteRegister)
	return "", errors.New("no pending registration")
}
