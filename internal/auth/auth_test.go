package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/fakeapi"
	"github.com/pyropark/storefront/internal/model"
	"github.com/pyropark/storefront/internal/nav"
	"github.com/pyropark/storefront/internal/notify"
	"github.com/pyropark/storefront/internal/session"
	"github.com/pyropark/storefront/internal/validate"
)

type notice struct {
	severity notify.Severity
	message  string
}

type recorder struct {
	mu      sync.Mutex
	notices []notice
	routes  []nav.Route
}

func (r *recorder) Notify(severity notify.Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{severity, message})
}

func (r *recorder) Navigate(route nav.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *recorder) last() (notice, nav.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n notice
	var route nav.Route
	if len(r.notices) > 0 {
		n = r.notices[len(r.notices)-1]
	}
	if len(r.routes) > 0 {
		route = r.routes[len(r.routes)-1]
	}
	return n, route
}

type fixture struct {
	fake     *fakeapi.Server
	srv      *httptest.Server
	sessions *session.MemoryStore
	rec      *recorder
	client   *api.Client
	svc      *Service
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		fake:     fakeapi.New(),
		sessions: session.NewMemoryStore(),
		rec:      &recorder{},
		clock:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.srv = httptest.NewServer(f.fake)
	t.Cleanup(f.srv.Close)

	client, err := api.NewClient(f.srv.URL+"/api", f.sessions, api.WithNotifier(f.rec), api.WithNavigator(f.rec))
	require.NoError(t, err)
	f.client = client
	f.svc = NewService(client, f.sessions, f.rec, f.rec, WithClock(func() time.Time { return f.clock }))
	return f
}

func TestLoginStoresSessionAndLands(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		role     session.Role
		landing  nav.Route
	}{
		{"customer", fakeapi.CustomerEmail, fakeapi.CustomerPassword, session.RoleCustomer, nav.RouteHome},
		{"admin", fakeapi.AdminEmail, fakeapi.AdminPassword, session.RoleAdmin, nav.RouteAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			sess, err := f.svc.Login(context.Background(), tt.email, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.role, sess.Role)

			stored, ok := f.sessions.Get()
			require.True(t, ok)
			assert.Equal(t, sess.Token, stored.Token)

			_, route := f.rec.last()
			assert.Equal(t, tt.landing, route)
		})
	}
}

func TestLoginFailureKeepsUserOnLogin(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), fakeapi.CustomerEmail, "wrong")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	_, ok := f.sessions.Get()
	assert.False(t, ok)

	n, route := f.rec.last()
	assert.Equal(t, notice{notify.SeverityError, "Invalid email or password"}, n)
	assert.Empty(t, route)
}

func TestLoginValidationSkipsNetwork(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), " ", "")
	var verrs validate.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Zero(t, f.fake.Hits("POST /api/auth/login"))
}

func TestRegisterVerifyAndSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	form := model.Registration{
		Name:            "Ravi",
		Email:           "ravi@example.com",
		PhoneNumber:     "9123456789",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
	require.NoError(t, f.svc.Register(ctx, form))
	n, route := f.rec.last()
	assert.Equal(t, notice{notify.SeveritySuccess, OTPSentMessage}, n)
	assert.Equal(t, nav.RouteOTP, route)

	email, ok := f.svc.PendingEmail()
	require.True(t, ok)
	assert.Equal(t, "ravi@example.com", email)

	err := f.svc.VerifyOTP(ctx, "", "000000x")
	require.Error(t, err)
	n, _ = f.rec.last()
	assert.Equal(t, notify.SeverityError, n.severity)

	otp, ok := f.fake.OTP(email)
	require.True(t, ok)
	require.NoError(t, f.svc.VerifyOTP(ctx, "", otp))
	n, route = f.rec.last()
	assert.Equal(t, notice{notify.SeveritySuccess, OTPVerifiedMessage}, n)
	assert.Equal(t, nav.RouteLogin, route)

	_, ok = f.svc.PendingEmail()
	assert.False(t, ok)

	_, err = f.svc.Login(ctx, email, "secret1")
	require.NoError(t, err)
}

func TestRegisterRejectsInvalidForm(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Register(context.Background(), model.Registration{Name: "R", Email: "bad"})
	require.Error(t, err)

	n, _ := f.rec.last()
	assert.Equal(t, notice{notify.SeverityError, validate.RegistrationSummary}, n)
	assert.Zero(t, f.fake.Hits("POST /api/auth/register"))
}

func TestResendCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, model.Registration{
		Name: "Ravi", Email: "ravi@example.com", PhoneNumber: "9123456789", Password: "secret1", ConfirmPassword: "secret1",
	}))

	require.NoError(t, f.svc.ResendOTP(ctx, ""))
	n, _ := f.rec.last()
	assert.Equal(t, OTPResentMessage, n.message)

	f.clock = f.clock.Add(20 * time.Second)
	err := f.svc.ResendOTP(ctx, "")
	require.ErrorIs(t, err, ErrCooldown)
	var cd *CooldownError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, 40*time.Second, cd.Remaining)
	assert.Equal(t, 2, f.fake.Hits("POST /api/auth/register"))

	f.clock = f.clock.Add(41 * time.Second)
	assert.Zero(t, f.svc.Cooldown())
	require.NoError(t, f.svc.ResendOTP(ctx, ""))
}

func TestVerifyWithoutPendingEmail(t *testing.T) {
	f := newFixture(t)
	err := f.svc.VerifyOTP(context.Background(), "", "123456")
	require.Error(t, err)
	n, route := f.rec.last()
	assert.Equal(t, notice{notify.SeverityWarning, MissingEmailMessage}, n)
	assert.Equal(t, nav.RouteRegister, route)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), fakeapi.CustomerEmail, fakeapi.CustomerPassword)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout())
	_, ok := f.sessions.Get()
	assert.False(t, ok)
	_, route := f.rec.last()
	assert.Equal(t, nav.RouteLogin, route)
}

func TestGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guard := NewGuard(f.client, f.sessions, nil)

	require.NoError(t, guard.Check(ctx))
	assert.Zero(t, f.fake.Hits("GET /api/auth/validate"), "no session means no request")

	sess, err := f.svc.Login(ctx, fakeapi.CustomerEmail, fakeapi.CustomerPassword)
	require.NoError(t, err)
	require.NoError(t, guard.Check(ctx))
	_, ok := f.sessions.Get()
	assert.True(t, ok)

	f.fake.Revoke(sess.Token)
	err = guard.Check(ctx)
	assert.True(t, api.IsUnauthorized(err))
	_, ok = f.sessions.Get()
	assert.False(t, ok)
	n, route := f.rec.last()
	assert.Equal(t, notice{notify.SeverityWarning, api.SessionExpiredMessage}, n)
	assert.Equal(t, nav.RouteLogin, route)
}

func TestGuardKeepsSessionWhenServerUnreachable(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), fakeapi.CustomerEmail, fakeapi.CustomerPassword)
	require.NoError(t, err)
	f.srv.Close()

	guard := NewGuard(f.client, f.sessions, nil)
	err = guard.Check(context.Background())
	require.Error(t, err)
	assert.Zero(t, api.StatusOf(err))

	_, ok := f.sessions.Get()
	assert.True(t, ok)
}

func TestGuardRunRepeats(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), fakeapi.CustomerEmail, fakeapi.CustomerPassword)
	require.NoError(t, err)

	guard := NewGuard(f.client, f.sessions, nil)
	require.NoError(t, guard.Run(context.Background(), 0))
	assert.Equal(t, 1, f.fake.Hits("GET /api/auth/validate"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- guard.Run(ctx, 10*time.Millisecond) }()
	require.Eventually(t, func() bool { return f.fake.Hits("GET /api/auth/validate") >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
