package nav

import (
	"testing"

	"github.com/pyropark/storefront/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	customer := session.Session{Token: "t", Role: session.RoleCustomer}
	admin := session.Session{Token: "t", Role: session.RoleAdmin}

	tests := []struct {
		name  string
		route Route
		sess  session.Session
		ok    bool
		want  Route
	}{
		{"home as guest", RouteHome, session.Session{}, false, RouteHome},
		{"cart as guest", RouteCart, session.Session{}, false, RouteLogin},
		{"orders as customer", RouteOrders, customer, true, RouteOrders},
		{"admin as guest", RouteAdmin, session.Session{}, false, RouteLogin},
		{"admin as customer", RouteAdminOrders, customer, true, RouteHome},
		{"admin as admin", RouteAdminContact, admin, true, RouteAdminContact},
		{"login when signed in", RouteLogin, customer, true, RouteHome},
		{"register as guest", RouteRegister, session.Session{}, false, RouteRegister},
		{"otp when signed in", RouteOTP, admin, true, RouteHome},
		{"unknown route", Route("/nope"), customer, true, RouteHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.route, tt.sess, tt.ok))
		})
	}
}

func TestLanding(t *testing.T) {
	assert.Equal(t, RouteAdmin, Landing(session.Session{Role: session.RoleAdmin}))
	assert.Equal(t, RouteHome, Landing(session.Session{Role: session.RoleCustomer}))
}
