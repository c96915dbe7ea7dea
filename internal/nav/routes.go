// Package nav names the client's screens and the access rules between them.
package nav

import "github.com/pyropark/storefront/internal/session"

// Route identifies a screen
type Route string

const (
	RouteHome             Route = "/"
	RouteLogin            Route = "/login"
	RouteRegister         Route = "/register"
	RouteOTP              Route = "/otp"
	RouteCart             Route = "/cart"
	RouteOrders           Route = "/orders"
	RouteAdmin            Route = "/admin"
	RouteAdminAddProduct  Route = "/admin/add-product"
	RouteAdminProducts    Route = "/admin/manage-products"
	RouteAdminEditProduct Route = "/admin/edit-product"
	RouteAdminOrders      Route = "/admin/orders"
	RouteAdminContact     Route = "/admin/contact"
)

// Access describes who may open a route
type Access int

const (
	AccessPublic    Access = iota // anyone
	AccessAnonymous               // only without a session (login, register, otp)
	AccessProtected               // any signed-in user
	AccessAdmin                   // signed-in admins
)

var access = map[Route]Access{
	RouteHome:             AccessPublic,
	RouteLogin:            AccessAnonymous,
	RouteRegister:         AccessAnonymous,
	RouteOTP:              AccessAnonymous,
	RouteCart:             AccessProtected,
	RouteOrders:           AccessProtected,
	RouteAdmin:            AccessAdmin,
	RouteAdminAddProduct:  AccessAdmin,
	RouteAdminProducts:    AccessAdmin,
	RouteAdminEditProduct: AccessAdmin,
	RouteAdminOrders:      AccessAdmin,
	RouteAdminContact:     AccessAdmin,
}

// AccessFor returns the access rule of r. Unknown routes are public.
func AccessFor(r Route) Access {
	if a, ok := access[r]; ok {
		return a
	}
	return AccessPublic
}

// Known reports whether r is a defined route
func Known(r Route) bool {
	_, ok := access[r]
	return ok
}

// Resolve returns the route actually shown when r is requested with the
// given session state. Unknown routes fall back to home.
func Resolve(r Route, s session.Session, ok bool) Route {
	if !Known(r) {
		return RouteHome
	}

	switch AccessFor(r) {
	case AccessAnonymous:
		if ok {
			return RouteHome
		}
	case AccessProtected:
		if !ok {
			return RouteLogin
		}
	case AccessAdmin:
		if !ok {
			return RouteLogin
		}
		if !s.IsAdmin() {
			return RouteHome
		}
	}
	return r
}

// Landing is where a freshly signed-in user goes
func Landing(s session.Session) Route {
	if s.IsAdmin() {
		return RouteAdmin
	}
	return RouteHome
}

// Navigator moves the client to another screen
type Navigator interface {
	Navigate(r Route)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(r Route)

func (f NavigatorFunc) Navigate(r Route) { f(r) }
