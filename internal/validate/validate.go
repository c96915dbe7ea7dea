// Package validate holds the client-side form rules. A form that fails
// validation never reaches the network.
package validate

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"

	"github.com/pyropark/storefront/internal/model"
)

const (
	emailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	// Indian mobile numbers
	phonePattern = `^[6-9]\d{9}$`

	minNameLength     = 2
	minPasswordLength = 6
)

// Summary messages shown when a whole form is rejected
const (
	RegistrationSummary = "Please fix all validation errors"
	AddressRequired     = "Please enter a delivery address."
	ImageRequired       = "Please select an image."
)

// Errors maps a field name to its message
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for field, or ""
func (e Errors) Field(field string) string {
	return e[field]
}

func (e Errors) add(field, msg string) {
	if msg != "" {
		e[field] = msg
	}
}

func (e Errors) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Name checks a person's name
func Name(v string) string {
	switch {
	case govalidator.IsNull(v):
		return "Name is required"
	case utf8.RuneCountInString(strings.TrimSpace(v)) < minNameLength:
		return "Name must be at least 2 characters"
	}
	return ""
}

// Email checks an email address
func Email(v string) string {
	switch {
	case govalidator.IsNull(v):
		return "Email is required"
	case !govalidator.Matches(v, emailPattern):
		return "Please enter a valid email address"
	}
	return ""
}

// Phone checks a 10-digit mobile number
func Phone(v string) string {
	switch {
	case govalidator.IsNull(v):
		return "Phone number is required"
	case !govalidator.Matches(v, phonePattern):
		return "Please enter a valid 10-digit mobile number"
	}
	return ""
}

// Password checks a new password
func Password(v string) string {
	switch {
	case govalidator.IsNull(v):
		return "Password is required"
	case utf8.RuneCountInString(v) < minPasswordLength:
		return "Password must be at least 6 characters"
	}
	return ""
}

// ConfirmPassword checks the repeated password
func ConfirmPassword(password, confirm string) string {
	switch {
	case govalidator.IsNull(confirm):
		return "Please confirm your password"
	case password != confirm:
		return "Passwords do not match"
	}
	return ""
}

// Registration validates the sign-up form
func Registration(r model.Registration) error {
	errs := Errors{}
	errs.add("name", Name(r.Name))
	errs.add("email", Email(r.Email))
	errs.add("phoneNumber", Phone(r.PhoneNumber))
	errs.add("password", Password(r.Password))
	errs.add("confirmPassword", ConfirmPassword(r.Password, r.ConfirmPassword))
	return errs.err()
}

// Login validates the sign-in form
func Login(c model.Credentials) error {
	errs := Errors{}
	if strings.TrimSpace(c.Email) == "" {
		errs.add("email", "Email is required")
	}
	if c.Password == "" {
		errs.add("password", "Password is required")
	}
	return errs.err()
}

// Address validates a delivery address
func Address(v string) error {
	if strings.TrimSpace(v) == "" {
		return Errors{"address": AddressRequired}
	}
	return nil
}

// OTP validates a one-time code
func OTP(v string) error {
	if strings.TrimSpace(v) == "" {
		return Errors{"otp": "Please enter the OTP"}
	}
	return nil
}

// ProductForm is the admin product editor as typed by the user
type ProductForm struct {
	Name          string
	Description   string
	Price         string
	StockQuantity string
	Active        bool
	ImagePath     string
}

// Product validates the form and converts it. requireImage is set when
// creating a product.
func Product(f ProductForm, requireImage bool) (model.Product, error) {
	errs := Errors{}
	p := model.Product{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Active:      f.Active,
	}

	if p.Name == "" {
		errs.add("name", "Name is required")
	}

	price := strings.TrimSpace(f.Price)
	switch {
	case price == "":
		errs.add("price", "Price is required")
	case !govalidator.IsFloat(price):
		errs.add("price", "Price must be a number")
	default:
		v, _ := strconv.ParseFloat(price, 64)
		if v <= 0 {
			errs.add("price", "Price must be greater than 0")
		}
		p.Price = v
	}

	stock := strings.TrimSpace(f.StockQuantity)
	switch {
	case stock == "":
		errs.add("stockQuantity", "Stock quantity is required")
	case !govalidator.IsInt(stock):
		errs.add("stockQuantity", "Stock quantity must be a whole number")
	default:
		v, _ := strconv.Atoi(stock)
		if v < 0 {
			errs.add("stockQuantity", "Stock quantity cannot be negative")
		}
		p.StockQuantity = v
	}

	if requireImage && strings.TrimSpace(f.ImagePath) == "" {
		errs.add("image", ImageRequired)
	}

	if err := errs.err(); err != nil {
		return model.Product{}, err
	}
	return p, nil
}
