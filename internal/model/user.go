package model

// Credentials are what a user signs in with
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the API's reply to a successful sign-in
type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Registration is the sign-up form
type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// OTPVerification confirms a registration
type OTPVerification struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}
