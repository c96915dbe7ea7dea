package fakeapi

import (
	"net/http"
	"strings"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// login handles POST /auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	u, ok := s.store.users[strings.ToLower(strings.TrimSpace(req.Email))]
	if !ok || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !u.verified {
		writeError(w, http.StatusForbidden, "Please verify your email first")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token": s.store.issueToken(u.email),
		"role":  u.role,
	})
}

// register handles POST /auth/register. A body with only an email reissues
// the OTP of a pending registration.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	existing, ok := s.store.users[email]
	if ok && existing.verified {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}

	if req.Password == "" {
		if !ok {
			writeError(w, http.StatusBadRequest, "No pending registration for this email")
			return
		}
		existing.otp = generateOTP()
		s.logger.Info("otp issued", "email", email, "otp", existing.otp)
		writeJSON(w, http.StatusOK, map[string]string{"message": "OTP resent"})
		return
	}

	u := &user{
		name:     strings.TrimSpace(req.Name),
		email:    email,
		phone:    req.PhoneNumber,
		password: req.Password,
		role:     "USER",
		otp:      generateOTP(),
	}
	s.store.users[email] = u
	s.logger.Info("otp issued", "email", email, "otp", u.otp)
	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent"})
}

// verifyOTP handles POST /auth/verify-otp
func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	u, ok := s.store.users[strings.ToLower(strings.TrimSpace(req.Email))]
	if !ok || u.verified || u.otp == "" || u.otp != strings.TrimSpace(req.OTP) {
		writeError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	u.verified = true
	u.otp = ""
	writeJSON(w, http.StatusOK, map[string]string{"message": "verified"})
}

// validate handles GET /auth/validate; BearerAuth has already run
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
