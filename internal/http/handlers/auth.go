package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
)

const (
	msgWelcomeBack      = "Welcome back!"
	msgAccountCreated   = "Account created successfully!"
	msgLoginFailed      = "Invalid email or password"
	msgRegisterFailed   = "Registration failed"
	msgPasswordMismatch = "Passwords do not match"
	msgPasswordTooShort = "Password must be at least 6 characters"

	minPasswordLength = 6
)

type AuthHandler struct {
	logger *log.Logger
}

func NewAuthHandler(logger *log.Logger) *AuthHandler { return &AuthHandler{logger: logger} }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
	Next            string `json:"next"`
}

type authResponse struct {
	User       clients.UserInfo `json:"user"`
	RedirectTo string           `json:"redirectTo"`
}

type meResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *clients.UserInfo `json:"user,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	user, err := s.Session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		msg := clients.UserMessage(err, msgLoginFailed)
		s.Toasts.Error(msg)
		writeAuthError(w, r, err, msg)
		return
	}

	s.Toasts.Success(msgWelcomeBack)
	writeJSON(w, http.StatusOK, authResponse{User: user, RedirectTo: nextFrom(r, req.Next)})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "name, email and password are required")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		s.Toasts.Error(msgPasswordMismatch)
		writeError(w, r, http.StatusUnprocessableEntity, msgPasswordMismatch)
		return
	}
	if len(req.Password) < minPasswordLength {
		s.Toasts.Error(msgPasswordTooShort)
		writeError(w, r, http.StatusUnprocessableEntity, msgPasswordTooShort)
		return
	}

	user, err := s.Session.Register(r.Context(), clients.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    strings.TrimSpace(req.Phone),
	})
	if err != nil {
		msg := clients.UserMessage(err, msgRegisterFailed)
		s.Toasts.Error(msg)
		writeAuthError(w, r, err, msg)
		return
	}

	s.Toasts.Success(msgAccountCreated)
	writeJSON(w, http.StatusCreated, authResponse{User: user, RedirectTo: nextFrom(r, req.Next)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())
	cid := middleware.GetCorrelationID(r.Context())

	if err := s.Checkout.Reset(r.Context()); err != nil {
		h.logger.Printf("logout: checkout still running session=%s cid=%s: %v", s.ID, cid, err)
	}
	if err := s.Session.Logout(r.Context()); err != nil {
		h.logger.Printf("logout session=%s cid=%s: %v", s.ID, cid, err)
		writeError(w, r, http.StatusInternalServerError, "failed to logout")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me revalidates the stored session. When the backend cannot be reached
// the locally known session is reported as is.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	ok, err := s.Session.CheckAuth(r.Context())
	if err != nil {
		h.logger.Printf("check auth session=%s cid=%s: %v", s.ID, middleware.GetCorrelationID(r.Context()), err)
		ok = s.Session.IsAuthenticated()
	}

	resp := meResponse{Authenticated: ok}
	if user, known := s.Session.User(); ok && known {
		resp.User = &user
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeAuthError keeps the backend's 4xx (wrong password, taken email)
// instead of treating it as an expired session.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := clients.StatusCode(err)
	if status < 400 || status >= 500 {
		status = http.StatusBadGateway
	}
	writeError(w, r, status, msg)
}

func nextFrom(r *http.Request, bodyNext string) string {
	if bodyNext == "" {
		bodyNext = r.URL.Query().Get("next")
	}
	return session.SafeNext(bodyNext)
}
