package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/service"
)

// tokenCookie carries the session token for browser clients.
const tokenCookie = "token"

// AccountHandler serves registration, login and logout.
type AccountHandler struct {
	svc *service.AccountService
	ttl time.Duration
}

// NewAccountHandler constructs an AccountHandler. ttl is the lifetime of
// the session cookie and should match the token lifetime.
func NewAccountHandler(svc *service.AccountService, ttl time.Duration) *AccountHandler {
	return &AccountHandler{svc: svc, ttl: ttl}
}

// Register handles POST /api/auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if _, err := h.svc.Register(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeInvalid(w, err)
		case errors.Is(err, service.ErrUserExists):
			writeError(w, http.StatusBadRequest, "User already exists")
		default:
			serverError(w, r, "register", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User registered successfully",
	})
}

// Login handles POST /api/auth/login
// On success the token is returned in the body and set as an HTTP-only cookie.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeInvalid(w, err)
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			serverError(w, r, "login", err)
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"email":   user.Email,
	})
}

// Logout handles POST /api/auth/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}
