// Package handlers exposes the HTTP API. Handlers translate between
// the wire format and the auth, store, and plans packages; they hold no
// business logic of their own.
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/zxdhiruu/Restroo/internal/auth"
	"github.com/zxdhiruu/Restroo/internal/middleware"
	"github.com/zxdhiruu/Restroo/internal/store"
	"github.com/zxdhiruu/Restroo/internal/token"
)

// userResponse is the public shape of a user. Credentials and reset
// state never leave the server.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

// sessionResponse is returned by every endpoint that establishes a
// session.
type sessionResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

// AuthHandler serves the /api/auth routes.
type AuthHandler struct {
	auth   *auth.Service
	google *auth.Google

	// frontendURL is where the browser lands after OAuth sign-in.
	frontendURL string
}

// NewAuthHandler creates the auth handler. google may be nil when
// Google sign-in is not configured.
func NewAuthHandler(svc *auth.Service, google *auth.Google, frontendURL string) *AuthHandler {
	return &AuthHandler{auth: svc, google: google, frontendURL: frontendURL}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Password  string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, session, err := h.auth.Signup(r.Context(), req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			writeMessage(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, auth.ErrWeakPassword):
			writeMessage(w, http.StatusBadRequest, "Password must be at least 8 characters")
		case errors.Is(err, auth.ErrInvalidEmail):
			writeMessage(w, http.StatusBadRequest, "Invalid email address")
		case errors.Is(err, auth.ErrMissingName):
			writeMessage(w, http.StatusBadRequest, "First and last name are required")
		default:
			writeServerError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Message: "Account created",
		Token:   session,
		User:    toUserResponse(u),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Message: "Logged in",
		Token:   session,
		User:    toUserResponse(u),
	})
}

// ForgotPassword handles POST /api/auth/forgot-password. The response
// is identical whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServerError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "If that email is registered, a reset link has been sent")
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			writeMessage(w, http.StatusBadRequest, "Password must be at least 8 characters")
		case errors.Is(err, auth.ErrInvalidResetToken):
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired reset token")
		default:
			writeServerError(w, err)
		}
		return
	}
	writeMessage(w, http.StatusOK, "Password has been reset")
}

// Me handles GET /api/auth/me. Requires the auth middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.GetUser(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]userResponse{"user": toUserResponse(u)})
}

// Logout handles POST /api/auth/logout. Sessions are stateless; the
// client discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Logged out")
}

// oauthStateCookie carries the CSRF state across the OAuth redirect.
const oauthStateCookie = "restroo_oauth_state"

// GoogleStart handles GET /api/auth/google: sets the state cookie and
// redirects to the consent screen.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeMessage(w, http.StatusNotImplemented, "Google sign-in is not configured")
		return
	}

	state, err := token.NewOpaque()
	if err != nil {
		writeServerError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/google/callback. On success the
// browser is redirected to the frontend with a short-lived one-time
// login code; the session token itself never appears in a URL.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeMessage(w, http.StatusNotImplemented, "Google sign-in is not configured")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || !token.Equal(cookie.Value, r.URL.Query().Get("state")) {
		h.redirectWithError(w, r, "state_mismatch")
		return
	}
	// State is single use.
	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Path:   "/api/auth/google",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "access_denied")
		return
	}

	u, _, err := h.google.Callback(r.Context(), code)
	if err != nil {
		if errors.Is(err, auth.ErrProviderExchange) {
			h.redirectWithError(w, r, "provider_error")
			return
		}
		writeServerError(w, err)
		return
	}

	loginCode, err := h.auth.IssueLoginCode(r.Context(), u.ID)
	if err != nil {
		writeServerError(w, err)
		return
	}

	dest := h.frontendURL + "/dashboard?code=" + url.QueryEscape(loginCode)
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, reason string) {
	dest := h.frontendURL + "/login?error=" + url.QueryEscape(reason)
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

// GoogleExchange handles POST /api/auth/google/exchange: the frontend
// trades its one-time login code for a session token.
func (h *AuthHandler) GoogleExchange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, session, err := h.auth.ExchangeLoginCode(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidLoginCode) {
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired login code")
			return
		}
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Message: "Logged in",
		Token:   session,
		User:    toUserResponse(u),
	})
}
