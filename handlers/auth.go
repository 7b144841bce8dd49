// Package handlers maps HTTP requests onto auth façade calls. Requests are
// form-encoded; responses are JSON plus the session_id cookie. Internal
// error detail never reaches the client.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"gatekeep/auth"
	"gatekeep/utils"
)

// Home responds to GET / with the welcome message.
func Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bienvenue"})
}

// RegisterUser handles POST /users.
func RegisterUser(w http.ResponseWriter, r *http.Request, a *auth.Auth, logger *slog.Logger) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email and password required"})
		return
	}
	if err := utils.ValidateEmail(email); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid email address"})
		return
	}

	logger.Info(fmt.Sprintf("registration attempt email=%s;", email))

	user, err := a.RegisterUser(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email already registered"})
			return
		}
		logger.Error("registering user failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"email": user.Email, "message": "user created"})
}

// Sessions handles POST /sessions (login) and DELETE /sessions (logout).
func Sessions(w http.ResponseWriter, r *http.Request, a *auth.Auth, logger *slog.Logger) {
	switch r.Method {
	case http.MethodPost:
		login(w, r, a, logger)
	case http.MethodDelete:
		logout(w, r, a, logger)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func login(w http.ResponseWriter, r *http.Request, a *auth.Auth, logger *slog.Logger) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	logger.Info(fmt.Sprintf("login attempt email=%s;", email))

	if email == "" || password == "" || !a.ValidLogin(r.Context(), email, password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	sessionID, err := a.CreateSession(r.Context(), email)
	if err != nil {
		logger.Error("creating session failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}
	if sessionID == "" {
		// Login passed but the row vanished before the session write.
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	utils.SetSessionCookie(w, sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "message": "logged in"})
}

func logout(w http.ResponseWriter, r *http.Request, a *auth.Auth, logger *slog.Logger) {
	user, err := a.UserFromSessionID(r.Context(), utils.SessionCookie(r))
	if err != nil {
		logger.Error("resolving session failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden"})
		return
	}

	if err := a.DestroySession(r.Context(), user.ID); err != nil {
		logger.Error("destroying session failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	utils.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Profile handles GET /profile.
func Profile(w http.ResponseWriter, r *http.Request, a *auth.Auth, logger *slog.Logger) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, err := a.UserFromSessionID(r.Context(), utils.SessionCookie(r))
	if err != nil {
		logger.Error("resolving session failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"email": user.Email})
}

// ResetPassword handles POST /reset_password (request a token) and
// PUT /reset_password (consume it).
func ResetPassword(w http.ResponseWriter, r *http.Request, a *auth.Auth, logger *slog.Logger) {
	switch r.Method {
	case http.MethodPost:
		requestReset(w, r, a, logger)
	case http.MethodPut:
		completeReset(w, r, a, logger)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func requestReset(w http.ResponseWriter, r *http.Request, a *auth.Auth, logger *slog.Logger) {
	email := r.FormValue("email")

	logger.Info(fmt.Sprintf("password reset requested email=%s;", email))

	token, err := a.GetResetPasswordToken(r.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownEmail) {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden"})
			return
		}
		logger.Error("issuing reset token failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	// Token delivery by mail is best-effort; the response carries the token
	// either way.
	if os.Getenv("SENDGRID_API_KEY") != "" {
		if err := utils.SendResetToken(email, token); err != nil {
			logger.Error("sending reset email failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"email": email, "reset_token": token})
}

func completeReset(w http.ResponseWriter, r *http.Request, a *auth.Auth, logger *slog.Logger) {
	email := r.FormValue("email")
	token := r.FormValue("reset_token")
	newPassword := r.FormValue("new_password")

	if err := a.UpdatePassword(r.Context(), token, newPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidResetToken) {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden"})
			return
		}
		logger.Error("updating password failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"email": email, "message": "Password updated"})
}
