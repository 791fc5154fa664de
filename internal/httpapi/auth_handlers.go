package httpapi

import (
	"errors"
	"net/http"
	"time"

	"taskhive.org/internal/audit"
	"taskhive.org/internal/auth"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, outcome, err := a.opts.Identity.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, r, http.StatusConflict, "email is already registered")
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			writeError(w, r, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	if a.opts.Audit != nil {
		details := "Registered, default role " + string(outcome.Status)
		if outcome.Reason != "" {
			details += ": " + outcome.Reason
		}
		_, _ = a.opts.Audit.Record(r.Context(), audit.Entry{
			Action:     "CREATE",
			Resource:   "user",
			ResourceID: user.ID,
			UserID:     user.ID,
			UserEmail:  user.Email,
			Details:    details,
		})
	}

	token, expiresAt, err := a.opts.Tokens.Generate(user.ID, user.Email)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": userResponse{
			ID:        user.ID,
			Email:     user.Email,
			IsActive:  user.IsActive,
			CreatedAt: user.CreatedAt,
		},
		"default_role": outcome,
		"token": tokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   expiresAt,
		},
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.opts.Identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, r, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, auth.ErrAccountDisabled):
			writeError(w, r, http.StatusForbidden, "account is disabled")
		default:
			writeError(w, r, http.StatusInternalServerError, "login failed")
		}
		return
	}

	token, expiresAt, err := a.opts.Tokens.Generate(user.ID, user.Email)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": userResponse{
			ID:        user.ID,
			Email:     user.Email,
			IsActive:  user.IsActive,
			CreatedAt: user.CreatedAt,
		},
		"token": tokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   expiresAt,
		},
	})
}
