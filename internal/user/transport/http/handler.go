package http

import (
	"encoding/json"
	"net/http"
	"time"

	"expensio/internal/api"
	"expensio/internal/api/dto"
	"expensio/internal/apperr"
	"expensio/internal/user/service"
	"expensio/pkg/middleware"
)

const refreshCookieName = "refreshToken"

type Handler struct {
	auth       *service.AuthService
	refreshTTL time.Duration
	secure     bool // Secure cookie flag, on in production
}

func NewHandler(auth *service.AuthService, refreshTTL time.Duration, secure bool) *Handler {
	return &Handler{auth: auth, refreshTTL: refreshTTL, secure: secure}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, r, apperr.BadRequest("Please provide email and password"))
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		api.WriteError(w, r, apperr.BadRequest("Please provide email and password"))
		return
	}

	_, pair, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.Refresh)
	api.WriteSuccess(w, http.StatusCreated, dto.TokenPairResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	}, "User registered successfully")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, r, apperr.BadRequest("Please provide email and password"))
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		api.WriteError(w, r, apperr.BadRequest("Please provide email and password"))
		return
	}

	_, pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.Refresh)
	api.WriteSuccess(w, http.StatusOK, dto.TokenPairResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	}, "User logged in successfully")
}

// Logout is idempotent: a missing or unknown cookie still succeeds, and the
// cookie is always cleared.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		h.clearRefreshCookie(w)
		api.WriteSuccess(w, http.StatusOK, nil, "Logged out (no token found)")
		return
	}

	if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
		api.WriteError(w, r, err)
		return
	}

	h.clearRefreshCookie(w)
	api.WriteSuccess(w, http.StatusOK, nil, "Logged out successfully")
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		refreshToken = cookie.Value
	}

	access, err := h.auth.Refresh(r.Context(), refreshToken)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, dto.AccessTokenResponse{AccessToken: access},
		"Access token refreshed successfully")
}

func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}

	if err := h.auth.DeleteProfile(r.Context(), userID); err != nil {
		api.WriteError(w, r, err)
		return
	}

	h.clearRefreshCookie(w)
	api.WriteSuccess(w, http.StatusOK, nil, "Profile deleted successfully")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}

	profile, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, profile, "User found successfully")
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearRefreshCookie uses the same flags as setRefreshCookie so browsers
// actually drop the cookie.
func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
