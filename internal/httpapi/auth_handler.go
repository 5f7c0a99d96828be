package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_storefront/internal/identity"
	"github.com/fjod/go_storefront/internal/session"
)

type AuthHandler struct {
	provider identity.Provider
	gate     *session.Gate
}

func NewAuthHandler(provider identity.Provider, gate *session.Gate) *AuthHandler {
	return &AuthHandler{provider: provider, gate: gate}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequestDTO struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess, err := h.provider.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.provider.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		handleAuthError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.provider.SignOut(r.Context()); err != nil {
		handleAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the gate's view, not the provider's: the gate is the sole
// local authority on session state.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": h.gate.Authenticated(),
		"user":          h.gate.User(),
	})
}

func handleAuthError(w http.ResponseWriter, err error) {
	var authErr *identity.AuthError
	switch {
	case errors.As(err, &authErr):
		respondError(w, http.StatusUnauthorized, "auth_failed", authErr.Message)
	case errors.Is(err, identity.ErrMissingCredentials),
		errors.Is(err, identity.ErrPasswordTooShort):
		respondError(w, http.StatusBadRequest, "invalid_credentials", err.Error())
	default:
		respondError(w, http.StatusBadGateway, "identity_unavailable", "identity provider unavailable")
	}
}
