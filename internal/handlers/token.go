package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/solace-app/solace/backend/internal/auth"
	"github.com/solace-app/solace/backend/internal/models"
	"github.com/solace-app/solace/backend/internal/store"
)

// TokenHandler mints session tokens for local development, standing in for
// the real auth store. It is only mounted when DEV_TOKEN_ENDPOINT is set.
type TokenHandler struct {
	tokens *auth.TokenManager
	store  *store.Store
}

// NewTokenHandler creates a new TokenHandler instance.
func NewTokenHandler(tokens *auth.TokenManager, s *store.Store) *TokenHandler {
	return &TokenHandler{tokens: tokens, store: s}
}

// tokenRequest is the request body for minting a dev token.
type tokenRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// tokenResponse is the response after minting a dev token.
type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// MintToken handles POST /api/auth/token
// Creates a user row and returns a signed token for it.
func (h *TokenHandler) MintToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Avatar:    req.Avatar,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		log.Printf("[Auth] Failed to create dev user: %v", err)
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Username)
	if err != nil {
		log.Printf("[Auth] Failed to sign dev token: %v", err)
		http.Error(w, "failed to sign token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, User: *user})
}
