package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"community-backend/internal/auth"
	"community-backend/internal/middleware"
	"community-backend/internal/models"
	"community-backend/internal/repositories"
)

type AuthHandler struct {
	Accounts *repositories.AccountRepository
	JWT      *auth.JWTManager
}

func NewAuthHandler(accounts *repositories.AccountRepository, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{Accounts: accounts, JWT: jwtManager}
}

// Register creates a member account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FirstName == "" || req.Email == "" {
		http.Error(w, "First name and email are required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}
	if req.Gender != "" && !models.ValidGender(req.Gender) {
		http.Error(w, "Invalid gender", http.StatusBadRequest)
		return
	}

	if existing, err := h.Accounts.GetByEmail(r.Context(), req.Email); err == nil && existing != nil {
		http.Error(w, "An account with this email already exists", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	account := &models.Account{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MembershipNo: req.MembershipNo,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         "member",
		Gender:       req.Gender,
		Education:    req.Education,
		Occupation:   req.Occupation,
	}
	if err := h.Accounts.Create(r.Context(), account); err != nil {
		http.Error(w, "Failed to create account: "+err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := h.JWT.Generate(account.ID, account.Role)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":   token,
		"account": account,
	})
}

// Login exchanges credentials for an access token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.Accounts.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Failed to fetch account", http.StatusInternalServerError)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := h.JWT.Generate(account.ID, account.Role)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":   token,
		"account": account,
	})
}

// Me returns the authenticated account
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}
