package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"waste-wizard-backend/internal/database"
	"waste-wizard-backend/internal/models"
	"waste-wizard-backend/internal/session"
	"waste-wizard-backend/pkg/utils"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool                `json:"success"`
	Role    string              `json:"role"`
	User    models.UserResponse `json:"user"`
}

// UserLookup finds operators by exact username
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

const invalidCredentials = "Invalid username or password"

// Login handles POST /api/login
func Login(users UserLookup, sessions *session.Manager, plaintextPasswords bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Username == "" || req.Password == "" {
			utils.Error(w, http.StatusBadRequest, "Username and password are required")
			return
		}

		log.Printf("🔐 Login attempt for: %s", req.Username)

		user, err := users.GetUserByUsername(r.Context(), req.Username)
		if errors.Is(err, database.ErrUserNotFound) {
			log.Printf("❌ User not found: %s", req.Username)
			utils.Error(w, http.StatusUnauthorized, invalidCredentials)
			return
		}
		if err != nil {
			log.Printf("❌ Failed to look up user %s: %v", req.Username, err)
			utils.ErrorWithDetails(w, http.StatusInternalServerError, "Login failed", err)
			return
		}

		if !session.CheckPassword(user.Password, req.Password, plaintextPasswords) {
			log.Printf("❌ Invalid password for: %s", req.Username)
			utils.Error(w, http.StatusUnauthorized, invalidCredentials)
			return
		}

		token, err := sessions.Mint(user)
		if err != nil {
			log.Printf("❌ Failed to create session: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to create session")
			return
		}
		sessions.SetCookie(w, token)

		log.Printf("✅ Login successful: %s (%s)", user.Username, user.Role)
		utils.JSON(w, http.StatusOK, LoginResponse{
			Success: true,
			Role:    user.Role,
			User:    user.ToUserResponse(),
		})
	}
}

// Logout handles POST /api/logout
func Logout(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.ClearCookie(w)
		utils.JSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// AuthStatus handles GET /api/auth/status
func AuthStatus(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := sessions.FromRequest(r)
		if err != nil {
			utils.JSON(w, http.StatusUnauthorized, map[string]interface{}{
				"authenticated": false,
			})
			return
		}

		utils.JSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": true,
			"user": models.UserResponse{
				ID:       claims.UserID,
				Username: claims.Username,
				Role:     claims.Role,
			},
		})
	}
}
