package handlers

import (
	"errors"
	"net/http"

	"garage_backend/internal/models"
	"garage_backend/internal/services"
	"garage_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// LoginUser handles user login.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req, "LoginUser") {
		return
	}
	authResp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to login.")
		return
	}
	c.JSON(http.StatusOK, authResp)
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req services.RefreshTokenRequest
	if !bindJSON(c, &req, "RefreshToken") {
		return
	}
	authResp, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err, "Failed to refresh token.")
		return
	}
	c.JSON(http.StatusOK, authResp)
}

// GetCurrentUser retrieves the profile of the currently authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID := currentUserID(c)
	if userID == nil {
		utils.LogError(errors.New("userID not found in context"), "GetCurrentUser: userID not in context")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user ID in context"))
		return
	}
	user, err := h.authService.GetUserProfile(c.Request.Context(), *userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve user profile.")
		return
	}
	c.JSON(http.StatusOK, user)
}

// LogoutUser acknowledges a logout. Tokens are stateless, so the client discards them.
func (h *AuthHandler) LogoutUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully. Please discard your token."})
}

// User management, Admin only.

func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req, "CreateUser") {
		return
	}
	user, err := h.authService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create user.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUsers lists users, optionally filtered by role (e.g. ?role=Technician).
func (h *AuthHandler) GetUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context(), queryString(c, "role"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch users.")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

func (h *AuthHandler) GetUserByID(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.authService.GetUserProfile(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch user.")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	var req services.UpdateUserRequest
	if !bindJSON(c, &req, "UpdateUser") {
		return
	}
	user, err := h.authService.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update user.")
		return
	}
	c.JSON(http.StatusOK, user)
}
