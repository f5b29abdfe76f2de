package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"garage_backend/internal/models"
	"garage_backend/internal/repositories"
	"garage_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest DTO
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateUserRequest DTO. Role defaults to Staff.
type CreateUserRequest struct {
	Username string  `json:"username" binding:"required,max=150"`
	Password string  `json:"password" binding:"required,min=8"`
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role" binding:"omitempty,oneof=Admin Technician Staff"`
}

// UpdateUserRequest DTO. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role" binding:"omitempty,oneof=Admin Technician Staff"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// AuthResponse DTO
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

// --- AuthService Interface ---

// AuthService covers login, token refresh and user management.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	GetUserProfile(ctx context.Context, userID int64) (*models.User, error)

	CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error)
	ListUsers(ctx context.Context, role *string) ([]models.User, error)
	UpdateUser(ctx context.Context, userID int64, req UpdateUserRequest) (*models.User, error)
}

// --- authService Implementation ---
type authService struct {
	authRepo repositories.AuthRepository
	db       *sql.DB
}

// NewAuthService creates a new instance of AuthService. Tokens are signed
// with the key configured through utils.ConfigureJWT.
func NewAuthService(authRepo repositories.AuthRepository, db *sql.DB) AuthService {
	return &authService{authRepo: authRepo, db: db}
}

func (s *authService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return &AuthResponse{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login verifies the password and issues an access/refresh token pair.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authRepo.FindUserByUsername(ctx, s.db, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	// err is bcrypt.ErrMismatchedHashAndPassword for wrong password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return s.issueTokens(user)
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.authRepo.FindUserByID(ctx, s.db, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return s.issueTokens(user)
}

func (s *authService) GetUserProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(ctx, s.db, userID)
	if err != nil {
		return nil, mapNotFound(err, "user", userID, "failed to get user")
	}
	return user, nil
}

// CreateUser hashes the password with bcrypt and stores a new active user.
func (s *authService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, invalid("username", "is required")
	}
	if !utils.IsValidPasswordLength(req.Password, minPasswordLength) {
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}
	if !models.IsValidRole(role) {
		return nil, invalid("role", "must be one of Admin, Technician, Staff")
	}
	email := utils.TrimStringPtr(req.Email)
	if email != nil && !utils.IsValidEmail(*email) {
		return nil, invalid("email", "email format is invalid")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		FullName:     utils.TrimStringPtr(req.FullName),
		Role:         role,
		IsActive:     true,
	}
	if _, err := s.authRepo.CreateUser(ctx, s.db, user); err != nil {
		if repositories.IsDuplicateOn(err, "username") {
			return nil, conflict("username", "username already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	utils.LogInfo("User created", map[string]interface{}{"user_id": user.ID, "username": user.Username, "role": user.Role})
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context, role *string) ([]models.User, error) {
	if role != nil && *role != "" && !models.IsValidRole(*role) {
		return nil, invalid("role", "must be one of Admin, Technician, Staff")
	}
	users, err := s.authRepo.ListUsers(ctx, s.db, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *authService) UpdateUser(ctx context.Context, userID int64, req UpdateUserRequest) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(ctx, s.db, userID)
	if err != nil {
		return nil, mapNotFound(err, "user", userID, "failed to find user for update")
	}

	if req.Email != nil {
		user.Email = utils.TrimStringPtr(req.Email)
		if user.Email != nil && !utils.IsValidEmail(*user.Email) {
			return nil, invalid("email", "email format is invalid")
		}
	}
	if req.FullName != nil {
		user.FullName = utils.TrimStringPtr(req.FullName)
	}
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			return nil, invalid("role", "must be one of Admin, Technician, Staff")
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && !utils.IsValidPasswordLength(*req.Password, minPasswordLength) {
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	if err := s.authRepo.UpdateUser(ctx, s.db, user); err != nil {
		return nil, mapNotFound(err, "user", userID, "failed to update user")
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.authRepo.UpdatePassword(ctx, s.db, userID, string(hash)); err != nil {
			return nil, fmt.Errorf("failed to update password: %w", err)
		}
	}
	return s.GetUserProfile(ctx, userID)
}
