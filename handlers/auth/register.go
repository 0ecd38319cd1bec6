package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/noatrans/noatrans-api/model"
	authutil "github.com/noatrans/noatrans-api/utils/auth"
	"github.com/noatrans/noatrans-api/utils/middleware"
	"github.com/noatrans/noatrans-api/utils/response"
	"github.com/noatrans/noatrans-api/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
	UserName string `json:"user_name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role,omitempty"` // Optional, defaults to Learner
}

// TokenPairResponse carries a fresh token pair plus the user
type TokenPairResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		UserName:  user.UserName,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Register handles user registration. Role is fixed at registration:
// learners and facilitators self-register, admins come from seeding.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.BadRequest(c, "Full name, user name, email, and a password of at least 8 characters are required")
	}

	if req.Role == "" {
		req.Role = model.RoleLearner
	}
	if req.Role != model.RoleLearner && req.Role != model.RoleFacilitator {
		return response.BadRequest(c, "Role must be 'Learner' or 'Facilitator'")
	}

	// Check if user already exists
	var existingUser model.User
	if err := h.db.Where("email = ? OR user_name = ?", req.Email, req.UserName).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "A user with this email or user name already exists")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		FullName:     validation.SanitizeString(req.FullName),
		UserName:     validation.SanitizeString(req.UserName),
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         req.Role,
		IsActive:     true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	res, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Created(c, "Account created successfully", res)
}

// issueTokens generates a fresh access/refresh pair for the user
func (h *AuthHandler) issueTokens(user *model.User) (*TokenPairResponse, error) {
	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, err
	}

	return &TokenPairResponse{
		User:         toUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}
