package auth

import (
	"github.com/gofiber/fiber/v2"
	authutil "github.com/noatrans/noatrans-api/utils/auth"
	"github.com/noatrans/noatrans-api/utils/middleware"
	"github.com/noatrans/noatrans-api/utils/response"
	"github.com/noatrans/noatrans-api/utils/validation"
)

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	return response.Success(c, toUserResponse(user))
}

// UpdateProfileRequest carries the mutable profile fields. Role is not
// among them: it is immutable after registration.
type UpdateProfileRequest struct {
	FullName  string `json:"full_name" validate:"omitempty,min=2,max=255"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// UpdateProfile updates the authenticated user's profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.BadRequest(c, "Invalid profile fields")
	}

	if req.FullName != "" {
		user.FullName = validation.SanitizeString(req.FullName)
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.db.Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.SuccessWithMessage(c, "Profile updated successfully", toUserResponse(user))
}

// ChangePasswordRequest carries the old and new passwords
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword verifies the current password, stores the new hash, and
// invalidates every outstanding token for the user.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "New password must be at least 8 characters long")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	newHash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user.PasswordHash = newHash
	if err := h.db.Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to change password")
	}

	if err := h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID); err != nil {
		return response.InternalServerError(c, "Failed to invalidate sessions")
	}

	return response.SuccessWithMessage(c, "Password changed successfully. Please log in again.", nil)
}
