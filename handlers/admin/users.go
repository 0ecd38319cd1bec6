package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/noatrans/noatrans-api/model"
	"github.com/noatrans/noatrans-api/utils/response"
	"github.com/noatrans/noatrans-api/utils/validation"
	"gorm.io/gorm"
)

// AdminHandler handles user moderation and reporting for admins
type AdminHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	role := c.Query("role", "")
	search := c.Query("search", "")

	query := h.db.Model(&model.User{})

	if role != "" {
		query = query.Where("role = ?", role)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("full_name LIKE ? OR user_name LIKE ? OR email LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	pagination := response.CalculatePagination(page, limit, total)

	var users []model.User
	err := query.Order("created_at DESC").
		Limit(pagination.PerPage).
		Offset((pagination.CurrentPage - 1) * pagination.PerPage).
		Find(&users).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return response.Paginated(c, users, pagination)
}

// GetUser handles GET /api/v1/admin/users/:id
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")

	var user model.User
	if err := h.db.Preload("Enrollments").First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	return response.Success(c, user)
}

// UpdateUserRequest carries the admin-mutable user fields. Role is
// deliberately absent: it is immutable after registration.
type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	IsActive *bool   `json:"is_active"`
}

// UpdateUser handles PATCH /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.BadRequest(c, "Invalid user fields")
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	if req.FullName != nil {
		user.FullName = validation.SanitizeString(*req.FullName)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.db.Save(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}

	return response.SuccessWithMessage(c, "User updated successfully", user)
}

// DeleteUser handles DELETE /api/v1/admin/users/:id (soft delete)
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	if user.Role == model.RoleAdmin {
		return response.BadRequest(c, "Admin accounts cannot be deleted")
	}

	if err := h.db.Delete(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}
