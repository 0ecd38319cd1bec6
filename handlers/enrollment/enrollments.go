package enrollment

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/noatrans/noatrans-api/handlers"
	"github.com/noatrans/noatrans-api/model"
	"github.com/noatrans/noatrans-api/services"
	"github.com/noatrans/noatrans-api/utils/middleware"
	"github.com/noatrans/noatrans-api/utils/response"
)

// EnrollmentHandler handles enrollment-related requests
type EnrollmentHandler struct {
	svc *services.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(svc *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{svc: svc}
}

// Enroll handles POST /api/v1/courses/:id/enroll
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	enrollment, err := h.svc.Enroll(c.Context(), principal, uint(courseID))
	if err != nil {
		return handlers.DomainError(c, err)
	}

	return response.Created(c, "Enrollment successful", enrollment)
}

// ListMine handles GET /api/v1/enrollments/mine
func (h *EnrollmentHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	enrollments, err := h.svc.ListMine(c.Context(), principal)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	return response.Success(c, enrollments)
}

// UpdateProgressRequest is the body of the progress update call
type UpdateProgressRequest struct {
	ProgressPercent int `json:"progress_percent"`
}

// UpdateProgress handles PATCH /api/v1/enrollments/:id/progress
func (h *EnrollmentHandler) UpdateProgress(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment id")
	}

	var req UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	enrollment, err := h.svc.UpdateProgress(c.Context(), principal, uint(id), req.ProgressPercent)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	return response.SuccessWithMessage(c, "Progress updated", enrollment)
}

// UpdateStatusRequest is the body of the moderation status override
type UpdateStatusRequest struct {
	Status model.EnrollmentStatus `json:"status"`
}

// UpdateStatus handles PATCH /api/v1/enrollments/:id/status
func (h *EnrollmentHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment id")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	enrollment, err := h.svc.UpdateStatus(c.Context(), principal, uint(id), req.Status)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	return response.SuccessWithMessage(c, "Enrollment status updated", enrollment)
}

// ListAll handles GET /api/v1/enrollments (admin only)
func (h *EnrollmentHandler) ListAll(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	enrollments, err := h.svc.ListAllEnrolled(c.Context(), principal)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	return response.Success(c, enrollments)
}
