package course

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/noatrans/noatrans-api/handlers"
	"github.com/noatrans/noatrans-api/utils/middleware"
	"github.com/noatrans/noatrans-api/utils/pdfvalidation"
	"github.com/noatrans/noatrans-api/utils/response"
	"github.com/noatrans/noatrans-api/utils/validation"
)

// UploadMaterial handles POST /api/v1/courses/:id/materials. The upload
// is a multipart form with a "file" PDF and an optional "title" field.
func (h *CourseHandler) UploadMaterial(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A PDF file is required")
	}

	result, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.MaterialLimits)
	if err != nil {
		return response.InternalServerError(c, "Failed to process uploaded file")
	}
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	title := validation.SanitizeString(c.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(file.Filename, ".pdf")
	}

	material, err := h.svc.AttachMaterial(c.Context(), principal, id, title, result.Content, result.PageCount)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	return response.Created(c, "Material uploaded successfully", material)
}

// ListMaterials handles GET /api/v1/courses/:id/materials
func (h *CourseHandler) ListMaterials(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	materials, err := h.svc.ListMaterials(c.Context(), id)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	return response.Success(c, materials)
}
