package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noatrans/noatrans-api/database"
	"github.com/noatrans/noatrans-api/utils/response"
)

// ReportHandler serves the admin enrollment reports off the raw SQL
// reporting store
type ReportHandler struct {
	store *database.ReportingStore
}

// NewReportHandler creates a new report handler. The store may be nil
// when the reporting connection is not configured.
func NewReportHandler(store *database.ReportingStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// EnrollmentReport handles GET /api/v1/admin/reports/enrollments
func (h *ReportHandler) EnrollmentReport(c *fiber.Ctx) error {
	if h.store == nil {
		return response.InternalServerError(c, "Reporting store is not available")
	}

	byCourse, err := h.store.EnrollmentsByCourse()
	if err != nil {
		return response.InternalServerError(c, "Failed to build course report")
	}

	byLanguage, err := h.store.EnrollmentsByLanguage()
	if err != nil {
		return response.InternalServerError(c, "Failed to build language report")
	}

	return response.Success(c, fiber.Map{
		"by_course":   byCourse,
		"by_language": byLanguage,
	})
}
