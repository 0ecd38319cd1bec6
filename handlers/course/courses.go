package course

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/noatrans/noatrans-api/handlers"
	"github.com/noatrans/noatrans-api/model"
	"github.com/noatrans/noatrans-api/services"
	"github.com/noatrans/noatrans-api/utils/cache"
	"github.com/noatrans/noatrans-api/utils/middleware"
	"github.com/noatrans/noatrans-api/utils/response"
	"github.com/noatrans/noatrans-api/utils/validation"
)

const listCacheTTL = 5 * time.Minute

// CourseHandler handles course-related requests
type CourseHandler struct {
	svc       *services.CourseService
	cache     *cache.RedisCache
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler. The cache may be nil;
// listings then always hit the database.
func NewCourseHandler(svc *services.CourseService, redisCache *cache.RedisCache) *CourseHandler {
	return &CourseHandler{
		svc:       svc,
		cache:     redisCache,
		validator: validation.NewValidator(),
	}
}

// cachedList is what the listing cache stores per query
type cachedList struct {
	Courses    []model.Course          `json:"courses"`
	Pagination response.PaginationMeta `json:"pagination"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	filter := services.CourseFilter{
		Search:   c.Query("search", ""),
		Language: c.Query("language", ""),
		Level:    c.Query("level", ""),
		Page:     page,
		Limit:    limit,
	}

	// Deleted courses are only visible to admins who ask for them
	if c.Query("include_deleted") == "true" {
		if principal, ok := middleware.GetPrincipal(c); ok && principal.IsAdmin() {
			filter.IncludeDeleted = true
		}
	}

	cacheKey := h.listCacheKey(c, filter)
	if cacheKey != "" {
		var cached cachedList
		if err := h.cache.GetJSON(c.Context(), cacheKey, &cached); err == nil {
			return response.Paginated(c, cached.Courses, cached.Pagination)
		}
	}

	courses, total, err := h.svc.List(c.Context(), filter)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	pagination := response.CalculatePagination(page, limit, total)

	if cacheKey != "" {
		h.cache.SetJSON(c.Context(), cacheKey, cachedList{Courses: courses, Pagination: pagination}, listCacheTTL)
	}

	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	course, err := h.svc.GetByID(c.Context(), id)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req services.CreateCourseInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.BadRequest(c, validationMessage(err))
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)
	req.Language = validation.SanitizeString(req.Language)

	course, err := h.svc.Create(c.Context(), principal, req)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	h.invalidateListCache(c)

	return response.Created(c, "Course created successfully", course)
}

// UpdateCourse handles PATCH /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	var req services.UpdateCourseInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.BadRequest(c, validationMessage(err))
	}

	course, err := h.svc.Update(c.Context(), principal, id, req)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	h.invalidateListCache(c)

	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id (soft delete)
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	course, err := h.svc.SoftDelete(c.Context(), principal, id)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	h.invalidateListCache(c)

	return response.SuccessWithMessage(c, "Course deleted successfully", course)
}

// RestoreCourse handles PATCH /api/v1/courses/:id/restore
func (h *CourseHandler) RestoreCourse(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	course, err := h.svc.Restore(c.Context(), principal, id)
	if err != nil {
		return handlers.DomainError(c, err)
	}

	h.invalidateListCache(c)

	return response.SuccessWithMessage(c, "Course restored successfully", course)
}

// listCacheKey builds a versioned cache key for the current listing query.
// Mutations bump the version instead of enumerating stale keys.
func (h *CourseHandler) listCacheKey(c *fiber.Ctx, filter services.CourseFilter) string {
	if h.cache == nil || filter.IncludeDeleted {
		return ""
	}
	ver, err := h.cache.Get(c.Context(), "courses:list:ver")
	if err != nil {
		ver = "0"
	}
	return fmt.Sprintf("courses:list:v%s:%s", ver, string(c.Request().URI().QueryString()))
}

func (h *CourseHandler) invalidateListCache(c *fiber.Ctx) {
	if h.cache == nil {
		return
	}
	h.cache.Increment(c.Context(), "courses:list:ver")
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func validationMessage(err error) string {
	for _, msg := range validation.FormatValidationErrors(err) {
		return msg
	}
	return "Validation failed"
}
