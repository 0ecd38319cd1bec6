package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/noatrans/noatrans-api/database"
	"github.com/noatrans/noatrans-api/handlers"
	admin_handlers "github.com/noatrans/noatrans-api/handlers/admin"
	auth_handlers "github.com/noatrans/noatrans-api/handlers/auth"
	course_handlers "github.com/noatrans/noatrans-api/handlers/course"
	enrollment_handlers "github.com/noatrans/noatrans-api/handlers/enrollment"
	"github.com/noatrans/noatrans-api/model"
	"github.com/noatrans/noatrans-api/services"
	"github.com/noatrans/noatrans-api/services/storage"
	"github.com/noatrans/noatrans-api/utils"
	"github.com/noatrans/noatrans-api/utils/auth"
	"github.com/noatrans/noatrans-api/utils/cache"
	"github.com/noatrans/noatrans-api/utils/middleware"
	"gorm.io/gorm"
)

// Deps carries the optional shared resources route setup wires in
type Deps struct {
	RedisCache     *cache.RedisCache
	ReportingStore *database.ReportingStore
	Spaces         *storage.SpacesClient
}

// SetupRoutes assembles middleware, services, and handlers onto the app
func SetupRoutes(app *fiber.App, store database.Storage, deps Deps) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "noatrans-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if deps.RedisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(deps.RedisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Services
	var uploader services.MaterialUploader
	if deps.Spaces != nil {
		uploader = deps.Spaces
	}
	courseService := services.NewCourseService(db, uploader)
	enrollmentService := services.NewEnrollmentService(db)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(courseService, deps.RedisCache)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(enrollmentService)
	adminHandler := admin_handlers.NewAdminHandler(db)
	reportHandler := admin_handlers.NewReportHandler(deps.ReportingStore)

	// Security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Course routes. All of them require authentication; creation and
	// mutation are further limited by role, and ownership is enforced in
	// the course service.
	courses := api.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Post("/", authMiddleware.RequireRole(model.RoleFacilitator, model.RoleAdmin), courseHandler.CreateCourse)
	courses.Patch("/:id", authMiddleware.RequireRole(model.RoleFacilitator, model.RoleAdmin), courseHandler.UpdateCourse)
	courses.Delete("/:id", authMiddleware.RequireRole(model.RoleFacilitator, model.RoleAdmin), courseHandler.DeleteCourse)
	courses.Patch("/:id/restore", authMiddleware.RequireRole(model.RoleFacilitator, model.RoleAdmin), courseHandler.RestoreCourse)

	// Course materials
	courses.Get("/:id/materials", courseHandler.ListMaterials)
	courses.Post("/:id/materials", authMiddleware.RequireRole(model.RoleFacilitator, model.RoleAdmin), courseHandler.UploadMaterial)

	// Enrollment routes
	courses.Post("/:id/enroll", authMiddleware.RequireRole(model.RoleLearner), enrollmentHandler.Enroll)

	enrollments := api.Group("/enrollments", authMiddleware.Required())
	enrollments.Get("/mine", authMiddleware.RequireRole(model.RoleLearner), enrollmentHandler.ListMine)
	enrollments.Patch("/:id/progress", authMiddleware.RequireRole(model.RoleLearner), enrollmentHandler.UpdateProgress)
	enrollments.Patch("/:id/status", authMiddleware.RequireRole(model.RoleFacilitator, model.RoleAdmin), enrollmentHandler.UpdateStatus)
	enrollments.Get("/", authMiddleware.RequireAdmin(), enrollmentHandler.ListAll)

	// Admin moderation routes
	admin := api.Group("/admin", authMiddleware.Required(), authMiddleware.RequireAdmin())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Patch("/users/:id", middleware.AdminAuditLog(db, "user_update", "users"), adminHandler.UpdateUser)
	admin.Delete("/users/:id", middleware.AdminAuditLog(db, "user_delete", "users"), adminHandler.DeleteUser)
	admin.Get("/reports/enrollments", reportHandler.EnrollmentReport)
}
