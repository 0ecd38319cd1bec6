package middleware

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/noatrans/noatrans-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAuditLog records an audit entry for every admin moderation action.
// It must be chained after the auth middleware so the principal is set.
func AdminAuditLog(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetPrincipal(c)
		if !ok || !principal.IsAdmin() {
			return c.Next()
		}

		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsed, err := strconv.ParseUint(id, 10, 32); err == nil {
				resourceID = uint(parsed)
			}
		}

		// Capture the old state for destructive actions
		var oldValue interface{}
		if resourceID > 0 && (c.Method() == "DELETE" || c.Method() == "PATCH" || c.Method() == "PUT") {
			switch resource {
			case "users":
				var user model.User
				if err := db.First(&user, resourceID).Error; err == nil {
					oldValue = user
				}
			case "courses":
				var course model.Course
				if err := db.Unscoped().First(&course, resourceID).Error; err == nil {
					oldValue = course
				}
			}
		}

		var newValue interface{}
		if c.Method() == "POST" || c.Method() == "PATCH" || c.Method() == "PUT" {
			if body := c.Body(); len(body) > 0 {
				json.Unmarshal(body, &newValue)
			}
		}

		err := c.Next()

		oldJSON, _ := json.Marshal(oldValue)
		newJSON, _ := json.Marshal(newValue)

		entry := model.AdminAuditLog{
			AdminID:     principal.UserID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			OldValue:    datatypes.JSON(oldJSON),
			NewValue:    datatypes.JSON(newJSON),
			IPAddress:   c.IP(),
			UserAgent:   c.Get("User-Agent"),
			Description: c.Method() + " " + c.Path(),
		}
		db.Create(&entry)

		return err
	}
}
