package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles within NoaTrans. Role is assigned at registration and never
// changes afterwards.
const (
	RoleLearner     = "Learner"
	RoleFacilitator = "Facilitator"
	RoleAdmin       = "Admin"
)

// ValidRole reports whether role is one of the known NoaTrans roles.
func ValidRole(role string) bool {
	return role == RoleLearner || role == RoleFacilitator || role == RoleAdmin
}

// Principal is the authenticated identity injected into every handler and
// service call. It is resolved once by the auth middleware; services never
// read identity from ambient state.
type Principal struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the principal carries the Admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// User represents a registered NoaTrans user
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	FullName     string         `gorm:"not null" json:"full_name"`
	UserName     string         `gorm:"uniqueIndex;not null" json:"user_name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Role         string         `gorm:"type:varchar(20);default:'Learner'" json:"role"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	AvatarURL    string         `json:"avatar_url,omitempty"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	Courses        []Course            `gorm:"foreignKey:FacilitatorID" json:"-"`
	Enrollments    []Enrollment        `gorm:"foreignKey:LearnerID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AuditLog       []AdminAuditLog     `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"-"`
}
