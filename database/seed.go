package database

import (
	"fmt"
	"log"
	"os"

	"github.com/noatrans/noatrans-api/model"
	"github.com/noatrans/noatrans-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedFacilitators(); err != nil {
		return fmt.Errorf("failed to seed facilitators: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user from environment credentials
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := model.User{
		FullName:     "NoaTrans Admin",
		UserName:     "admin",
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}

	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Admin user created:", adminEmail)
	return nil
}

// SeedFacilitators creates a couple of demo facilitators for development
func (s *Seeder) SeedFacilitators() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleFacilitator).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Facilitators already exist, skipping...")
		return nil
	}

	passwordHash, err := auth.HashPassword("facilitator123")
	if err != nil {
		return err
	}

	facilitators := []model.User{
		{
			FullName:     "Kofi Manu",
			UserName:     "kofi.manu",
			Email:        "kofi.manu@noatrans.example",
			PasswordHash: passwordHash,
			Role:         model.RoleFacilitator,
			IsActive:     true,
		},
		{
			FullName:     "Ama Serwaa",
			UserName:     "ama.serwaa",
			Email:        "ama.serwaa@noatrans.example",
			PasswordHash: passwordHash,
			Role:         model.RoleFacilitator,
			IsActive:     true,
		},
	}

	for _, f := range facilitators {
		if err := s.db.Create(&f).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d facilitators", len(facilitators))
	return nil
}

// SeedCourses creates a starter catalog owned by the seeded facilitators
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Courses already exist, skipping...")
		return nil
	}

	var facilitator model.User
	err := s.db.Where("role = ?", model.RoleFacilitator).First(&facilitator).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Println("No facilitator to own seeded courses, skipping...")
			return nil
		}
		return err
	}

	courses := []model.Course{
		{
			Title:           "Twi Basics",
			Description:     "Learn Twi from scratch: greetings, numbers, and everyday phrases.",
			Language:        "Twi",
			Level:           model.LevelBeginner,
			DurationMinutes: 480,
			FacilitatorID:   facilitator.ID,
		},
		{
			Title:           "Ewe Basic Phrases",
			Description:     "Master common Ewe greetings and expressions.",
			Language:        "Ewe",
			Level:           model.LevelBeginner,
			DurationMinutes: 120,
			FacilitatorID:   facilitator.ID,
		},
		{
			Title:           "Intermediate Twi Conversation",
			Description:     "Build fluency with guided dialogues and listening drills.",
			Language:        "Twi",
			Level:           model.LevelIntermediate,
			DurationMinutes: 600,
			FacilitatorID:   facilitator.ID,
		},
	}

	for _, c := range courses {
		if err := s.db.Create(&c).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d courses", len(courses))
	return nil
}
