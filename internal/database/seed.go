package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// SeedDemoData inserts a demo institution and one login per built-in role so a
// fresh development database is immediately usable. It is idempotent: when any
// profile already exists the seed is skipped entirely.
func SeedDemoData(db *gorm.DB, bcryptCost int, logger zerolog.Logger) error {
	var count int64
	if err := db.Model(&models.Profile{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check existing profiles: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		institution := models.Institution{
			Name:   "Riverside High School",
			Status: models.InstitutionActive,
		}
		if err := tx.Create(&institution).Error; err != nil {
			return fmt.Errorf("failed to seed institution: %w", err)
		}

		profiles := []models.Profile{
			{
				Name:         "Sarah Wilson",
				Email:        "super@admin.com",
				PasswordHash: string(hash),
				Role:         models.RoleSuperAdmin,
			},
			{
				Name:          "David Chen",
				Email:         "management@school.com",
				PasswordHash:  string(hash),
				Role:          models.RoleManagement,
				InstitutionID: &institution.ID,
			},
			{
				Name:          "Maria Rodriguez",
				Email:         "admin@school.com",
				PasswordHash:  string(hash),
				Role:          models.RoleInstitutionAdmin,
				InstitutionID: &institution.ID,
			},
			{
				Name:          "James Thompson",
				Email:         "teacher@school.com",
				PasswordHash:  string(hash),
				Role:          models.RoleTeacher,
				InstitutionID: &institution.ID,
			},
		}
		for i := range profiles {
			if err := tx.Create(&profiles[i]).Error; err != nil {
				return fmt.Errorf("failed to seed profile %s: %w", profiles[i].Email, err)
			}
		}

		// The teacher login needs a staff record so class ownership checks
		// resolve.
		teacher := models.Teacher{
			Name:          "James Thompson",
			Email:         "teacher@school.com",
			InstitutionID: institution.ID,
			ProfileID:     &profiles[3].ID,
			Status:        models.TeacherActive,
		}
		if err := tx.Create(&teacher).Error; err != nil {
			return fmt.Errorf("failed to seed teacher record: %w", err)
		}

		logger.Info().Str("institution", institution.Name).Msg("seeded demo data")
		return nil
	})
}
