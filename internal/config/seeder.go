package config

import (
	"log"

	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/core/domain"
	"padyai-portal/internal/pkg/password"
)

// SeedMasterData seeds courses, schemes and the default admin account.
// Idempotent: existing rows are left alone.
func SeedMasterData(db *gorm.DB) error {
	if err := seedSchemes(db); err != nil {
		return err
	}
	if err := seedCourses(db); err != nil {
		return err
	}
	if err := seedAdmin(db); err != nil {
		return err
	}

	log.Println("Master data seeded")
	return nil
}

func seedSchemes(db *gorm.DB) error {
	schemes := []models.Scheme{
		{
			Kind:          models.ApplicationLoan,
			Code:          "PERSONAL",
			Name:          "Personal Loan",
			Description:   "General-purpose member loan",
			AnnualRate:    12.0,
			MinAmount:     10000,
			MaxAmount:     500000,
			MinTermMonths: 6,
			MaxTermMonths: 60,
			IsActive:      true,
		},
		{
			Kind:          models.ApplicationLoan,
			Code:          "EDUCATION",
			Name:          "Education Loan",
			Description:   "Course-fee and study loan at a concession rate",
			AnnualRate:    8.5,
			MinAmount:     5000,
			MaxAmount:     300000,
			MinTermMonths: 6,
			MaxTermMonths: 84,
			IsActive:      true,
		},
		{
			Kind:          models.ApplicationInvestment,
			Code:          "RD",
			Name:          "Recurring Deposit",
			Description:   "Monthly contribution plan",
			AnnualRate:    7.25,
			MinAmount:     500,
			MaxAmount:     50000,
			MinTermMonths: 12,
			MaxTermMonths: 120,
			IsActive:      true,
		},
		{
			Kind:          models.ApplicationInvestment,
			Code:          "FD",
			Name:          "Fixed Deposit",
			Description:   "Lump-sum deposit with monthly payout tracking",
			AnnualRate:    7.75,
			MinAmount:     10000,
			MaxAmount:     1000000,
			MinTermMonths: 6,
			MaxTermMonths: 120,
			IsActive:      true,
		},
	}

	for _, scheme := range schemes {
		var count int64
		db.Model(&models.Scheme{}).
			Where("kind = ? AND code = ?", scheme.Kind, scheme.Code).Count(&count)
		if count == 0 {
			if err := db.Create(&scheme).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedCourses(db *gorm.DB) error {
	courses := []models.Course{
		{
			Code:          "CS101",
			Title:         "Introduction to Computer Science",
			Description:   "Foundations of programming and problem solving",
			Department:    "CS",
			DurationWeeks: 16,
			FeeAmount:     15000,
			Seats:         60,
			IsActive:      true,
		},
		{
			Code:          "COM201",
			Title:         "Business Communication",
			Description:   "Written and spoken communication for commerce students",
			Department:    "Commerce",
			DurationWeeks: 12,
			FeeAmount:     9000,
			Seats:         80,
			IsActive:      true,
		},
		{
			Code:          "MTH110",
			Title:         "Applied Mathematics",
			Description:   "Calculus and linear algebra with applications",
			Department:    "Mathematics",
			DurationWeeks: 16,
			FeeAmount:     12000,
			Seats:         60,
			IsActive:      true,
		},
	}

	for _, course := range courses {
		var count int64
		db.Model(&models.Course{}).Where("code = ?", course.Code).Count(&count)
		if count == 0 {
			if err := db.Create(&course).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash(getEnv("ADMIN_PASSWORD", "ChangeMe#2024"))
	if err != nil {
		return err
	}

	admin := models.User{
		Email:      getEnv("ADMIN_EMAIL", "admin@padyai.co.in"),
		Role:       string(domain.RoleAdmin),
		Password:   hashed,
		ExternalID: "ADMIN-0001",
		FirstName:  "Portal",
		LastName:   "Admin",
		IsActive:   true,
	}
	return db.Create(&admin).Error
}
