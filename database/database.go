package database

import (
	"fmt"
	"log"
	"os"

	"storehub-backend/models"
	"storehub-backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=storehub port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.Store{},
		&models.OpeningPeriod{},
		&models.StoreStatus{},
	)
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@storehub.com"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
		Name:     "Admin User",
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}

// CreateDefaultVendor seeds a demo vendor with one owner account so a fresh
// deployment has something to log into. Controlled by DEFAULT_VENDOR_NAME;
// skipped when unset.
func CreateDefaultVendor(db *gorm.DB) error {
	vendorName := os.Getenv("DEFAULT_VENDOR_NAME")
	if vendorName == "" {
		return nil
	}

	slug := utils.Slugify(vendorName)

	var existing models.Vendor
	if err := db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		return nil
	}

	ownerEmail := os.Getenv("DEFAULT_VENDOR_EMAIL")
	if ownerEmail == "" {
		ownerEmail = "owner@" + slug + ".com"
	}
	ownerPassword := os.Getenv("DEFAULT_VENDOR_PASSWORD")
	if ownerPassword == "" {
		ownerPassword = "vendor123"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(ownerPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		owner := models.User{
			Email:    ownerEmail,
			Password: string(hashedPassword),
			Role:     "vendor_owner",
			Name:     vendorName + " Owner",
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		vendor := models.Vendor{
			Name:        vendorName,
			Slug:        slug,
			OwnerID:     owner.ID,
			Email:       ownerEmail,
			MaxBranches: 3,
		}
		if err := tx.Create(&vendor).Error; err != nil {
			return err
		}

		if err := tx.Model(&owner).Update("vendor_id", vendor.ID).Error; err != nil {
			return err
		}

		log.Printf("Default vendor created: %s (%s)", vendorName, ownerEmail)
		return nil
	})
}
