package database

import (
	"ShortLinks-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs schema migrations for all domain models
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Migration order matters because of foreign keys
	models := []interface{}{
		&domain.ShortLink{},
		&domain.LinkClick{}, // references short_links
	}

	for _, model := range models {
		modelName := fmt.Sprintf("%T", model)
		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
		log.Info("model migrated", zap.String("model", modelName))
	}

	log.Info("database auto-migration completed", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedData populates the registry with demo links for local environments
func SeedData(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database seeding")

	var count int64
	db.Model(&domain.ShortLink{}).Count(&count)
	if count > 0 {
		log.Info("short links already exist, skipping seeding", zap.Int64("existing_count", count))
		return nil
	}

	links := []domain.ShortLink{
		{
			Code:     "johnatlanta",
			URL:      "https://taxgeniuspro.tax/start-filing/form?ref=TGP-123456",
			IsActive: true,
		},
		{
			Code:     "refund-advance",
			URL:      "https://taxgeniuspro.tax/refund-advance",
			IsActive: true,
		},
		{
			Code:     "paused",
			URL:      "https://taxgeniuspro.tax/courses",
			IsActive: false,
		},
	}

	if err := db.Create(&links).Error; err != nil {
		log.Error("failed to seed short links", zap.Error(err))
		return fmt.Errorf("failed to seed short links: %w", err)
	}

	log.Info("database seeding completed", zap.Int("links_created", len(links)))
	return nil
}
