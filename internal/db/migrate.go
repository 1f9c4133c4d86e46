package db

import (
	"errors"
	"fmt"
	"os"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/pkg/logger"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Models lists every table the service owns, in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Product{},
		&model.ProductVariant{},
		&model.BundleOffer{},
		&model.Order{},
		&model.OrderItem{},
		&model.Partner{},
	}
}

// Migrate runs database migrations and seeds bundle offers from bundlesFile
func Migrate(bundlesFile string) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedBundles(DB, bundlesFile); err != nil {
		logger.Error("Failed to seed bundle offers during migration", err, logger.Fields{
			"file": bundlesFile,
		})
		return err
	}

	logger.Info("Database migrations completed successfully", logger.Fields{
		"models_count": len(models),
	})
	return nil
}

type bundleSeedFile struct {
	Bundles []model.BundleOffer `yaml:"bundles"`
}

// LoadBundleSeed parses a bundles YAML file. A missing file yields no offers.
func LoadBundleSeed(path string) ([]model.BundleOffer, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var seed bundleSeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for i, b := range seed.Bundles {
		if b.Slug == "" || b.QuantityRequired < 1 || b.DiscountPercent < 0 || b.DiscountPercent > 100 {
			return nil, fmt.Errorf("bundle #%d (%q) in %s is invalid", i, b.Slug, path)
		}
	}
	return seed.Bundles, nil
}

// SeedBundles inserts offers whose slug is not in the table yet.
// Existing offers are left alone so admin edits survive restarts.
func SeedBundles(db *gorm.DB, path string) error {
	offers, err := LoadBundleSeed(path)
	if err != nil {
		return err
	}
	if len(offers) == 0 {
		logger.Info("No bundle offers to seed", logger.Fields{"file": path})
		return nil
	}

	created := 0
	for _, offer := range offers {
		var existing model.BundleOffer
		err := db.Unscoped().Where("slug = ?", offer.Slug).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		o := offer
		if err := db.Create(&o).Error; err != nil {
			return err
		}
		created++
	}

	logger.Info("Bundle offers seeded", logger.Fields{
		"file":    path,
		"created": created,
		"total":   len(offers),
	})
	return nil
}
