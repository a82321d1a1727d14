package db

import (
	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
)

// Seed loads the default product catalog when the products table is empty.
func Seed() error {
	var count int64
	if err := DB.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Products already exist, skipping seed", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding default product catalog...")

	products := DefaultProducts()
	for i := range products {
		if err := DB.Create(&products[i]).Error; err != nil {
			logger.Error("Failed to create product", err, map[string]interface{}{
				"product": products[i].Name,
			})
			return err
		}
	}

	logger.Info("Default products seeded successfully", map[string]interface{}{
		"count": len(products),
	})
	return nil
}

// DefaultProducts is the stock Yemenite catalog the shop opens with.
func DefaultProducts() []model.Product {
	return []model.Product{
		{
			Name:        "Kubaneh",
			Category:    "bread",
			Description: "Traditional Yemenite bread",
			BasePrice:   25.00,
			IsActive:    true,
			Options: model.OptionSet{
				"type": {"Classic", "Seeded", "Herb", "Aromatic"},
				"oil":  {"Olive oil", "Samneh"},
			},
		},
		{
			Name:        "Samneh",
			Category:    "spread",
			Description: "Traditional clarified butter",
			BasePrice:   15.00,
			IsActive:    true,
			Options: model.OptionSet{
				"smoking": {"Smoked", "Not smoked"},
				"size":    {"Small", "Large"},
			},
		},
		{
			Name:        "Red Bisbas",
			Category:    "spice",
			Description: "Traditional Yemenite spice blend",
			BasePrice:   12.00,
			IsActive:    true,
			Options: model.OptionSet{
				"size": {"Small", "Large"},
			},
		},
		{
			Name:        "Hawaij soup spice",
			Category:    "spice",
			Description: "Traditional soup spice blend",
			BasePrice:   8.00,
			IsActive:    true,
		},
		{
			Name:        "Hawaij coffee spice",
			Category:    "spice",
			Description: "Traditional coffee spice blend",
			BasePrice:   8.00,
			IsActive:    true,
		},
		{
			Name:        "White coffee",
			Category:    "beverage",
			Description: "Traditional Yemenite white coffee",
			BasePrice:   10.00,
			IsActive:    true,
		},
		{
			Name:        "Hilbeh",
			Category:    "spread",
			Description: "Traditional fenugreek spread (available Wed-Fri only)",
			BasePrice:   18.00,
			IsActive:    true,
		},
	}
}
