package db

import (
	"fmt"
	"strings"

	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
)

// Migrate runs database migrations and installs the check constraints that
// back the numeric invariants: total = subtotal + delivery_charge,
// total_price = unit_price * quantity, non-negative amounts, strictly
// positive quantities, and the known status set.
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Customer{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := installCheckConstraints(); err != nil {
		logger.Error("Failed to install check constraints", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// installCheckConstraints adds the Postgres check constraints AutoMigrate
// cannot express. Float comparisons use a small tolerance so the constraint
// enforces the invariant without tripping over representation noise.
func installCheckConstraints() error {
	statuses := make([]string, 0, len(model.AllOrderStatuses))
	for _, s := range model.AllOrderStatuses {
		statuses = append(statuses, fmt.Sprintf("'%s'", s))
	}

	constraints := []struct {
		table string
		name  string
		check string
	}{
		{"orders", "chk_orders_status",
			fmt.Sprintf("status IN (%s)", strings.Join(statuses, ", "))},
		{"orders", "chk_orders_total",
			"abs(total - (subtotal + delivery_charge)) < 0.001"},
		{"orders", "chk_orders_amounts",
			"subtotal >= 0 AND delivery_charge >= 0 AND total >= 0"},
		{"orders", "chk_orders_delivery_method",
			"delivery_method IN ('pickup', 'delivery')"},
		{"order_items", "chk_order_items_total",
			"abs(total_price - unit_price * quantity) < 0.001"},
		{"order_items", "chk_order_items_amounts",
			"quantity > 0 AND unit_price >= 0 AND total_price >= 0"},
		{"cart_items", "chk_cart_items_amounts",
			"quantity > 0 AND unit_price >= 0"},
		{"products", "chk_products_price",
			"base_price >= 0"},
	}

	for _, c := range constraints {
		var count int64
		if err := DB.Raw(
			"SELECT COUNT(*) FROM pg_constraint WHERE conname = ?", c.name,
		).Scan(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		ddl := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)", c.table, c.name, c.check)
		if err := DB.Exec(ddl).Error; err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", c.name, err)
		}
		logger.Debug("Check constraint installed", map[string]interface{}{
			"table":      c.table,
			"constraint": c.name,
		})
	}

	return nil
}
