package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/samnasalta/orderbot-backend/config"
	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/app/repository"
	"github.com/samnasalta/orderbot-backend/internal/db"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Seeds the product catalog. With an XLSX path it imports the spreadsheet;
// without one it loads the built-in default catalog.
//
// Expected columns: name, category, description, base_price, options,
// prep_time_minutes, allergens, image_url, is_active. Options use the form
// "size:small|large;spice:mild|hot".
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	var products []model.Product
	if len(os.Args) > 1 {
		filePath := os.Args[1]
		fmt.Printf("Reading XLSX file: %s\n", filePath)
		products, err = readProductsFromXLSX(filePath)
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}
	} else {
		fmt.Println("No XLSX file given, using the default catalog")
		products = db.DefaultProducts()
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	created, updated := 0, 0
	for i := range products {
		existing, err := productRepo.FindByName(products[i].Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatal("Failed to check existing product:", err)
		}

		if existing != nil {
			products[i].ID = existing.ID
			products[i].CreatedAt = existing.CreatedAt
			if err := productRepo.Update(&products[i]); err != nil {
				log.Fatal("Failed to update product:", err)
			}
			updated++
			continue
		}

		if err := productRepo.Create(&products[i]); err != nil {
			log.Fatal("Failed to create product:", err)
		}
		created++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Created: %d, updated: %d\n", created, updated)
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 4 {
			skipped++
			continue
		}

		name := strings.TrimSpace(cell(row, 0))
		category := strings.TrimSpace(cell(row, 1))
		description := strings.TrimSpace(cell(row, 2))
		priceStr := strings.TrimSpace(cell(row, 3))

		if name == "" || priceStr == "" {
			skipped++
			continue
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			skipped++
			continue
		}

		if seen[name] {
			skipped++
			continue
		}
		seen[name] = true

		prepTime := 0
		if v := strings.TrimSpace(cell(row, 5)); v != "" {
			prepTime, _ = strconv.Atoi(v)
		}

		isActive := true
		if v := strings.ToLower(strings.TrimSpace(cell(row, 8))); v == "false" || v == "no" || v == "0" {
			isActive = false
		}

		products = append(products, model.Product{
			Name:            name,
			Category:        category,
			Description:     description,
			BasePrice:       price,
			Options:         parseOptions(cell(row, 4)),
			PrepTimeMinutes: prepTime,
			Allergens:       strings.TrimSpace(cell(row, 6)),
			ImageURL:        strings.TrimSpace(cell(row, 7)),
			IsActive:        isActive,
		})
	}

	if skipped > 0 {
		fmt.Printf("Skipped %d invalid or duplicate rows\n", skipped)
	}
	return products, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseOptions turns "size:small|large;spice:mild|hot" into an option set.
func parseOptions(raw string) model.OptionSet {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	options := model.OptionSet{}
	for _, group := range strings.Split(raw, ";") {
		parts := strings.SplitN(group, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		var values []string
		for _, v := range strings.Split(parts[1], "|") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			options[key] = values
		}
	}

	if len(options) == 0 {
		return nil
	}
	return options
}
