package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aldenair/storefront-backend/config"
	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/internal/db"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <catalog.xlsx> [--yes]")
	}

	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && (os.Args[2] == "--yes" || os.Args[2] == "-y")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, summary, err := readCatalogFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Data rows: %d\n", summary.Rows)
	fmt.Printf("  Products: %d\n", summary.Products)
	fmt.Printf("  Variants: %d\n", summary.Variants)
	fmt.Printf("  Skipped rows: %d\n", len(summary.Skipped))
	for _, s := range summary.Skipped {
		fmt.Printf("    %s\n", s)
	}

	if len(products) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.Cart.BundlesFile); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	created, skipped, err := importProducts(repository.NewProductRepository(db.GetDB()), products)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("  Products created: %d\n", created)
	fmt.Printf("  Products skipped (SKU already in catalog): %d\n", skipped)
}

// importProducts creates every product none of whose SKUs exist yet, so
// running the import twice is harmless.
func importProducts(repo repository.ProductRepository, products []*model.Product) (created, skipped int, err error) {
	for _, p := range products {
		skus := make([]string, 0, len(p.Variants))
		for _, v := range p.Variants {
			skus = append(skus, v.SKU)
		}

		taken, err := repo.ExistingSKUs(skus)
		if err != nil {
			return created, skipped, err
		}
		if len(taken) > 0 {
			skipped++
			continue
		}

		if err := repo.Create(p); err != nil {
			return created, skipped, fmt.Errorf("create %s %s: %w", p.Brand, p.Name, err)
		}
		created++
	}
	return created, skipped, nil
}
