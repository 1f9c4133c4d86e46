package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// columns the catalog sheet must carry, matched case-insensitively
var requiredColumns = []string{"brand", "name", "category", "sku", "size", "price", "stock"}

type importSummary struct {
	Rows     int
	Products int
	Variants int
	Skipped  []string // "row N: reason"
}

type rowError struct {
	row    int
	reason string
}

func (e rowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.row, e.reason)
}

// readCatalogFromXLSX reads the first sheet. Each row is one variant; rows
// sharing brand and name become one product in sheet order.
func readCatalogFromXLSX(filePath string) ([]*model.Product, importSummary, error) {
	var summary importSummary

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, summary, errors.New("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, summary, errors.New("no data found in XLSX file")
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, summary, err
	}

	var products []*model.Product
	byKey := make(map[string]*model.Product)
	seenSKU := make(map[string]bool)

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header
		if isBlank(row) {
			continue
		}
		summary.Rows++

		product, variant, err := parseRow(rowNum, row, cols)
		if err != nil {
			summary.Skipped = append(summary.Skipped, err.Error())
			continue
		}
		if seenSKU[variant.SKU] {
			summary.Skipped = append(summary.Skipped, rowError{rowNum, "duplicate sku " + variant.SKU}.Error())
			continue
		}
		seenSKU[variant.SKU] = true

		key := strings.ToLower(product.Brand + "|" + product.Name)
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = product
			products = append(products, product)
			existing = product
		}
		existing.Variants = append(existing.Variants, variant)
		summary.Variants++
	}

	summary.Products = len(products)
	return products, summary, nil
}

func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, nil
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(rowNum int, row []string, cols map[string]int) (*model.Product, model.ProductVariant, error) {
	brand := cell(row, cols, "brand")
	name := cell(row, cols, "name")
	sku := strings.ToUpper(cell(row, cols, "sku"))
	if brand == "" || name == "" || sku == "" {
		return nil, model.ProductVariant{}, rowError{rowNum, "brand, name and sku are required"}
	}

	category := model.ProductCategory(strings.ToLower(cell(row, cols, "category")))
	if !category.Valid() {
		return nil, model.ProductVariant{}, rowError{rowNum, "unknown category " + string(category)}
	}

	price, err := parsePriceCents(cell(row, cols, "price"))
	if err != nil {
		return nil, model.ProductVariant{}, rowError{rowNum, err.Error()}
	}

	stock, err := strconv.Atoi(cell(row, cols, "stock"))
	if err != nil || stock < 0 {
		return nil, model.ProductVariant{}, rowError{rowNum, "stock must be a non-negative integer"}
	}

	size := cell(row, cols, "size")
	product := &model.Product{
		Brand:       brand,
		Name:        name,
		Description: cell(row, cols, "description"),
		ImageURL:    cell(row, cols, "image_url"),
		Category:    category,
		Size:        size,
		Notes:       splitNotes(cell(row, cols, "notes")),
		Active:      true,
	}
	variant := model.ProductVariant{
		SKU:           sku,
		Label:         size,
		PriceCents:    price,
		StockQuantity: stock,
	}
	return product, variant, nil
}

// parsePriceCents accepts "44.99", "44,99" and "44.99 €"
func parsePriceCents(raw string) (int64, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "€"))
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative price %q", raw)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

func splitNotes(raw string) []string {
	var notes []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			notes = append(notes, n)
		}
	}
	return notes
}
