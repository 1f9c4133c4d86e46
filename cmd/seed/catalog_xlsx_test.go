package main

import (
	"path/filepath"
	"testing"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCatalog(t *testing.T, rows [][]interface{}) string {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, addr, &row))
	}

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var catalogHeader = []interface{}{"Brand", "Name", "Category", "Size", "SKU", "Price", "Stock", "Notes", "Description"}

func TestReadCatalogFromXLSX(t *testing.T) {
	path := writeCatalog(t, [][]interface{}{
		catalogHeader,
		{"ALDENAIR", "Oud Royal", "Unisex", "50ml", "oud-50", "44,99", "4", "Saffron, Oud", "Warm"},
		{"ALDENAIR", "Oud Royal", "unisex", "100ml", "OUD-100", "79.99 €", "0", "", ""},
		{"ALDENAIR", "Amber Nuit", "women", "50ml", "AMB-50", "29.99", "9", "amber", ""},
		{"ALDENAIR", "Broken", "candles", "50ml", "BRK-50", "9.99", "1", "", ""},
		{"ALDENAIR", "Cheap", "men", "50ml", "CHP-50", "free", "1", "", ""},
		{"ALDENAIR", "Again", "men", "50ml", "AMB-50", "19.99", "1", "", ""},
		{},
	})

	products, summary, err := readCatalogFromXLSX(path)
	require.NoError(t, err)

	assert.Equal(t, 6, summary.Rows)
	assert.Equal(t, 2, summary.Products)
	assert.Equal(t, 3, summary.Variants)
	assert.Len(t, summary.Skipped, 3)

	require.Len(t, products, 2)
	oud := products[0]
	assert.Equal(t, "Oud Royal", oud.Name)
	assert.Equal(t, model.CategoryUnisex, oud.Category)
	assert.Equal(t, []string{"saffron", "oud"}, []string(oud.Notes))
	require.Len(t, oud.Variants, 2)
	assert.Equal(t, "OUD-50", oud.Variants[0].SKU)
	assert.Equal(t, int64(4499), oud.Variants[0].PriceCents)
	assert.Equal(t, int64(7999), oud.Variants[1].PriceCents)
	assert.Equal(t, "100ml", oud.Variants[1].Label)
}

func TestReadCatalogFromXLSX_MissingColumn(t *testing.T) {
	path := writeCatalog(t, [][]interface{}{
		{"Brand", "Name", "SKU"},
		{"ALDENAIR", "Oud Royal", "OUD-50"},
	})

	_, _, err := readCatalogFromXLSX(path)
	assert.ErrorContains(t, err, "missing column")
}

func TestParsePriceCents(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "44.99", want: 4499},
		{raw: "44,99", want: 4499},
		{raw: "12 €", want: 1200},
		{raw: "0.005", want: 1},
		{raw: "-1", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parsePriceCents(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportProducts_SkipsKnownSKUs(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	repo := repository.NewProductRepository(testDB)

	newProducts := func() []*model.Product {
		return []*model.Product{
			{Brand: "ALDENAIR", Name: "Oud Royal", Category: model.CategoryUnisex, Active: true,
				Variants: []model.ProductVariant{{SKU: "OUD-50", Label: "50ml", PriceCents: 4499}}},
			{Brand: "ALDENAIR", Name: "Amber Nuit", Category: model.CategoryWomen, Active: true,
				Variants: []model.ProductVariant{{SKU: "AMB-50", Label: "50ml", PriceCents: 2999}}},
		}
	}

	created, skipped, err := importProducts(repo, newProducts())
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 0, skipped)

	created, skipped, err = importProducts(repo, newProducts())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 2, skipped)
}
