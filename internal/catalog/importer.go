// Package catalog imports products and their volume pricing tiers from an
// xlsx workbook with a "Products" and an optional "PricingTiers" sheet.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/app/repository"
	"github.com/ikkim/agroshop-backend/internal/pricing"
	"github.com/ikkim/agroshop-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	ProductsSheet = "Products"
	TiersSheet    = "PricingTiers"
)

// ProductHeaders is the expected first row of the Products sheet.
var ProductHeaders = []string{"sku", "name", "category", "description", "price", "cost", "stock", "min_stock", "is_active", "is_featured", "image"}

// TierHeaders is the expected first row of the PricingTiers sheet.
var TierHeaders = []string{"sku", "min_qty", "max_qty", "price", "discount", "label"}

// Entry is one product with the tiers that belong to it.
type Entry struct {
	Product model.Product
	Tiers   []model.PricingTier
}

// RowError points at the sheet cell range that could not be imported.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ReadFile parses and validates a workbook. Nothing is written.
func ReadFile(path string) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func Read(f *excelize.File) ([]Entry, error) {
	productRows, err := f.GetRows(ProductsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", ProductsSheet, err)
	}
	if len(productRows) < 2 {
		return nil, fmt.Errorf("no data found in %s sheet", ProductsSheet)
	}

	entries := make([]Entry, 0, len(productRows)-1)
	bySKU := make(map[string]int)
	for i, row := range productRows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}
		product, err := parseProduct(row)
		if err != nil {
			return nil, &RowError{Sheet: ProductsSheet, Row: rowNum, Err: err}
		}
		if _, dup := bySKU[product.SKU]; dup {
			return nil, &RowError{Sheet: ProductsSheet, Row: rowNum, Err: fmt.Errorf("duplicate sku %q", product.SKU)}
		}
		bySKU[product.SKU] = len(entries)
		entries = append(entries, Entry{Product: product})
	}

	if idx, _ := f.GetSheetIndex(TiersSheet); idx >= 0 {
		tierRows, err := f.GetRows(TiersSheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s sheet: %w", TiersSheet, err)
		}
		for i, row := range tierRows {
			if i == 0 || isBlank(row) {
				continue
			}
			sku, tier, err := parseTier(row)
			if err != nil {
				return nil, &RowError{Sheet: TiersSheet, Row: i + 1, Err: err}
			}
			pos, ok := bySKU[sku]
			if !ok {
				return nil, &RowError{Sheet: TiersSheet, Row: i + 1, Err: fmt.Errorf("unknown sku %q", sku)}
			}
			entries[pos].Tiers = append(entries[pos].Tiers, tier)
		}
	}

	for i := range entries {
		if err := pricing.ValidateTiers(entries[i].Tiers); err != nil {
			return nil, fmt.Errorf("sku %s: %w", entries[i].Product.SKU, err)
		}
		pricing.SortTiers(entries[i].Tiers)
	}
	return entries, nil
}

// Import upserts every entry by SKU and replaces its tiers, all in one
// transaction.
func Import(db *gorm.DB, entries []Entry) (created, updated int, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		repo := repository.NewProductRepository(tx)
		for i := range entries {
			product := entries[i].Product

			existing, err := repo.FindBySKU(product.SKU)
			switch {
			case err == nil:
				product.ID = existing.ID
				product.CreatedAt = existing.CreatedAt
				if err := repo.Update(&product); err != nil {
					return err
				}
				updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := repo.Create(&product); err != nil {
					return err
				}
				created++
			default:
				return err
			}

			if err := repo.ReplaceTiers(product.ID, entries[i].Tiers); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Catalog import failed", err)
		return 0, 0, err
	}

	logger.Info("Catalog import completed", map[string]interface{}{
		"created": created,
		"updated": updated,
	})
	return created, updated, nil
}

func parseProduct(row []string) (model.Product, error) {
	col := columns(row, len(ProductHeaders))

	p := model.Product{
		SKU:         col[0],
		Name:        col[1],
		Category:    col[2],
		Description: col[3],
		Image:       col[10],
	}
	if p.SKU == "" {
		return p, errors.New("sku is required")
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}

	var err error
	if p.Price, err = parseMoney(col[4], "price", true); err != nil {
		return p, err
	}
	if p.Cost, err = parseMoney(col[5], "cost", false); err != nil {
		return p, err
	}
	if p.Stock, err = parseInt(col[6], "stock"); err != nil {
		return p, err
	}
	if p.Stock < 0 {
		return p, errors.New("stock must not be negative")
	}
	if col[7] != "" {
		minStock, err := parseInt(col[7], "min_stock")
		if err != nil {
			return p, err
		}
		p.MinStock = &minStock
	}
	p.IsActive = parseBool(col[8], true)
	p.IsFeatured = parseBool(col[9], false)
	return p, nil
}

func parseTier(row []string) (string, model.PricingTier, error) {
	col := columns(row, len(TierHeaders))

	var tier model.PricingTier
	sku := col[0]
	if sku == "" {
		return "", tier, errors.New("sku is required")
	}

	var err error
	if tier.MinQty, err = parseInt(col[1], "min_qty"); err != nil {
		return "", tier, err
	}
	if col[2] != "" {
		maxQty, err := parseInt(col[2], "max_qty")
		if err != nil {
			return "", tier, err
		}
		tier.MaxQty = &maxQty
	}
	if tier.Price, err = parseMoney(col[3], "price", true); err != nil {
		return "", tier, err
	}
	if col[4] != "" {
		if tier.Discount, err = decimal.NewFromString(col[4]); err != nil {
			return "", tier, fmt.Errorf("invalid discount %q", col[4])
		}
	}
	tier.Label = col[5]
	return sku, tier, nil
}

// columns pads a short row so trailing empty cells can be indexed.
func columns(row []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseMoney(s, field string, required bool) (decimal.Decimal, error) {
	if s == "" {
		if required {
			return decimal.Zero, fmt.Errorf("%s is required", field)
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return d.Round(2), nil
}

func parseInt(s, field string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, s)
	}
	return v, nil
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return fallback
	}
}
