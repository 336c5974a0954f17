package repository

import (
	"errors"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Category     string
	FeaturedOnly bool
	ActiveOnly   bool
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	FindAll(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindByIDWithTiers(id uint) (*model.Product, error)
	FindByIDsForUpdate(ids []uint) (map[uint]model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	Create(product *model.Product) error
	Update(product *model.Product) error
	ReplaceTiers(productID uint, tiers []model.PricingTier) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) FindAll(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products in database", map[string]interface{}{
		"category":      filter.Category,
		"featured_only": filter.FeaturedOnly,
		"active_only":   filter.ActiveOnly,
	})

	query := r.db.Model(&model.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var products []model.Product
	if err := query.Order("id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find products in database", err)
		return nil, err
	}

	logger.Debug("Products found in database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDWithTiers(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("PricingTiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("pricing_tiers.min_qty ASC")
	}).First(&product, id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find product with tiers in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}

	logger.Debug("Product found with tiers in database", map[string]interface{}{
		"product_id": product.ID,
		"tiers":      len(product.PricingTiers),
	})
	return &product, nil
}

// FindByIDsForUpdate row-locks the products for the current transaction.
func (r *productRepository) FindByIDsForUpdate(ids []uint) (map[uint]model.Product, error) {
	var products []model.Product
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error; err != nil {
		logger.Error("Failed to lock products in database", err, map[string]interface{}{
			"product_ids": ids,
		})
		return nil, err
	}

	byID := make(map[uint]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (r *productRepository) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"sku":  product.SKU,
		"name": product.Name,
	})

	if err := r.db.Omit("PricingTiers").Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"sku": product.SKU,
		})
		return err
	}
	return nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
	})

	if err := r.db.Omit("PricingTiers", "CreatedAt").Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

// ReplaceTiers swaps the whole tier set of a product.
func (r *productRepository) ReplaceTiers(productID uint, tiers []model.PricingTier) error {
	if err := r.db.Where("product_id = ?", productID).Delete(&model.PricingTier{}).Error; err != nil {
		logger.Error("Failed to delete pricing tiers in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	if len(tiers) == 0 {
		return nil
	}

	for i := range tiers {
		tiers[i].ID = 0
		tiers[i].ProductID = productID
	}
	if err := r.db.Create(&tiers).Error; err != nil {
		logger.Error("Failed to create pricing tiers in database", err, map[string]interface{}{
			"product_id": productID,
			"count":      len(tiers),
		})
		return err
	}

	logger.Debug("Pricing tiers replaced in database", map[string]interface{}{
		"product_id": productID,
		"count":      len(tiers),
	})
	return nil
}
