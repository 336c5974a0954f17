package service

import (
	"errors"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/app/repository"
	"github.com/ikkim/agroshop-backend/internal/pricing"
	"github.com/ikkim/agroshop-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Quote is the price a given quantity would be charged, plus the tier it
// falls into for display.
type Quote struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Tier      *model.PricingTier
	Available bool
}

type ProductService interface {
	ListProducts(category string) ([]model.Product, error)
	ListFeatured() ([]model.Product, error)
	GetProduct(id uint) (*model.Product, error)
	Quote(id uint, quantity int) (*Quote, error)
}

type productService struct {
	productRepo      repository.ProductRepository
	applyTierPricing bool
}

func NewProductService(productRepo repository.ProductRepository, applyTierPricing bool) ProductService {
	return &productService{
		productRepo:      productRepo,
		applyTierPricing: applyTierPricing,
	}
}

func (s *productService) ListProducts(category string) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(repository.ProductFilter{Category: category})
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"category": category,
		})
		return nil, err
	}
	return products, nil
}

func (s *productService) ListFeatured() ([]model.Product, error) {
	products, err := s.productRepo.FindAll(repository.ProductFilter{
		FeaturedOnly: true,
		ActiveOnly:   true,
	})
	if err != nil {
		logger.Error("Failed to list featured products", err)
		return nil, err
	}
	return products, nil
}

// GetProduct loads a product with its pricing tiers sorted by min_qty.
func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByIDWithTiers(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) Quote(id uint, quantity int) (*Quote, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	unitPrice := pricing.UnitPrice(product, quantity, s.applyTierPricing)
	quote := &Quote{
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  pricing.CalculateTotals([]pricing.LineItem{{Quantity: quantity, UnitPrice: unitPrice}}).Subtotal,
		Available: pricing.ValidateAvailability(product, quantity) == nil,
	}
	if tier, ok := pricing.ResolveTier(product.PricingTiers, quantity); ok {
		quote.Tier = tier
	}

	logger.Debug("Product quote calculated", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   quantity,
		"unit_price": unitPrice.String(),
		"available":  quote.Available,
	})
	return quote, nil
}
