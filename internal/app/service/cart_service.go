package service

import (
	"errors"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/app/repository"
	"github.com/ikkim/agroshop-backend/internal/pricing"
	"github.com/ikkim/agroshop-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrCartItemForbidden = errors.New("cart item does not belong to user")
)

// CartView is the cart as returned to clients. CartID is nil when the
// user has no active cart.
type CartView struct {
	CartID *uint
	Status model.CartStatus
	Items  []model.CartItem
	Totals pricing.Totals
}

func newCartView(cart *model.Cart) *CartView {
	if cart == nil {
		return &CartView{Status: model.CartStatusActive, Items: []model.CartItem{}}
	}
	id := cart.ID
	items := cart.Items
	if items == nil {
		items = []model.CartItem{}
	}
	return &CartView{
		CartID: &id,
		Status: cart.Status,
		Items:  items,
		Totals: pricing.CalculateTotals(pricing.LinesFromCart(items)),
	}
}

type CartService interface {
	GetCart(userID uint) (*CartView, error)
	GetOrCreateActiveCart(userID uint) (*model.Cart, error)
	AddItem(userID, productID uint, quantity int) (*CartView, error)
	UpdateItem(userID, itemID uint, quantity int) (*CartView, error)
	RemoveItem(userID, itemID uint) (*CartView, error)
	Clear(userID uint) (*CartView, error)
}

type cartService struct {
	cartRepo         repository.CartRepository
	productRepo      repository.ProductRepository
	applyTierPricing bool
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	applyTierPricing bool,
) CartService {
	return &cartService{
		cartRepo:         cartRepo,
		productRepo:      productRepo,
		applyTierPricing: applyTierPricing,
	}
}

func (s *cartService) GetCart(userID uint) (*CartView, error) {
	cart, err := s.GetOrCreateActiveCart(userID)
	if err != nil {
		return nil, err
	}
	return newCartView(cart), nil
}

// GetOrCreateActiveCart returns the user's active cart, creating it on
// first use. A lost creation race falls back to the winner's row.
func (s *cartService) GetOrCreateActiveCart(userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.FindActiveByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &model.Cart{UserID: userID, Status: model.CartStatusActive}
	if createErr := s.cartRepo.CreateCart(cart); createErr != nil {
		existing, findErr := s.cartRepo.FindActiveByUserID(userID)
		if findErr != nil {
			return nil, createErr
		}
		logger.Debug("Active cart created concurrently, reusing it", map[string]interface{}{
			"user_id": userID,
			"cart_id": existing.ID,
		})
		return existing, nil
	}

	logger.Info("Active cart created", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.ID,
	})
	cart.Items = []model.CartItem{}
	return cart, nil
}

// AddItem puts a product in the cart. Adding a product that is already
// there replaces its quantity and refreshes the captured price.
func (s *cartService) AddItem(userID, productID uint, quantity int) (*CartView, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByIDWithTiers(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := pricing.ValidateAvailability(product, quantity); err != nil {
		logger.Warn("Cannot add to cart: insufficient product stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  quantity,
			"available":  product.Stock,
		})
		return nil, err
	}

	cart, err := s.GetOrCreateActiveCart(userID)
	if err != nil {
		return nil, err
	}

	unitPrice := pricing.UnitPrice(product, quantity, s.applyTierPricing)

	existing, err := s.cartRepo.FindItem(cart.ID, productID)
	switch {
	case err == nil:
		existing.Quantity = quantity
		existing.UnitPrice = unitPrice
		if err := s.cartRepo.UpdateItem(existing); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := &model.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		}
		if err := s.cartRepo.CreateItem(item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"cart_id":    cart.ID,
		"product_id": productID,
		"quantity":   quantity,
		"unit_price": unitPrice.String(),
	})
	return s.reload(userID)
}

// UpdateItem replaces the quantity of a line the caller owns. The captured
// price only moves when tier pricing is on, since the tier depends on qty.
func (s *cartService) UpdateItem(userID, itemID uint, quantity int) (*CartView, error) {
	logger.Info("Updating cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
		"quantity":     quantity,
	})

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.findOwnedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	product := &item.Product
	if s.applyTierPricing {
		withTiers, err := s.productRepo.FindByIDWithTiers(item.ProductID)
		if err != nil {
			return nil, err
		}
		product = withTiers
	}

	if err := pricing.ValidateAvailability(product, quantity); err != nil {
		logger.Warn("Cannot update cart item: insufficient product stock", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
			"requested":    quantity,
			"available":    product.Stock,
		})
		return nil, err
	}

	item.Quantity = quantity
	if s.applyTierPricing {
		item.UnitPrice = pricing.UnitPrice(product, quantity, true)
	}
	if err := s.cartRepo.UpdateItem(item); err != nil {
		return nil, err
	}

	return s.reload(userID)
}

func (s *cartService) RemoveItem(userID, itemID uint) (*CartView, error) {
	item, err := s.findOwnedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteItem(item.ID); err != nil {
		return nil, err
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})
	return s.reload(userID)
}

// Clear empties the active cart. It never creates one.
func (s *cartService) Clear(userID uint) (*CartView, error) {
	cart, err := s.cartRepo.FindActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newCartView(nil), nil
		}
		return nil, err
	}

	deleted, err := s.cartRepo.DeleteItemsByCartID(cart.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.ID,
		"deleted": deleted,
	})
	cart.Items = []model.CartItem{}
	return newCartView(cart), nil
}

// findOwnedItem separates a missing item from someone else's item.
func (s *cartService) findOwnedItem(userID, itemID uint) (*model.CartItem, error) {
	item, err := s.cartRepo.FindItemByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	if item.Cart.UserID != userID || item.Cart.Status != model.CartStatusActive {
		logger.Warn("Cart item ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
			"owner_id":     item.Cart.UserID,
		})
		return nil, ErrCartItemForbidden
	}
	return item, nil
}

func (s *cartService) reload(userID uint) (*CartView, error) {
	cart, err := s.cartRepo.FindActiveByUserID(userID)
	if err != nil {
		return nil, err
	}
	return newCartView(cart), nil
}
