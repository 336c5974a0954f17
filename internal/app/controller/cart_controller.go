package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/agroshop-backend/internal/app/service"
	apperrors "github.com/ikkim/agroshop-backend/internal/errors"
	"github.com/ikkim/agroshop-backend/internal/middleware"
	"github.com/ikkim/agroshop-backend/internal/pricing"
)

type CartController struct {
	cartService service.CartService
	presenter   *Presenter
}

func NewCartController(cartService service.CartService, presenter *Presenter) *CartController {
	return &CartController{
		cartService: cartService,
		presenter:   presenter,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required,gt=0"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetCart returns user's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	view, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		info := apperrors.ParseError(err, "fetch cart")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ctrl.presenter.Cart(c.Request.Context(), view)})
}

// AddItem adds a product to the cart or replaces its quantity
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	view, err := ctrl.cartService.AddItem(userID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.Unprocessable(c, apperrors.ProductNotFound, "The selected product id is invalid.", map[string][]string{
				"product_id": {"The selected product id is invalid."},
			})
			return
		}
		if respondInsufficientStock(c, err) {
			return
		}
		log.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		info := apperrors.ParseError(err, "add cart item")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": ctrl.presenter.Cart(c.Request.Context(), view)})
}

// UpdateItem changes the quantity of a cart line
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	view, err := ctrl.cartService.UpdateItem(userID, itemID, req.Quantity)
	if err != nil {
		if respondCartItemError(c, err) || respondInsufficientStock(c, err) {
			return
		}
		log.Error("Failed to update cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
		})
		info := apperrors.ParseError(err, "update cart item")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ctrl.presenter.Cart(c.Request.Context(), view)})
}

// RemoveItem deletes a cart line
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := ctrl.cartService.RemoveItem(userID, itemID)
	if err != nil {
		if respondCartItemError(c, err) {
			return
		}
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
		})
		info := apperrors.ParseError(err, "remove cart item")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ctrl.presenter.Cart(c.Request.Context(), view)})
}

// ClearCart removes every item from the active cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	view, err := ctrl.cartService.Clear(userID)
	if err != nil {
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		info := apperrors.ParseError(err, "clear cart")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ctrl.presenter.Cart(c.Request.Context(), view)})
}

func respondCartItemError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrCartItemNotFound):
		apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
	case errors.Is(err, service.ErrCartItemForbidden):
		apperrors.Forbidden(c, apperrors.CartItemForbidden, "This item does not belong to your cart")
	default:
		return false
	}
	return true
}

func respondInsufficientStock(c *gin.Context, err error) bool {
	var stockErr *pricing.InsufficientStockError
	if !errors.As(err, &stockErr) {
		return false
	}
	apperrors.Unprocessable(c, apperrors.CartInsufficientStock, "Not enough stock available", map[string][]string{
		"quantity": {fmt.Sprintf("Only %d items available in stock", stockErr.Available)},
	})
	return true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
