package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/agroshop-backend/internal/app/service"
	apperrors "github.com/ikkim/agroshop-backend/internal/errors"
	"github.com/ikkim/agroshop-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
	presenter      *Presenter
}

func NewProductController(productService service.ProductService, presenter *Presenter) *ProductController {
	return &ProductController{
		productService: productService,
		presenter:      presenter,
	}
}

// GetProducts lists the catalog, optionally by category
// GET /api/v1/products?category=
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.ListProducts(c.Query("category"))
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		info := apperrors.ParseError(err, "list products")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  ctrl.presenter.Products(c.Request.Context(), products),
		"count": len(products),
	})
}

// GetFeaturedProducts lists active featured products
// GET /api/v1/products/featured
func (ctrl *ProductController) GetFeaturedProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.ListFeatured()
	if err != nil {
		log.Error("Failed to fetch featured products", err, nil)
		info := apperrors.ParseError(err, "list products")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  ctrl.presenter.Products(c.Request.Context(), products),
		"count": len(products),
	})
}

// GetProductByID returns a product with its pricing tiers
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		info := apperrors.ParseError(err, "get product")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ctrl.presenter.Product(c.Request.Context(), product)})
}

// GetQuote prices a quantity against the product's tiers
// GET /api/v1/products/:id/quote?quantity=
func (ctrl *ProductController) GetQuote(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil || quantity < 1 {
		apperrors.Unprocessable(c, apperrors.ValidationError, "The quantity must be at least 1.", map[string][]string{
			"quantity": {"The quantity must be at least 1."},
		})
		return
	}

	quote, err := ctrl.productService.Quote(id, quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to quote product", err, map[string]interface{}{
			"product_id": id,
			"quantity":   quantity,
		})
		info := apperrors.ParseError(err, "quote product")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ctrl.presenter.Quote(quote)})
}
