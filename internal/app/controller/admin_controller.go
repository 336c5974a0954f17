package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/agroshop-backend/internal/app/service"
	apperrors "github.com/ikkim/agroshop-backend/internal/errors"
	"github.com/ikkim/agroshop-backend/internal/middleware"
)

type AdminController struct {
	orderService service.OrderService
	presenter    *Presenter
	unlinkedAge  time.Duration
}

func NewAdminController(orderService service.OrderService, presenter *Presenter, unlinkedAge time.Duration) *AdminController {
	return &AdminController{
		orderService: orderService,
		presenter:    presenter,
		unlinkedAge:  unlinkedAge,
	}
}

// GetUnlinkedOrders lists pending orders that never got a payment intent
// GET /api/v1/admin/orders/unlinked?older_than=10m
func (ctrl *AdminController) GetUnlinkedOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	age := ctrl.unlinkedAge
	if raw := c.Query("older_than"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			apperrors.Unprocessable(c, apperrors.ValidationError, "The older than field must be a duration.", map[string][]string{
				"older_than": {"The older than field must be a duration."},
			})
			return
		}
		age = parsed
	}

	orders, err := ctrl.orderService.ListUnlinked(age)
	if err != nil {
		log.Error("Failed to fetch unlinked orders", err, nil)
		info := apperrors.ParseError(err, "list orders")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       ctrl.presenter.Orders(c.Request.Context(), orders),
		"count":      len(orders),
		"older_than": age.String(),
	})
}
