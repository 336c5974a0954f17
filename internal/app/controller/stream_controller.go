package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	apperrors "github.com/ikkim/agroshop-backend/internal/errors"
	"github.com/ikkim/agroshop-backend/internal/middleware"
	ws "github.com/ikkim/agroshop-backend/internal/websocket"
)

type OrderStreamController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewOrderStreamController(hub *ws.Hub, allowedOrigins []string) *OrderStreamController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &OrderStreamController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// non-browser clients send no Origin
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Stream upgrades to a WebSocket that receives the caller's order events
// GET /api/v1/stream/orders
func (ctrl *OrderStreamController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		log.Warn("Failed to upgrade to WebSocket", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	ws.NewClient(ctrl.hub, conn, userID).Start()

	log.Info("Order stream connection established", map[string]interface{}{
		"user_id": userID,
	})
}
