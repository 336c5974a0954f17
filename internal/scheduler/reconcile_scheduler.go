package scheduler

import (
	"time"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// UnlinkedOrderLister is the order query the reconciliation job runs.
type UnlinkedOrderLister interface {
	ListUnlinked(olderThan time.Duration) ([]model.Order, error)
}

// ReconcileScheduler periodically reports orders whose payment intent was
// never linked. It only reports; fixing them is an operator decision.
type ReconcileScheduler struct {
	cron      *cron.Cron
	orders    UnlinkedOrderLister
	spec      string
	olderThan time.Duration
}

func NewReconcileScheduler(orders UnlinkedOrderLister, spec string, olderThan time.Duration) *ReconcileScheduler {
	return &ReconcileScheduler{
		cron:      cron.New(),
		orders:    orders,
		spec:      spec,
		olderThan: olderThan,
	}
}

func (s *ReconcileScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce()
	})
	if err != nil {
		logger.Error("Failed to add cron job for order reconciliation", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Order reconciliation scheduler started", map[string]interface{}{
		"spec":       s.spec,
		"older_than": s.olderThan.String(),
	})
	return nil
}

// RunOnce logs every unlinked order and returns how many were found.
func (s *ReconcileScheduler) RunOnce() int {
	orders, err := s.orders.ListUnlinked(s.olderThan)
	if err != nil {
		logger.Error("Failed to list unlinked orders", err)
		return 0
	}

	for _, order := range orders {
		logger.Warn("Pending order has no payment intent", map[string]interface{}{
			"order_id":     order.ID,
			"user_id":      order.UserID,
			"total_amount": order.TotalAmount.String(),
			"created_at":   order.CreatedAt,
		})
	}

	if len(orders) > 0 {
		logger.Warn("Order reconciliation found unlinked orders", map[string]interface{}{
			"count": len(orders),
		})
	} else {
		logger.Debug("Order reconciliation found nothing to report", nil)
	}
	return len(orders)
}

func (s *ReconcileScheduler) Stop() {
	logger.Info("Stopping order reconciliation scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Order reconciliation scheduler stopped", nil)
}
