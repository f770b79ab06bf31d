package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultGrace = 10 * time.Minute

type ReconcileService struct {
	db    *gorm.DB
	grace time.Duration
	log   *zap.Logger
	now   func() time.Time
}

func NewReconcileService(db *gorm.DB, grace time.Duration, log *zap.Logger) *ReconcileService {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &ReconcileService{
		db:    db,
		grace: grace,
		log:   log,
		now:   time.Now,
	}
}

// FlagIncompleteOrders помечает заказы старше grace без единой позиции
func (r *ReconcileService) FlagIncompleteOrders(ctx context.Context) ([]uint64, error) {
	cutoff := r.now().Add(-r.grace)

	query := `
		UPDATE orders o
		SET incomplete = true
		WHERE o.incomplete = false
		AND o.created_at < ?
		AND NOT EXISTS (
			SELECT 1 FROM order_items i WHERE i.order_id = o.id
		)
		RETURNING o.id
	`

	var ids []uint64
	if err := r.db.WithContext(ctx).Raw(query, cutoff).Scan(&ids).Error; err != nil {
		r.log.Error("failed to flag incomplete orders", zap.Error(err))
		return nil, err
	}
	for _, id := range ids {
		r.log.Warn("order has no items, flagged as incomplete", zap.Uint64("order_id", id))
	}
	if len(ids) > 0 {
		r.log.Info("flagged incomplete orders", zap.Int("count", len(ids)))
	}
	return ids, nil
}
