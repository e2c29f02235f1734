package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/model"
)

// Reconciler checks requested lines against stock and decrements it. It must
// be called with repositories bound to the order transaction so that the
// decrements and their movements commit or roll back together with the order.
type Reconciler struct {
	policy model.FulfillmentPolicy
	logger log.FieldLogger
}

func NewReconciler(policy model.FulfillmentPolicy, logger log.FieldLogger) *Reconciler {
	return &Reconciler{policy: policy, logger: logger}
}

func (r *Reconciler) Policy() model.FulfillmentPolicy {
	return r.policy
}

// Reconcile decrements stock for every servable line of order orderID and
// records one outgoing inventory movement per fulfilled line.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	products model.ProductRepository,
	movements model.InventoryMovementRepository,
	merchantID, orderID uuid.UUID,
	lines []model.RequestedLine,
) ([]model.LineItem, error) {
	now := time.Now().UTC()
	items := make([]model.LineItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		product, err := products.DecrementStock(ctx, merchantID, line.ProductID, line.Quantity)
		if err != nil {
			if !isUnavailable(err) {
				return nil, err
			}
			if r.policy == model.StrictFulfillment {
				return nil, errors.Join(model.ErrLineUnavailable, err)
			}
			r.logger.WithFields(log.Fields{
				"merchantID": merchantID,
				"productID":  line.ProductID,
				"quantity":   line.Quantity,
				"reason":     err.Error(),
			}).Info("skipping unavailable line item")
			continue
		}

		item := model.LineItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
		}
		var ok bool
		if total, ok = model.AddLineCents(total, item); !ok {
			return nil, model.OrderTooLargeError()
		}

		movementID, err := movements.NextID()
		if err != nil {
			return nil, err
		}
		if err := movements.Record(ctx, model.NewOrderMovement(movementID, orderID, product, line.Quantity, now)); err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, model.ErrNoFulfillableItems
	}
	return items, nil
}

func isUnavailable(err error) bool {
	return errors.Is(err, model.ErrProductNotFound) || errors.Is(err, model.ErrInsufficientStock)
}
