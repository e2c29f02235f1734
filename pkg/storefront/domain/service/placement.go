package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/model"
)

const maxOrderNumberAttempts = 3

type Event interface {
	Type() string
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

// OrderNumberGenerator returns a customer-facing order number. Uniqueness is
// enforced by storage; a collision makes PlaceOrder retry with a new number.
type OrderNumberGenerator func(now time.Time) (string, error)

// NewOrderNumber builds numbers like ORD-20261018-3F9A2C1B.
func NewOrderNumber(now time.Time) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix), nil
}

type PlacementService interface {
	PlaceOrder(ctx context.Context, merchant *model.Merchant, request *model.OrderRequest) (*model.Order, error)
}

func NewPlacementService(
	uow model.UnitOfWork,
	reconciler *Reconciler,
	numbers OrderNumberGenerator,
	dispatcher EventDispatcher,
	logger log.FieldLogger,
) PlacementService {
	if numbers == nil {
		numbers = NewOrderNumber
	}
	return &placementService{
		uow:        uow,
		reconciler: reconciler,
		numbers:    numbers,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type placementService struct {
	uow        model.UnitOfWork
	reconciler *Reconciler
	numbers    OrderNumberGenerator
	dispatcher EventDispatcher
	logger     log.FieldLogger
}

func (s *placementService) PlaceOrder(ctx context.Context, merchant *model.Merchant, request *model.OrderRequest) (*model.Order, error) {
	if !merchant.AcceptOrders {
		return nil, model.ErrOrdersNotAccepted
	}

	var (
		order *model.Order
		err   error
	)
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order, err = s.placeOnce(ctx, merchant, request)
		if !errors.Is(err, model.ErrDuplicateOrderNumber) {
			break
		}
		s.logger.WithFields(log.Fields{
			"merchantID": merchant.ID,
			"attempt":    attempt,
		}).Warn("order number collision, retrying")
	}
	if err != nil {
		return nil, classifyPlacementError(err)
	}

	s.logger.WithFields(log.Fields{
		"merchantID":  merchant.ID,
		"orderNumber": order.Number,
		"totalCents":  order.TotalCents,
		"items":       len(order.Items),
	}).Info("order placed")

	event := model.OrderPlaced{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		MerchantID:  merchant.ID,
		TotalCents:  order.TotalCents,
		ItemCount:   len(order.Items),
	}
	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		s.logger.WithError(err).WithField("orderNumber", order.Number).Error("failed to dispatch event " + event.Type())
	}

	return order, nil
}

func (s *placementService) placeOnce(ctx context.Context, merchant *model.Merchant, request *model.OrderRequest) (*model.Order, error) {
	now := time.Now().UTC()
	number, err := s.numbers(now)
	if err != nil {
		return nil, err
	}

	var order *model.Order
	err = s.uow.Execute(ctx, func(provider model.RepositoryProvider) error {
		orders := provider.OrderRepository()
		orderID, err := orders.NextID()
		if err != nil {
			return err
		}

		items, err := s.reconciler.Reconcile(
			ctx,
			provider.ProductRepository(),
			provider.InventoryMovementRepository(),
			merchant.ID,
			orderID,
			request.Lines,
		)
		if err != nil {
			return err
		}

		order = model.NewOrder(orderID, number, merchant.ID, request.Customer, items, now)
		return orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func classifyPlacementError(err error) error {
	var (
		persistenceErr *model.PersistenceError
		validationErr  *model.ValidationError
	)
	switch {
	case errors.Is(err, model.ErrNoFulfillableItems),
		errors.Is(err, model.ErrLineUnavailable),
		errors.As(err, &validationErr),
		errors.As(err, &persistenceErr):
		return err
	default:
		return &model.PersistenceError{Err: err}
	}
}
