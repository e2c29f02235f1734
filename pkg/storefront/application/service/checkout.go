package service

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
)

type ReceiptLine struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// Receipt is what the presentation layer shows after a successful checkout.
type Receipt struct {
	OrderNumber string        `json:"order_number"`
	Status      string        `json:"status"`
	Total       string        `json:"total"`
	LineItems   []ReceiptLine `json:"line_items"`
}

type CatalogItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

type Storefront struct {
	Slug     string        `json:"slug"`
	Name     string        `json:"name"`
	Products []CatalogItem `json:"products"`
}

type CheckoutService interface {
	Storefront(ctx context.Context, slug string) (*Storefront, error)
	ResolveMerchant(ctx context.Context, slug string) (*model.Merchant, error)
	Checkout(ctx context.Context, submission model.Submission) (*Receipt, error)
	FindOrder(ctx context.Context, slug, orderNumber string) (*Receipt, error)
}

func NewCheckoutService(
	catalog domainservice.CatalogService,
	placement domainservice.PlacementService,
	orders model.OrderRepository,
	tracer trace.Tracer,
	logger log.FieldLogger,
) CheckoutService {
	return &checkoutService{
		catalog:   catalog,
		placement: placement,
		orders:    orders,
		tracer:    tracer,
		logger:    logger,
	}
}

type checkoutService struct {
	catalog   domainservice.CatalogService
	placement domainservice.PlacementService
	orders    model.OrderRepository
	tracer    trace.Tracer
	logger    log.FieldLogger
}

func (s *checkoutService) Storefront(ctx context.Context, slug string) (*Storefront, error) {
	ctx, span := s.tracer.Start(ctx, "catalog_lookup")
	defer span.End()
	span.SetAttributes(attribute.String("merchant.slug", slug))

	merchant, products, err := s.catalog.ListAvailableProducts(ctx, slug)
	if err != nil {
		recordFailure(span, err)
		return nil, err
	}

	items := make([]CatalogItem, 0, len(products))
	for _, p := range products {
		items = append(items, CatalogItem{
			ID:    p.ID.String(),
			Name:  p.Name,
			Price: FormatCents(p.PriceCents),
			Stock: p.Stock,
		})
	}
	return &Storefront{Slug: merchant.Slug, Name: merchant.Name, Products: items}, nil
}

// ResolveMerchant looks up the merchant alone, for requests that fail before a
// submission can be built.
func (s *checkoutService) ResolveMerchant(ctx context.Context, slug string) (*model.Merchant, error) {
	ctx, span := s.tracer.Start(ctx, "merchant_lookup")
	defer span.End()
	span.SetAttributes(attribute.String("merchant.slug", slug))

	merchant, err := s.catalog.FindMerchant(ctx, slug)
	if err != nil {
		recordFailure(span, err)
		return nil, err
	}
	return merchant, nil
}

func (s *checkoutService) Checkout(ctx context.Context, submission model.Submission) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "checkout")
	defer span.End()
	span.SetAttributes(attribute.String("merchant.slug", submission.MerchantSlug))

	logger := s.logger.WithField("merchant", submission.MerchantSlug)

	merchant, err := s.catalog.FindMerchant(ctx, submission.MerchantSlug)
	if err != nil {
		recordFailure(span, err)
		return nil, err
	}

	request, err := domainservice.ParseSubmission(submission)
	if err != nil {
		logger.WithError(err).Info("rejected order submission")
		recordFailure(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("order.requested_lines", len(request.Lines)))

	order, err := s.placement.PlaceOrder(ctx, merchant, request)
	if err != nil {
		if model.IsTransient(err) {
			logger.WithError(err).Error("failed to place order")
		} else {
			logger.WithError(err).Info("order not placed")
		}
		recordFailure(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.number", order.Number),
		attribute.Int("order.fulfilled_lines", len(order.Items)),
		attribute.Int64("order.total_cents", order.TotalCents),
	)
	span.SetStatus(codes.Ok, "order placed")
	return NewReceipt(order), nil
}

func (s *checkoutService) FindOrder(ctx context.Context, slug, orderNumber string) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "order_lookup")
	defer span.End()

	merchant, err := s.catalog.FindMerchant(ctx, slug)
	if err != nil {
		recordFailure(span, err)
		return nil, err
	}

	order, err := s.orders.FindByNumber(ctx, merchant.ID, orderNumber)
	if err != nil {
		recordFailure(span, err)
		return nil, err
	}
	return NewReceipt(order), nil
}

func NewReceipt(order *model.Order) *Receipt {
	lines := make([]ReceiptLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, ReceiptLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   FormatCents(item.UnitPriceCents),
		})
	}
	return &Receipt{
		OrderNumber: order.Number,
		Status:      order.Status.String(),
		Total:       FormatCents(order.TotalCents),
		LineItems:   lines,
	}
}

// FormatCents renders minor units as a two decimal amount, e.g. 2000 -> "20.00".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func recordFailure(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(model.KindOf(err)))
}
