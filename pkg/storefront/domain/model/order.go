package model

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrderNumber = errors.New("order number is already taken")
)

type OrderStatus int

const (
	Pending OrderStatus = iota
	Confirmed
	Preparing
	Ready
	Delivered
	Cancelled
)

func (s OrderStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Preparing:
		return "preparing"
	case Ready:
		return "ready"
	case Delivered:
		return "delivered"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

const (
	PaymentMethodCash    = "cash"
	PaymentStatusPending = "pending"
)

type Customer struct {
	Name            string
	Email           string
	Phone           string
	DeliveryAddress string
	Notes           string
}

// LineItem is a fulfilled product/quantity pair. UnitPriceCents is the
// product price at the moment stock was decremented and never follows
// later price changes.
type LineItem struct {
	ProductID      uuid.UUID
	ProductName    string
	Quantity       int
	UnitPriceCents int64
}

func (i LineItem) SubtotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

type Order struct {
	ID               uuid.UUID
	Number           string
	MerchantID       uuid.UUID
	Customer         Customer
	Items            []LineItem
	SubtotalCents    int64
	DeliveryFeeCents int64
	TotalCents       int64
	Status           OrderStatus
	PaymentMethod    string
	PaymentStatus    string
	CreatedAt        time.Time
}

// CalculateTotal folds line item subtotals into an order amount in cents.
func CalculateTotal(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.SubtotalCents()
	}
	return total
}

// AddLineCents adds the subtotal of item to total. It reports false when the
// subtotal or the sum does not fit in int64 cents.
func AddLineCents(total int64, item LineItem) (int64, bool) {
	if item.UnitPriceCents < 0 || item.Quantity < 0 {
		return total, false
	}
	if item.UnitPriceCents != 0 && int64(item.Quantity) > math.MaxInt64/item.UnitPriceCents {
		return total, false
	}
	subtotal := item.SubtotalCents()
	if total > math.MaxInt64-subtotal {
		return total, false
	}
	return total + subtotal, true
}

// OrderTooLargeError reports an order whose amount cannot be represented.
func OrderTooLargeError() *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: "line_items", Message: "order total is too large"}}}
}

func NewOrder(id uuid.UUID, number string, merchantID uuid.UUID, customer Customer, items []LineItem, now time.Time) *Order {
	subtotal := CalculateTotal(items)
	return &Order{
		ID:            id,
		Number:        number,
		MerchantID:    merchantID,
		Customer:      customer,
		Items:         items,
		SubtotalCents: subtotal,
		TotalCents:    subtotal,
		Status:        Pending,
		PaymentMethod: PaymentMethodCash,
		PaymentStatus: PaymentStatusPending,
		CreatedAt:     now,
	}
}

type OrderRepository interface {
	NextID() (uuid.UUID, error)
	// Create returns ErrDuplicateOrderNumber when the number is taken.
	Create(ctx context.Context, order *Order) error
	FindByNumber(ctx context.Context, merchantID uuid.UUID, number string) (*Order, error)
}
