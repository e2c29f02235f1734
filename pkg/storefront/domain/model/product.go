package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock quantity")
)

type Product struct {
	ID         uuid.UUID
	MerchantID uuid.UUID
	Name       string
	PriceCents int64
	Stock      int
	Active     bool
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p Product) Available() bool {
	return p.Active && p.Stock > 0
}

type ProductRepository interface {
	// ListAvailable returns active products of the merchant with stock > 0.
	ListAvailable(ctx context.Context, merchantID uuid.UUID) ([]Product, error)

	// DecrementStock atomically checks that the active product owned by
	// merchantID has at least quantity units and subtracts them. It returns
	// the product as it is after the decrement, ErrProductNotFound when the
	// product is missing, inactive or owned by another merchant, and
	// ErrInsufficientStock when stock < quantity. Stock is left untouched on
	// both errors.
	DecrementStock(ctx context.Context, merchantID, productID uuid.UUID, quantity int) (*Product, error)
}
