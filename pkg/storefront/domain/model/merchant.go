package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMerchantNotFound  = errors.New("merchant not found")
	ErrOrdersNotAccepted = errors.New("merchant is not accepting orders")
)

// Merchant is a storefront tenant addressed by its public slug.
type Merchant struct {
	ID           uuid.UUID
	Slug         string
	Name         string
	Active       bool
	AcceptOrders bool
	CreatedAt    time.Time
}

type MerchantRepository interface {
	// FindBySlug returns ErrMerchantNotFound when no merchant has the slug.
	FindBySlug(ctx context.Context, slug string) (*Merchant, error)
}
