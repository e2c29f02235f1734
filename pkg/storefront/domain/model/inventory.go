package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementOut MovementType = "out"
)

const ReferenceOrder = "order"

// InventoryMovement records one stock change. StockBefore - Quantity equals
// StockAfter for outgoing movements.
type InventoryMovement struct {
	ID            uuid.UUID
	MerchantID    uuid.UUID
	ProductID     uuid.UUID
	Type          MovementType
	ReferenceType string
	ReferenceID   uuid.UUID
	Quantity      int
	StockBefore   int
	StockAfter    int
	CreatedAt     time.Time
}

// NewOrderMovement builds the outgoing movement for a fulfilled order line
// from the product as it is after the decrement.
func NewOrderMovement(id, orderID uuid.UUID, product *Product, quantity int, now time.Time) InventoryMovement {
	return InventoryMovement{
		ID:            id,
		MerchantID:    product.MerchantID,
		ProductID:     product.ID,
		Type:          MovementOut,
		ReferenceType: ReferenceOrder,
		ReferenceID:   orderID,
		Quantity:      quantity,
		StockBefore:   product.Stock + quantity,
		StockAfter:    product.Stock,
		CreatedAt:     now,
	}
}

type InventoryMovementRepository interface {
	NextID() (uuid.UUID, error)
	Record(ctx context.Context, movement InventoryMovement) error
}
