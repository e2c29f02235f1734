package mysql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"storefront/pkg/storefront/domain/model"
)

func NewInventoryMovementRepository(db sqlx.ExtContext) model.InventoryMovementRepository {
	return &inventoryMovementRepository{db: db}
}

type inventoryMovementRepository struct {
	db sqlx.ExtContext
}

func (r *inventoryMovementRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *inventoryMovementRepository) Record(ctx context.Context, movement model.InventoryMovement) error {
	const insert = `INSERT INTO inventory_movements (
			id, merchant_id, product_id, movement_type, reference_type, reference_id,
			quantity, stock_before, stock_after, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, insert,
		movement.ID, movement.MerchantID, movement.ProductID,
		string(movement.Type), movement.ReferenceType, movement.ReferenceID,
		movement.Quantity, movement.StockBefore, movement.StockAfter, movement.CreatedAt,
	)
	return errors.Wrapf(err, "record %s movement of product %s", movement.Type, movement.ProductID)
}
