package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"storefront/pkg/storefront/domain/model"
)

const productColumns = `id, merchant_id, name, price_cents, stock, active, version, created_at, updated_at`

type sqlxProduct struct {
	ID         uuid.UUID `db:"id"`
	MerchantID uuid.UUID `db:"merchant_id"`
	Name       string    `db:"name"`
	PriceCents int64     `db:"price_cents"`
	Stock      int       `db:"stock"`
	Active     bool      `db:"active"`
	Version    int       `db:"version"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (p sqlxProduct) toModel() model.Product {
	return model.Product{
		ID:         p.ID,
		MerchantID: p.MerchantID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Stock:      p.Stock,
		Active:     p.Active,
		Version:    p.Version,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func NewProductRepository(db sqlx.ExtContext) model.ProductRepository {
	return &productRepository{db: db}
}

type productRepository struct {
	db sqlx.ExtContext
}

func (r *productRepository) ListAvailable(ctx context.Context, merchantID uuid.UUID) ([]model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products
		WHERE merchant_id = ? AND active = 1 AND stock > 0
		ORDER BY name, id`

	var rows []sqlxProduct
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, merchantID); err != nil {
		return nil, errors.Wrapf(err, "list products of merchant %s", merchantID)
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toModel())
	}
	return products, nil
}

// DecrementStock relies on a single conditional UPDATE: InnoDB evaluates
// stock >= ? against the latest committed row under an exclusive row lock
// that is held until the surrounding transaction ends.
func (r *productRepository) DecrementStock(ctx context.Context, merchantID, productID uuid.UUID, quantity int) (*model.Product, error) {
	const decrement = `UPDATE products
		SET stock = stock - ?, version = version + 1, updated_at = ?
		WHERE id = ? AND merchant_id = ? AND active = 1 AND stock >= ?`

	if quantity < 1 {
		return nil, errors.Errorf("invalid quantity %d", quantity)
	}

	result, err := r.db.ExecContext(ctx, decrement, quantity, time.Now().UTC(), productID, merchantID, quantity)
	if err != nil {
		return nil, errors.Wrapf(err, "decrement stock of product %s", productID)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if affected == 0 {
		return nil, r.unavailableReason(ctx, merchantID, productID)
	}

	const query = `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	var row sqlxProduct
	if err := sqlx.GetContext(ctx, r.db, &row, query, productID); err != nil {
		return nil, errors.Wrapf(err, "reload product %s", productID)
	}
	product := row.toModel()
	return &product, nil
}

func (r *productRepository) unavailableReason(ctx context.Context, merchantID, productID uuid.UUID) error {
	const query = `SELECT stock FROM products WHERE id = ? AND merchant_id = ? AND active = 1`

	var stock int
	err := sqlx.GetContext(ctx, r.db, &stock, query, productID, merchantID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model.ErrProductNotFound
	case err != nil:
		return errors.Wrapf(err, "check stock of product %s", productID)
	default:
		return model.ErrInsufficientStock
	}
}
