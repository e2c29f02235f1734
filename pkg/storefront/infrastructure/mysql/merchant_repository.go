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

type sqlxMerchant struct {
	ID           uuid.UUID `db:"id"`
	Slug         string    `db:"slug"`
	Name         string    `db:"name"`
	Active       bool      `db:"active"`
	AcceptOrders bool      `db:"accept_orders"`
	CreatedAt    time.Time `db:"created_at"`
}

func NewMerchantRepository(db sqlx.QueryerContext) model.MerchantRepository {
	return &merchantRepository{db: db}
}

type merchantRepository struct {
	db sqlx.QueryerContext
}

func (r *merchantRepository) FindBySlug(ctx context.Context, slug string) (*model.Merchant, error) {
	const query = `SELECT id, slug, name, active, accept_orders, created_at FROM merchants WHERE slug = ?`

	var row sqlxMerchant
	if err := sqlx.GetContext(ctx, r.db, &row, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrMerchantNotFound
		}
		return nil, errors.Wrapf(err, "find merchant %q", slug)
	}

	return &model.Merchant{
		ID:           row.ID,
		Slug:         row.Slug,
		Name:         row.Name,
		Active:       row.Active,
		AcceptOrders: row.AcceptOrders,
		CreatedAt:    row.CreatedAt,
	}, nil
}
