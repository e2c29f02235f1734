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

type sqlxOrder struct {
	ID               uuid.UUID `db:"id"`
	Number           string    `db:"order_number"`
	MerchantID       uuid.UUID `db:"merchant_id"`
	CustomerName     string    `db:"customer_name"`
	CustomerEmail    string    `db:"customer_email"`
	CustomerPhone    string    `db:"customer_phone"`
	DeliveryAddress  string    `db:"delivery_address"`
	Notes            string    `db:"notes"`
	SubtotalCents    int64     `db:"subtotal_cents"`
	DeliveryFeeCents int64     `db:"delivery_fee_cents"`
	TotalCents       int64     `db:"total_cents"`
	Status           int       `db:"status"`
	PaymentMethod    string    `db:"payment_method"`
	PaymentStatus    string    `db:"payment_status"`
	CreatedAt        time.Time `db:"created_at"`
}

type sqlxOrderItem struct {
	ProductID      uuid.UUID `db:"product_id"`
	ProductName    string    `db:"product_name"`
	Quantity       int       `db:"quantity"`
	UnitPriceCents int64     `db:"unit_price_cents"`
}

func NewOrderRepository(db sqlx.ExtContext) model.OrderRepository {
	return &orderRepository{db: db}
}

type orderRepository struct {
	db sqlx.ExtContext
}

func (r *orderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const insertOrder = `INSERT INTO orders (
			id, order_number, merchant_id, customer_name, customer_email, customer_phone,
			delivery_address, notes, subtotal_cents, delivery_fee_cents, total_cents,
			status, payment_method, payment_status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	const insertItem = `INSERT INTO order_items (
			order_id, position, product_id, product_name, quantity, unit_price_cents
		) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, insertOrder,
		order.ID, order.Number, order.MerchantID,
		order.Customer.Name, order.Customer.Email, order.Customer.Phone,
		order.Customer.DeliveryAddress, order.Customer.Notes,
		order.SubtotalCents, order.DeliveryFeeCents, order.TotalCents,
		int(order.Status), order.PaymentMethod, order.PaymentStatus, order.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return model.ErrDuplicateOrderNumber
		}
		return errors.Wrapf(err, "insert order %s", order.Number)
	}

	for i, item := range order.Items {
		_, err := r.db.ExecContext(ctx, insertItem,
			order.ID, i, item.ProductID, item.ProductName, item.Quantity, item.UnitPriceCents,
		)
		if err != nil {
			return errors.Wrapf(err, "insert item %d of order %s", i, order.Number)
		}
	}
	return nil
}

func (r *orderRepository) FindByNumber(ctx context.Context, merchantID uuid.UUID, number string) (*model.Order, error) {
	const selectOrder = `SELECT id, order_number, merchant_id, customer_name, customer_email, customer_phone,
			delivery_address, notes, subtotal_cents, delivery_fee_cents, total_cents,
			status, payment_method, payment_status, created_at
		FROM orders WHERE order_number = ? AND merchant_id = ?`
	const selectItems = `SELECT product_id, product_name, quantity, unit_price_cents
		FROM order_items WHERE order_id = ? ORDER BY position`

	var row sqlxOrder
	if err := sqlx.GetContext(ctx, r.db, &row, selectOrder, number, merchantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, errors.Wrapf(err, "find order %s", number)
	}

	var itemRows []sqlxOrderItem
	if err := sqlx.SelectContext(ctx, r.db, &itemRows, selectItems, row.ID); err != nil {
		return nil, errors.Wrapf(err, "find items of order %s", number)
	}

	items := make([]model.LineItem, 0, len(itemRows))
	for _, item := range itemRows {
		items = append(items, model.LineItem{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	return &model.Order{
		ID:         row.ID,
		Number:     row.Number,
		MerchantID: row.MerchantID,
		Customer: model.Customer{
			Name:            row.CustomerName,
			Email:           row.CustomerEmail,
			Phone:           row.CustomerPhone,
			DeliveryAddress: row.DeliveryAddress,
			Notes:           row.Notes,
		},
		Items:            items,
		SubtotalCents:    row.SubtotalCents,
		DeliveryFeeCents: row.DeliveryFeeCents,
		TotalCents:       row.TotalCents,
		Status:           model.OrderStatus(row.Status),
		PaymentMethod:    row.PaymentMethod,
		PaymentStatus:    row.PaymentStatus,
		CreatedAt:        row.CreatedAt,
	}, nil
}
