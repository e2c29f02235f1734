package mysql

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/model"
)

func NewUnitOfWork(db *sqlx.DB, logger log.FieldLogger) model.UnitOfWork {
	return &unitOfWork{db: db, logger: logger}
}

type unitOfWork struct {
	db     *sqlx.DB
	logger log.FieldLogger
}

func (u *unitOfWork) Execute(ctx context.Context, fn func(provider model.RepositoryProvider) error) (err error) {
	tx, err := u.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			u.rollback(tx)
			panic(p)
		}
	}()

	if err = fn(&repositoryProvider{tx: tx}); err != nil {
		u.rollback(tx)
		return err
	}

	return errors.Wrap(tx.Commit(), "commit transaction")
}

func (u *unitOfWork) rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		u.logger.WithError(err).Error("failed to rollback transaction")
	}
}

type repositoryProvider struct {
	tx *sqlx.Tx
}

func (p *repositoryProvider) ProductRepository() model.ProductRepository {
	return NewProductRepository(p.tx)
}

func (p *repositoryProvider) OrderRepository() model.OrderRepository {
	return NewOrderRepository(p.tx)
}

func (p *repositoryProvider) InventoryMovementRepository() model.InventoryMovementRepository {
	return NewInventoryMovementRepository(p.tx)
}
