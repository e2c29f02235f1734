package model

import "context"

type RepositoryProvider interface {
	ProductRepository() ProductRepository
	OrderRepository() OrderRepository
	InventoryMovementRepository() InventoryMovementRepository
}

// UnitOfWork runs fn inside a single storage transaction. Everything written
// through the provider commits when fn returns nil and is rolled back
// otherwise.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(provider RepositoryProvider) error) error
}
