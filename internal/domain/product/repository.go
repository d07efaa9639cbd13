package product

import "context"

// Catalog owns the store's products for the lifetime of the process.
type Catalog interface {
	List(ctx context.Context) ([]*Product, error)
	ListByCategory(ctx context.Context, c Category) ([]*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
}
