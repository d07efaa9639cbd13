package order

import "context"

// History is the append-only record of paid orders.
type History interface {
	Append(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
}

// IDGenerator hands out monotonic order identifiers that are never reused.
type IDGenerator interface {
	NextOrderID() string
}
