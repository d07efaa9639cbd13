package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domain "github.com/Zhima-Mochi/gamestore/internal/domain/order"
)

var ErrDuplicateOrder = errors.New("order history: duplicate order id")

// OrderHistory is the append-only, in-memory record of paid orders.
type OrderHistory struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	seq    []string
}

func NewOrderHistory() *OrderHistory {
	return &OrderHistory{orders: make(map[string]*domain.Order)}
}

func (r *OrderHistory) Append(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == "" {
		return fmt.Errorf("order history: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateOrder, order.ID)
	}
	r.orders[order.ID] = order.Clone()
	r.seq = append(r.seq, order.ID)
	return nil
}

func (r *OrderHistory) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	return order.Clone(), nil
}

// List returns orders oldest first.
func (r *OrderHistory) List(ctx context.Context) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Order, 0, len(r.seq))
	for _, id := range r.seq {
		out = append(out, r.orders[id].Clone())
	}
	return out, nil
}

func (r *OrderHistory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.seq)
}
