package notification

import "sync"

const maxTrackedOrders = 1024

// customerIndex remembers recent order owners in insertion order.
type customerIndex struct {
	mu    sync.Mutex
	byID  map[string]string
	order []string
}

func newCustomerIndex() *customerIndex {
	return &customerIndex{byID: make(map[string]string)}
}

func (c *customerIndex) put(orderID, customer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[orderID]; !ok {
		c.order = append(c.order, orderID)
	}
	c.byID[orderID] = customer
	for len(c.order) > maxTrackedOrders {
		delete(c.byID, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *customerIndex) get(orderID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byID[orderID]
}
