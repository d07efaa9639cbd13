package memory

import (
	"strings"
	"sync"

	"github.com/Zhima-Mochi/gamestore/internal/domain/notification"
)

const defaultInboxCapacity = 200

// NotificationInbox is a bounded in-memory inbox. The oldest entries are evicted first.
type NotificationInbox struct {
	mu       sync.RWMutex
	items    []notification.Notification
	capacity int
}

func NewNotificationInbox(capacity int) *NotificationInbox {
	if capacity <= 0 {
		capacity = defaultInboxCapacity
	}
	return &NotificationInbox{capacity: capacity}
}

func (in *NotificationInbox) Push(n notification.Notification) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.items = append(in.items, n)
	if over := len(in.items) - in.capacity; over > 0 {
		in.items = append([]notification.Notification(nil), in.items[over:]...)
	}
}

func (in *NotificationInbox) List(customer string) []notification.Notification {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]notification.Notification, 0, len(in.items))
	for _, n := range in.items {
		if customer != "" && !strings.EqualFold(n.Customer, customer) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (in *NotificationInbox) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.items)
}
