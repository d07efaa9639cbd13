package notification

import "time"

// Notification is a customer-facing message derived from a domain event.
type Notification struct {
	ID        string
	Event     string
	OrderID   string
	Customer  string
	Message   string
	CreatedAt time.Time
}

// Inbox keeps the most recent notifications, newest last.
type Inbox interface {
	Push(n Notification)
	// List returns notifications for customer, or all of them when customer is empty.
	List(customer string) []Notification
}
