package order

import (
	"time"

	"github.com/google/uuid"
)

// PaidEvent is emitted after a successful charge, once the order is in history.
type PaidEvent struct {
	EventID       string
	OrderID       string
	Customer      string
	PaymentMethod string
	TransactionID string
	Total         string
	Units         int
	OccurredAt    time.Time
}

func (PaidEvent) EventName() string { return "order.paid" }
func (e PaidEvent) ID() string      { return e.EventID }

func NewPaidEvent(o *Order, currency string) PaidEvent {
	return PaidEvent{
		EventID:       uuid.NewString(),
		OrderID:       o.ID,
		Customer:      o.Customer,
		PaymentMethod: o.PaymentMethod,
		TransactionID: o.TransactionID,
		Total:         o.Total().StringFixed(2) + " " + currency,
		Units:         o.Units(),
		OccurredAt:    o.UpdatedAt,
	}
}

// PaymentDeclinedEvent is emitted when a provider rejects the charge. The order is discarded.
type PaymentDeclinedEvent struct {
	EventID       string
	OrderID       string
	Customer      string
	PaymentMethod string
	Reason        string
	OccurredAt    time.Time
}

func (PaymentDeclinedEvent) EventName() string { return "order.payment_declined" }
func (e PaymentDeclinedEvent) ID() string      { return e.EventID }

func NewPaymentDeclinedEvent(o *Order, method, reason string) PaymentDeclinedEvent {
	return PaymentDeclinedEvent{
		EventID:       uuid.NewString(),
		OrderID:       o.ID,
		Customer:      o.Customer,
		PaymentMethod: method,
		Reason:        reason,
		OccurredAt:    o.UpdatedAt,
	}
}
