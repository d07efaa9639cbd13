package fulfillment

import (
	"time"

	"github.com/google/uuid"
)

// DeliveredEvent reports the fulfillment of one order line.
type DeliveredEvent struct {
	EventID    string
	Delivery   Delivery
	Failed     bool
	Reason     string
	OccurredAt time.Time
}

func (DeliveredEvent) EventName() string { return "fulfillment.delivered" }
func (e DeliveredEvent) ID() string      { return e.EventID }

func NewDeliveredEvent(d Delivery, err error, at time.Time) DeliveredEvent {
	ev := DeliveredEvent{
		EventID:    uuid.NewString(),
		Delivery:   d,
		OccurredAt: at,
	}
	if err != nil {
		ev.Failed = true
		ev.Reason = err.Error()
	}
	return ev
}
