package order

import "errors"

var ErrInvalidStateTransition = errors.New("order: invalid state transition")

// OrderState implements the state pattern for order lifecycle transitions.
type OrderState interface {
	Status() Status
	OnPaid(o *Order, method, transactionID string) (OrderState, error)
	OnCancelled(o *Order, reason string) (OrderState, error)
}

func stateFromStatus(s Status) OrderState {
	switch s {
	case StatusPaid:
		return paidState{}
	case StatusCancelled:
		return cancelledState{}
	default:
		return pendingState{}
	}
}

type pendingState struct{}

func (pendingState) Status() Status { return StatusPending }

func (pendingState) OnPaid(o *Order, method, transactionID string) (OrderState, error) {
	o.PaymentMethod = method
	o.TransactionID = transactionID
	o.FailureReason = ""
	return paidState{}, nil
}

func (pendingState) OnCancelled(o *Order, reason string) (OrderState, error) {
	o.FailureReason = reason
	return cancelledState{}, nil
}

// Paid and cancelled are terminal.

type paidState struct{}

func (paidState) Status() Status { return StatusPaid }

func (paidState) OnPaid(*Order, string, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (paidState) OnCancelled(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

type cancelledState struct{}

func (cancelledState) Status() Status { return StatusCancelled }

func (cancelledState) OnPaid(*Order, string, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (cancelledState) OnCancelled(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}
