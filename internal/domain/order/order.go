package order

import (
	"errors"
	"strings"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrNoProduct       = errors.New("order line requires a product")
	ErrNoLines         = errors.New("order requires at least one line")
	ErrNoCustomer      = errors.New("order requires a customer")
	ErrNoTransaction   = errors.New("paid order requires a payment method and transaction id")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Line is one product purchase. UnitPrice is frozen when the line is created.
type Line struct {
	Product   *product.Product
	Quantity  int
	UnitPrice decimal.Decimal
}

// NewLine captures the product's current price.
func NewLine(p *product.Product, quantity int) (Line, error) {
	if p == nil {
		return Line{}, ErrNoProduct
	}
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	return Line{Product: p, Quantity: quantity, UnitPrice: p.Price()}, nil
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID            string
	Customer      string
	Lines         []Line
	Status        Status
	PaymentMethod string
	TransactionID string
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	state OrderState
}

// New snapshots lines into a PENDING order. The caller's slice is copied.
func New(id, customer string, lines []Line, now time.Time) (*Order, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return nil, ErrNoCustomer
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	snapshot := make([]Line, len(lines))
	for i, l := range lines {
		if l.Product == nil {
			return nil, ErrNoProduct
		}
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		snapshot[i] = l
	}

	now = now.UTC()
	o := &Order{
		ID:        id,
		Customer:  customer,
		Lines:     snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.setState(pendingState{})
	return o, nil
}

func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Units is the number of items across all lines.
func (o *Order) Units() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// MarkPaid stamps the payment details exactly once.
func (o *Order) MarkPaid(method, transactionID string, now time.Time) error {
	if method == "" || transactionID == "" {
		return ErrNoTransaction
	}
	next, err := o.currentState().OnPaid(o, method, transactionID)
	if err != nil {
		return err
	}
	o.setState(next)
	o.touch(now)
	return nil
}

func (o *Order) Cancel(reason string, now time.Time) error {
	next, err := o.currentState().OnCancelled(o, reason)
	if err != nil {
		return err
	}
	o.setState(next)
	o.touch(now)
	return nil
}

// Clone copies the order and its lines. Products stay shared.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Lines = append([]Line(nil), o.Lines...)
	return &cp
}

func (o *Order) currentState() OrderState {
	if o.state != nil && o.state.Status() == o.Status {
		return o.state
	}
	return stateFromStatus(o.Status)
}

func (o *Order) setState(s OrderState) {
	o.state = s
	o.Status = s.Status()
}

func (o *Order) touch(now time.Time) {
	o.UpdatedAt = now.UTC()
}
