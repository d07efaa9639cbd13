package paypal

import (
	"context"
	"errors"
	"sync"

	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/provider"
	"github.com/shopspring/decimal"
)

// PayPal order and capture statuses.
const (
	StatusCreated             = "CREATED"
	StatusApproved            = "APPROVED"
	StatusPayerActionRequired = "PAYER_ACTION_REQUIRED"
	StatusCompleted           = "COMPLETED"
	StatusDeclined            = "DECLINED"
	StatusVoided              = "VOIDED"
)

const (
	captureIDPrefix = "CAP-"
	orderIDPrefix   = "PP-"
	orderIDDigits   = 10
)

var ErrOrderNotFound = errors.New("paypal: order not found")

type CreateOrderRequest struct {
	AmountUSD   decimal.Decimal
	Description string
}

type Order struct {
	OrderID   string
	Status    string
	AmountUSD decimal.Decimal
	Currency  string
}

type Capture struct {
	CaptureID string
	Status    string
	OrderID   string
}

// Client is the subset of the PayPal orders API the adapter needs. It works in USD only.
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error)
	CaptureOrder(ctx context.Context, orderID string) (Capture, error)
	GetOrderDetails(ctx context.Context, orderID string) (Order, error)
}

// Sandbox is an in-process PayPal that remembers the orders it created.
type Sandbox struct {
	mu       sync.Mutex
	approver *provider.Approver
	orders   map[string]Order
	outage   error
}

func NewSandbox(approvalRate float64) *Sandbox {
	return &Sandbox{
		approver: provider.NewApprover(approvalRate),
		orders:   make(map[string]Order),
	}
}

// SetApprovalRate changes how often captures complete.
func (s *Sandbox) SetApprovalRate(rate float64) { s.approver.SetRate(rate) }

// SetOutage makes every call fail with err until cleared with nil.
func (s *Sandbox) SetOutage(err error) {
	s.mu.Lock()
	s.outage = err
	s.mu.Unlock()
}

// SetStatus overrides the stored status of an order.
func (s *Sandbox) SetStatus(orderID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[orderID]; ok {
		o.Status = status
		s.orders[orderID] = o
	}
}

func (s *Sandbox) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	if err := s.check(ctx); err != nil {
		return Order{}, err
	}
	o := Order{
		OrderID:   orderIDPrefix + s.approver.Digits(orderIDDigits),
		Status:    StatusCreated,
		AmountUSD: req.AmountUSD,
		Currency:  "USD",
	}
	s.mu.Lock()
	s.orders[o.OrderID] = o
	s.mu.Unlock()
	return o, nil
}

func (s *Sandbox) CaptureOrder(ctx context.Context, orderID string) (Capture, error) {
	if err := s.check(ctx); err != nil {
		return Capture{}, err
	}
	status := StatusDeclined
	if s.approver.Approve() {
		status = StatusCompleted
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return Capture{}, ErrOrderNotFound
	}
	o.Status = status
	s.orders[orderID] = o
	return Capture{CaptureID: captureIDPrefix + orderID, Status: status, OrderID: orderID}, nil
}

// GetOrderDetails reports unknown orders with an empty status.
func (s *Sandbox) GetOrderDetails(ctx context.Context, orderID string) (Order, error) {
	if err := s.check(ctx); err != nil {
		return Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return Order{OrderID: orderID}, nil
	}
	return o, nil
}

func (s *Sandbox) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outage
}
