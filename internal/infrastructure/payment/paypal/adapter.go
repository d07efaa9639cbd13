package paypal

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/provider"
	"github.com/shopspring/decimal"
)

const Name = "PayPal"

// USDRate is the fixed number of home-currency units per US dollar.
var USDRate = decimal.RequireFromString("3.75")

// Adapter translates orders into PayPal's create-then-capture flow.
type Adapter struct {
	client Client
	guard  *provider.Guard
}

func NewAdapter(client Client, guard *provider.Guard) *Adapter {
	return &Adapter{client: client, guard: guard}
}

func (a *Adapter) Name() string { return Name }

// ToUSD converts a home-currency amount at the fixed rate, rounded to cents.
func ToUSD(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(USDRate).Round(2)
}

// Charge reports the amount in the home currency; USD appears only in the message.
func (a *Adapter) Charge(ctx context.Context, o *order.Order, currency string) (payment.Result, error) {
	if o == nil {
		return payment.Result{}, payment.ErrNoOrder
	}
	total := o.Total()
	usd := ToUSD(total)
	res := payment.Result{
		AmountCharged: total,
		Currency:      currency,
		Provider:      Name,
	}

	created, err := provider.Call(ctx, a.guard, "create_order", func(ctx context.Context) (Order, error) {
		return a.client.CreateOrder(ctx, CreateOrderRequest{
			AmountUSD:   usd,
			Description: "GameStore - Order " + o.ID,
		})
	})
	if err != nil {
		res.Message = fmt.Sprintf("PayPal could not create the order: %v", err)
		return res, nil
	}

	capture, err := provider.Call(ctx, a.guard, "capture_order", func(ctx context.Context) (Capture, error) {
		return a.client.CaptureOrder(ctx, created.OrderID)
	})
	if err != nil {
		res.Message = fmt.Sprintf("PayPal could not capture order %s: %v", created.OrderID, err)
		return res, nil
	}

	res.TransactionID = capture.CaptureID
	if capture.Status != StatusCompleted {
		res.Message = fmt.Sprintf("PayPal capture %s finished as %s", capture.CaptureID, capture.Status)
		return res, nil
	}
	res.Succeeded = true
	res.Message = fmt.Sprintf("PayPal payment approved ($%s USD ~ %s %s)", usd.StringFixed(2), currency, total.StringFixed(2))
	return res, nil
}

func (a *Adapter) Verify(ctx context.Context, transactionID string) (payment.Verification, error) {
	orderID := strings.TrimPrefix(transactionID, captureIDPrefix)
	details, err := provider.Call(ctx, a.guard, "get_order_details", func(ctx context.Context) (Order, error) {
		return a.client.GetOrderDetails(ctx, orderID)
	})
	if err != nil {
		return payment.Verification{}, fmt.Errorf("paypal verify %s: %w", transactionID, err)
	}
	return payment.Verification{
		TransactionID: transactionID,
		Status:        verificationStatus(details.Status),
		Provider:      Name,
	}, nil
}

func verificationStatus(status string) payment.VerificationStatus {
	switch status {
	case StatusCompleted:
		return payment.VerificationApproved
	case StatusCreated, StatusApproved, StatusPayerActionRequired:
		return payment.VerificationPending
	default:
		return payment.VerificationFailed
	}
}
