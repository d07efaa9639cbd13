package culqi

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/provider"
	"github.com/shopspring/decimal"
)

const (
	Name        = "Culqi"
	emailDomain = "@email.com"
)

var hundred = decimal.NewFromInt(100)

// Adapter translates orders into Culqi charges.
type Adapter struct {
	client Client
	guard  *provider.Guard
}

func NewAdapter(client Client, guard *provider.Guard) *Adapter {
	return &Adapter{client: client, guard: guard}
}

func (a *Adapter) Name() string { return Name }

// ToCentimos converts to minor units, truncating fractions of a céntimo.
func ToCentimos(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Truncate(0).IntPart()
}

// CustomerEmail derives the address Culqi requires from the customer name.
func CustomerEmail(customer string) string {
	return strings.ToLower(strings.ReplaceAll(customer, " ", ".")) + emailDomain
}

func (a *Adapter) Charge(ctx context.Context, o *order.Order, currency string) (payment.Result, error) {
	if o == nil {
		return payment.Result{}, payment.ErrNoOrder
	}
	total := o.Total()
	res := payment.Result{
		AmountCharged: total,
		Currency:      currency,
		Provider:      Name,
	}

	cargo, err := provider.Call(ctx, a.guard, "crear_cargo", func(ctx context.Context) (Cargo, error) {
		return a.client.CrearCargo(ctx, CargoRequest{
			MontoCentimos: ToCentimos(total),
			Concepto:      "Order " + o.ID + " - GameStore",
			Email:         CustomerEmail(o.Customer),
		})
	})
	if err != nil {
		res.Message = fmt.Sprintf("Culqi could not create the charge: %v", err)
		return res, nil
	}

	res.TransactionID = cargo.CargoID
	if cargo.Estado != EstadoExitoso {
		res.Message = fmt.Sprintf("Culqi charge %s was %s", cargo.CargoID, cargo.Estado)
		return res, nil
	}
	res.Succeeded = true
	res.Message = fmt.Sprintf("Culqi payment approved - %s %s", currency, total.StringFixed(2))
	return res, nil
}

func (a *Adapter) Verify(ctx context.Context, transactionID string) (payment.Verification, error) {
	cargo, err := provider.Call(ctx, a.guard, "consultar_cargo", func(ctx context.Context) (Cargo, error) {
		return a.client.ConsultarCargo(ctx, transactionID)
	})
	if err != nil {
		return payment.Verification{}, fmt.Errorf("culqi verify %s: %w", transactionID, err)
	}
	return payment.Verification{
		TransactionID: transactionID,
		Status:        verificationStatus(cargo.Estado),
		Provider:      Name,
	}, nil
}

func verificationStatus(estado string) payment.VerificationStatus {
	switch estado {
	case EstadoExitoso:
		return payment.VerificationApproved
	case EstadoPendiente:
		return payment.VerificationPending
	default:
		return payment.VerificationFailed
	}
}
