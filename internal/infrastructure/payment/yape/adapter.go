package yape

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/provider"
	"github.com/cespare/xxhash/v2"
)

const (
	Name                = "Yape"
	transactionIDPrefix = "YAPE-"
	phoneBase           = 900000000
	phoneSpan           = 100000000
)

var ErrMalformedTransactionID = fmt.Errorf("yape: %w", payment.ErrMalformedTransaction)

// Adapter translates orders into Yape direct payments.
type Adapter struct {
	client Client
	guard  *provider.Guard
}

func NewAdapter(client Client, guard *provider.Guard) *Adapter {
	return &Adapter{client: client, guard: guard}
}

func (a *Adapter) Name() string { return Name }

// SyntheticPhone derives a stable 9-digit mobile number starting with 9 from the
// customer name. No real phone number is collected.
func SyntheticPhone(customer string) string {
	n := phoneBase + xxhash.Sum64String(customer)%phoneSpan
	return strconv.FormatUint(n, 10)
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

	op, err := provider.Call(ctx, a.guard, "iniciar_pago", func(ctx context.Context) (Operacion, error) {
		return a.client.IniciarPago(ctx, PagoRequest{
			Numero:   SyntheticPhone(o.Customer),
			Monto:    total,
			Concepto: "Order " + o.ID,
		})
	})
	if err != nil {
		res.Message = fmt.Sprintf("Yape could not start the payment: %v", err)
		return res, nil
	}

	res.TransactionID = transactionIDPrefix + strconv.Itoa(op.CodigoOperacion)
	if !op.Aprobado {
		res.Message = fmt.Sprintf("Yape operation %d was not approved", op.CodigoOperacion)
		return res, nil
	}
	res.Succeeded = true
	res.Message = fmt.Sprintf("Yape approved - operation code: %d", op.CodigoOperacion)
	return res, nil
}

func (a *Adapter) Verify(ctx context.Context, transactionID string) (payment.Verification, error) {
	codigo, err := strconv.Atoi(strings.TrimPrefix(transactionID, transactionIDPrefix))
	if err != nil {
		return payment.Verification{}, fmt.Errorf("%w: %q", ErrMalformedTransactionID, transactionID)
	}
	op, err := provider.Call(ctx, a.guard, "consultar_operacion", func(ctx context.Context) (Operacion, error) {
		return a.client.ConsultarOperacion(ctx, codigo)
	})
	if err != nil {
		return payment.Verification{}, fmt.Errorf("yape verify %s: %w", transactionID, err)
	}
	return payment.Verification{
		TransactionID: transactionID,
		Status:        verificationStatus(op),
		Provider:      Name,
	}, nil
}

func verificationStatus(op Operacion) payment.VerificationStatus {
	switch {
	case op.Aprobado:
		return payment.VerificationApproved
	case op.Estado == EstadoEnProceso:
		return payment.VerificationPending
	default:
		return payment.VerificationFailed
	}
}
