package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/Zhima-Mochi/gamestore/internal/application"
	dompay "github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	paymentService = "payment-service"
	useCaseVerify  = "payment.verify"
)

var ErrNoTransaction = errors.New("transaction id is required")

// Gateways resolves the adapter for a payment method.
type Gateways interface {
	Resolve(m dompay.Method) (dompay.Gateway, error)
}

type VerifyPaymentInput struct {
	Method        string
	TransactionID string
}

// VerifyPaymentUseCase asks a provider for the current status of a past charge.
type VerifyPaymentUseCase struct {
	gateways Gateways
	obs      application.Instrumentation
}

func NewVerifyPaymentUseCase(gateways Gateways, tel observability.Observability) *VerifyPaymentUseCase {
	return &VerifyPaymentUseCase{gateways: gateways, obs: application.NewInstrumentation(paymentService, tel)}
}

func (uc *VerifyPaymentUseCase) Execute(ctx context.Context, cmd VerifyPaymentInput) (_ *dompay.Verification, err error) {
	ctx, run := uc.obs.Begin(ctx, useCaseVerify, "VerifyPayment",
		attribute.String("payment.method", cmd.Method),
		attribute.String("payment.transaction_id", cmd.TransactionID),
	)
	defer func() { run.End(err) }()

	txID := strings.TrimSpace(cmd.TransactionID)
	if txID == "" {
		run.Reject("NO_TRANSACTION_ID")
		return nil, ErrNoTransaction
	}
	method, err := dompay.ParseMethod(cmd.Method)
	if err != nil {
		run.Reject("UNKNOWN_METHOD")
		return nil, err
	}
	gateway, err := uc.gateways.Resolve(method)
	if err != nil {
		run.Fail("ADAPTER_LOOKUP_FAILED")
		return nil, err
	}

	v, err := gateway.Verify(ctx, txID)
	if err != nil {
		run.Fail("VERIFY_FAILED")
		return nil, err
	}
	run.With(
		observability.F("provider", v.Provider),
		observability.F("verification", string(v.Status)),
	)
	return &v, nil
}
