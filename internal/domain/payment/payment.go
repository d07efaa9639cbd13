package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownMethod        = errors.New("unknown payment method")
	ErrNoOrder              = errors.New("payment requires an order")
	ErrMalformedTransaction = errors.New("malformed transaction id")
	ErrProviderUnavailable  = errors.New("payment provider unavailable")
)

// Method is the closed set of supported payment providers.
type Method string

const (
	MethodPayPal Method = "PAYPAL"
	MethodCulqi  Method = "CULQI"
	MethodYape   Method = "YAPE"
)

func Methods() []Method {
	return []Method{MethodPayPal, MethodCulqi, MethodYape}
}

// ParseMethod matches tag case-insensitively against the known methods.
func ParseMethod(tag string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(tag)))
	switch m {
	case MethodPayPal, MethodCulqi, MethodYape:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (options: PAYPAL, CULQI, YAPE)", ErrUnknownMethod, tag)
}

func (m Method) String() string { return string(m) }

// Result is the provider-independent outcome of a charge. AmountCharged is always
// expressed in the store's home currency.
type Result struct {
	Succeeded     bool
	TransactionID string
	AmountCharged decimal.Decimal
	Currency      string
	Message       string
	Provider      string
}

type VerificationStatus string

const (
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationPending  VerificationStatus = "PENDING"
	VerificationFailed   VerificationStatus = "FAILED"
)

type Verification struct {
	TransactionID string
	Status        VerificationStatus
	Provider      string
}

// Gateway is the uniform contract every provider adapter implements.
type Gateway interface {
	Charge(ctx context.Context, o *order.Order, currency string) (Result, error)
	Verify(ctx context.Context, transactionID string) (Verification, error)
	Name() string
}
