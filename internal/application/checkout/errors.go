package checkout

import (
	"errors"

	appcart "github.com/Zhima-Mochi/gamestore/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/gamestore/internal/application/catalog"
	apppayment "github.com/Zhima-Mochi/gamestore/internal/application/payment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/fulfillment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/config"
)

var (
	ErrEmptyCart         = errors.New("the cart is empty")
	ErrNoCustomer        = errors.New("no customer is set for this session")
	ErrMethodUnavailable = errors.New("payment method is not available in this store")
	ErrPaymentDeclined   = errors.New("the payment could not be processed, try another method")
)

// Kind groups errors by how a caller should react to them.
type Kind string

const (
	KindValidation      Kind = "ValidationError"
	KindLookup          Kind = "LookupError"
	KindPaymentDeclined Kind = "PaymentDeclined"
	KindPrecondition    Kind = "PreconditionError"
	KindUnavailable     Kind = "ProviderUnavailable"
	KindInternal        Kind = "Internal"
)

// Classify maps any error returned by the store's use cases onto a Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPaymentDeclined):
		return KindPaymentDeclined
	case errors.Is(err, payment.ErrProviderUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrNoCustomer),
		errors.Is(err, ErrMethodUnavailable),
		errors.Is(err, order.ErrNoCustomer),
		errors.Is(err, order.ErrNoLines):
		return KindPrecondition
	case errors.Is(err, config.ErrInvalidValue):
		// Checked ahead of lookups since it may wrap an unknown category or method tag.
		return KindValidation
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrUnknownCategory),
		errors.Is(err, payment.ErrUnknownMethod),
		errors.Is(err, config.ErrUnknownKey):
		return KindLookup
	case errors.Is(err, fulfillment.ErrOutOfStock),
		errors.Is(err, fulfillment.ErrInsufficientStock),
		errors.Is(err, fulfillment.ErrInvalidQuantity),
		errors.Is(err, fulfillment.ErrQuantityLimitExceeded),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, appcart.ErrCategoryUnavailable),
		errors.Is(err, appcart.ErrNoCart),
		errors.Is(err, appcatalog.ErrNothingToUpdate),
		errors.Is(err, apppayment.ErrNoTransaction),
		errors.Is(err, payment.ErrMalformedTransaction),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidAmount):
		return KindValidation
	default:
		return KindInternal
	}
}
