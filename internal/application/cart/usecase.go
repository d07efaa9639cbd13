package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/gamestore/internal/application"
	domcart "github.com/Zhima-Mochi/gamestore/internal/domain/cart"
	"github.com/Zhima-Mochi/gamestore/internal/domain/fulfillment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	cartService = "cart-service"
	useCaseAdd  = "cart.add"
)

var (
	ErrProductNotFound     = product.ErrNotFound
	ErrCategoryUnavailable = errors.New("product category is not sold in this store")
	ErrInvalidQuantity     = order.ErrInvalidQuantity
	ErrNoCart              = errors.New("cart is required")
)

// Policy is the slice of store configuration add-to-cart depends on.
type Policy interface {
	IsCategoryEnabled(c product.Category) bool
}

type AddToCartInput struct {
	Cart      *domcart.Cart
	ProductID string
	Quantity  int
}

type AddToCartResult struct {
	Line    order.Line
	Merged  bool
	Message string
}

type AddToCartUseCase struct {
	catalog product.Catalog
	policy  Policy
	obs     application.Instrumentation
}

func NewAddToCartUseCase(catalog product.Catalog, policy Policy, tel observability.Observability) *AddToCartUseCase {
	return &AddToCartUseCase{
		catalog: catalog,
		policy:  policy,
		obs:     application.NewInstrumentation(cartService, tel),
	}
}

// Execute validates the combined cart quantity against the product's category rules
// before touching the cart. A rejected add leaves the cart unchanged.
func (uc *AddToCartUseCase) Execute(ctx context.Context, cmd AddToCartInput) (_ *AddToCartResult, err error) {
	ctx, run := uc.obs.Begin(ctx, useCaseAdd, "AddToCart",
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("cart.quantity", cmd.Quantity),
	)
	run.With(
		observability.F("product_id", cmd.ProductID),
		observability.F("quantity", cmd.Quantity),
	)
	defer func() { run.End(err) }()

	if cmd.Cart == nil {
		run.Fail("CART_MISSING")
		return nil, ErrNoCart
	}

	p, err := uc.catalog.FindByID(ctx, cmd.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			run.Reject("PRODUCT_NOT_FOUND")
			return nil, fmt.Errorf("product %q not found: %w", cmd.ProductID, err)
		}
		run.Fail("CATALOG_LOOKUP_FAILED")
		return nil, err
	}
	run.With(observability.F("category", string(p.Category)))

	if uc.policy != nil && !uc.policy.IsCategoryEnabled(p.Category) {
		run.Reject("CATEGORY_UNAVAILABLE")
		return nil, fmt.Errorf("%w: %s", ErrCategoryUnavailable, p.Category)
	}
	if cmd.Quantity <= 0 {
		run.Reject("INVALID_QUANTITY")
		return nil, ErrInvalidQuantity
	}

	strategy, err := fulfillment.Resolve(p)
	if err != nil {
		run.Fail("UNKNOWN_CATEGORY")
		return nil, err
	}
	combined := cmd.Cart.QuantityOf(p.ID) + cmd.Quantity
	if err = strategy.Validate(combined); err != nil {
		run.Reject("VALIDATION_FAILED")
		return nil, err
	}

	line, merged, err := cmd.Cart.Add(p, cmd.Quantity)
	if err != nil {
		run.Fail("CART_ADD_FAILED")
		return nil, err
	}

	msg := fmt.Sprintf("Added: %dx %s", cmd.Quantity, p.Name)
	if merged {
		msg = fmt.Sprintf("Quantity updated: %dx %s", line.Quantity, p.Name)
	}
	return &AddToCartResult{Line: line, Merged: merged, Message: msg}, nil
}

// TaxPolicy supplies the informational tax shown with the cart.
type TaxPolicy interface {
	CalculateIGV(subtotal decimal.Decimal) decimal.Decimal
	CurrencyCode() string
}

type Summary struct {
	Customer string
	Lines    []order.Line
	Subtotal decimal.Decimal
	IGV      decimal.Decimal
	Total    decimal.Decimal
	Currency string
}

// Summarize prices the cart. Prices already include IGV, so it is shown but never added to Total.
func Summarize(customer string, c *domcart.Cart, taxes TaxPolicy) Summary {
	s := Summary{Customer: customer, Subtotal: decimal.Zero, IGV: decimal.Zero}
	if c != nil {
		s.Lines = c.Lines()
		s.Subtotal = c.Subtotal()
	}
	if taxes != nil {
		s.IGV = taxes.CalculateIGV(s.Subtotal)
		s.Currency = taxes.CurrencyCode()
	}
	s.Total = s.Subtotal
	return s
}
