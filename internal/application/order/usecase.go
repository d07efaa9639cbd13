package order

import (
	"context"
	"errors"
	"strings"

	"github.com/Zhima-Mochi/gamestore/internal/application"
	domain "github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	orderService = "order-service"
	useCaseList  = "order.list"
	useCaseGet   = "order.get"
)

var ErrNotFound = domain.ErrNotFound

type ListOrdersInput struct {
	// Customer narrows the history to one buyer, case-insensitively.
	Customer string
}

type ListOrdersResult struct {
	Orders  []*domain.Order
	Revenue decimal.Decimal
}

// ListOrdersUseCase reads the paid-order history, oldest first.
type ListOrdersUseCase struct {
	history domain.History
	obs     application.Instrumentation
}

func NewListOrdersUseCase(history domain.History, tel observability.Observability) *ListOrdersUseCase {
	return &ListOrdersUseCase{history: history, obs: application.NewInstrumentation(orderService, tel)}
}

func (uc *ListOrdersUseCase) Execute(ctx context.Context, cmd ListOrdersInput) (_ *ListOrdersResult, err error) {
	ctx, run := uc.obs.Begin(ctx, useCaseList, "ListOrders")
	defer func() { run.End(err) }()

	all, err := uc.history.List(ctx)
	if err != nil {
		run.Fail("HISTORY_READ_FAILED")
		return nil, err
	}

	customer := strings.TrimSpace(cmd.Customer)
	res := &ListOrdersResult{Orders: make([]*domain.Order, 0, len(all)), Revenue: decimal.Zero}
	for _, o := range all {
		if customer != "" && !strings.EqualFold(o.Customer, customer) {
			continue
		}
		res.Orders = append(res.Orders, o)
		res.Revenue = res.Revenue.Add(o.Total())
	}
	run.With(
		observability.F("orders", len(res.Orders)),
		observability.F("revenue", res.Revenue.StringFixed(2)),
	)
	return res, nil
}

type GetOrderUseCase struct {
	history domain.History
	obs     application.Instrumentation
}

func NewGetOrderUseCase(history domain.History, tel observability.Observability) *GetOrderUseCase {
	return &GetOrderUseCase{history: history, obs: application.NewInstrumentation(orderService, tel)}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID string) (_ *domain.Order, err error) {
	ctx, run := uc.obs.Begin(ctx, useCaseGet, "GetOrder", attribute.String("order.id", orderID))
	defer func() { run.End(err) }()

	o, err := uc.history.FindByID(ctx, strings.TrimSpace(orderID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			run.Reject("ORDER_NOT_FOUND")
		} else {
			run.Fail("HISTORY_READ_FAILED")
		}
		return nil, err
	}
	return o, nil
}
