package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/gamestore/internal/application"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	catalogService = "catalog-service"
	useCaseList    = "catalog.list"
	useCaseGet     = "catalog.get"
	useCaseUpdate  = "catalog.update"
)

var ErrNothingToUpdate = errors.New("catalog: nothing to update")

// Availability reports whether a category may currently be sold.
type Availability interface {
	IsCategoryEnabled(c product.Category) bool
}

type Item struct {
	Product   *product.Product
	Available bool
}

type ListCatalogInput struct {
	// Category filters by tag when non-empty.
	Category string
}

type ListCatalogResult struct {
	Items []Item
}

type ListCatalogUseCase struct {
	repo  product.Catalog
	avail Availability
	obs   application.Instrumentation
}

func NewListCatalogUseCase(repo product.Catalog, avail Availability, tel observability.Observability) *ListCatalogUseCase {
	return &ListCatalogUseCase{repo: repo, avail: avail, obs: application.NewInstrumentation(catalogService, tel)}
}

func (uc *ListCatalogUseCase) Execute(ctx context.Context, cmd ListCatalogInput) (_ *ListCatalogResult, err error) {
	ctx, run := uc.obs.Begin(ctx, useCaseList, "ListCatalog", attribute.String("catalog.category", cmd.Category))
	defer func() { run.End(err) }()

	var products []*product.Product
	if cmd.Category == "" {
		products, err = uc.repo.List(ctx)
	} else {
		c, perr := product.ParseCategory(cmd.Category)
		if perr != nil {
			run.Reject("UNKNOWN_CATEGORY")
			return nil, perr
		}
		products, err = uc.repo.ListByCategory(ctx, c)
	}
	if err != nil {
		run.Fail("CATALOG_LOOKUP_FAILED")
		return nil, err
	}

	res := &ListCatalogResult{Items: make([]Item, 0, len(products))}
	for _, p := range products {
		res.Items = append(res.Items, Item{Product: p, Available: uc.available(p.Category)})
	}
	run.With(observability.F("products", len(res.Items)))
	return res, nil
}

func (uc *ListCatalogUseCase) available(c product.Category) bool {
	return uc.avail == nil || uc.avail.IsCategoryEnabled(c)
}

type GetProductUseCase struct {
	repo  product.Catalog
	avail Availability
	obs   application.Instrumentation
}

func NewGetProductUseCase(repo product.Catalog, avail Availability, tel observability.Observability) *GetProductUseCase {
	return &GetProductUseCase{repo: repo, avail: avail, obs: application.NewInstrumentation(catalogService, tel)}
}

func (uc *GetProductUseCase) Execute(ctx context.Context, productID string) (_ *Item, err error) {
	ctx, run := uc.obs.Begin(ctx, useCaseGet, "GetProduct", attribute.String("product.id", productID))
	defer func() { run.End(err) }()

	p, err := uc.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			run.Reject("PRODUCT_NOT_FOUND")
		} else {
			run.Fail("CATALOG_LOOKUP_FAILED")
		}
		return nil, err
	}
	return &Item{Product: p, Available: uc.avail == nil || uc.avail.IsCategoryEnabled(p.Category)}, nil
}

// UpdateProductInput changes the catalog price and/or adds stock.
type UpdateProductInput struct {
	ProductID string
	Price     *decimal.Decimal
	Restock   int
}

type UpdateProductUseCase struct {
	repo product.Catalog
	obs  application.Instrumentation
}

func NewUpdateProductUseCase(repo product.Catalog, tel observability.Observability) *UpdateProductUseCase {
	return &UpdateProductUseCase{repo: repo, obs: application.NewInstrumentation(catalogService, tel)}
}

func (uc *UpdateProductUseCase) Execute(ctx context.Context, cmd UpdateProductInput) (_ *product.Product, err error) {
	ctx, run := uc.obs.Begin(ctx, useCaseUpdate, "UpdateProduct",
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("product.restock", cmd.Restock),
	)
	defer func() { run.End(err) }()

	if cmd.Price == nil && cmd.Restock == 0 {
		run.Reject("NOTHING_TO_UPDATE")
		return nil, ErrNothingToUpdate
	}

	p, err := uc.repo.FindByID(ctx, cmd.ProductID)
	if err != nil {
		run.Reject("PRODUCT_NOT_FOUND")
		return nil, err
	}

	// Every check runs before the first change so a rejected update leaves the product as it was.
	if cmd.Price != nil && cmd.Price.IsNegative() {
		run.Reject("INVALID_PRICE")
		return nil, product.ErrInvalidPrice
	}
	if cmd.Restock != 0 {
		if p.Category != product.CategoryPhysical {
			run.Reject("NOT_STOCKED")
			return nil, fmt.Errorf("%w: %s is %s, only FISICO products carry stock", product.ErrInvalidAmount, p.ID, p.Category)
		}
		if cmd.Restock < 0 {
			run.Reject("INVALID_RESTOCK")
			return nil, product.ErrInvalidAmount
		}
	}

	if cmd.Price != nil {
		if err = p.SetPrice(*cmd.Price); err != nil {
			run.Fail("PRICE_UPDATE_FAILED")
			return nil, err
		}
		run.With(observability.F("price", cmd.Price.StringFixed(2)))
	}
	if cmd.Restock != 0 {
		left, rerr := p.Restock(cmd.Restock)
		if rerr != nil {
			run.Fail("RESTOCK_FAILED")
			return nil, rerr
		}
		run.With(observability.F("stock", left))
	}
	return p, nil
}
