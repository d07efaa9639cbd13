package catalog

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/config"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*memory.CatalogRepository, *config.Store) {
	t.Helper()
	repo, err := memory.NewDemoCatalog()
	require.NoError(t, err)
	return repo, config.New(config.Default())
}

func TestListCatalog(t *testing.T) {
	repo, cfg := setup(t)
	uc := NewListCatalogUseCase(repo, cfg, nil)
	ctx := context.Background()

	all, err := uc.Execute(ctx, ListCatalogInput{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 10)

	physical, err := uc.Execute(ctx, ListCatalogInput{Category: "fisico"})
	require.NoError(t, err)
	require.Len(t, physical.Items, 3)
	for _, it := range physical.Items {
		assert.Equal(t, product.CategoryPhysical, it.Product.Category)
		assert.True(t, it.Available)
	}

	require.NoError(t, cfg.Set(config.KeyCategories, "DIGITAL"))
	physical, err = uc.Execute(ctx, ListCatalogInput{Category: "FISICO"})
	require.NoError(t, err)
	assert.False(t, physical.Items[0].Available)

	_, err = uc.Execute(ctx, ListCatalogInput{Category: "VINILO"})
	assert.ErrorIs(t, err, product.ErrUnknownCategory)
}

func TestGetProduct(t *testing.T) {
	repo, cfg := setup(t)
	uc := NewGetProductUseCase(repo, cfg, nil)

	item, err := uc.Execute(context.Background(), "g010")
	require.NoError(t, err)
	assert.Equal(t, "Spider-Man 2", item.Product.Name)

	_, err = uc.Execute(context.Background(), "G999")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestUpdateProduct(t *testing.T) {
	repo, _ := setup(t)
	uc := NewUpdateProductUseCase(repo, nil)
	ctx := context.Background()
	price := decimal.RequireFromString("279.90")

	p, err := uc.Execute(ctx, UpdateProductInput{ProductID: "G003", Price: &price, Restock: 2})
	require.NoError(t, err)
	assert.True(t, p.Price().Equal(price))
	assert.Equal(t, 10, p.Stock())

	_, err = uc.Execute(ctx, UpdateProductInput{ProductID: "G001", Restock: 1})
	assert.ErrorIs(t, err, product.ErrInvalidAmount)

	_, err = uc.Execute(ctx, UpdateProductInput{ProductID: "G003"})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	_, err = uc.Execute(ctx, UpdateProductInput{ProductID: "G404", Restock: 1})
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestUpdateProduct_RejectedUpdateChangesNothing(t *testing.T) {
	repo, _ := setup(t)
	uc := NewUpdateProductUseCase(repo, nil)
	ctx := context.Background()
	cheap := decimal.RequireFromString("1.00")
	negative := decimal.RequireFromString("-5")

	cases := []struct {
		name string
		cmd  UpdateProductInput
		want error
	}{
		{"restock on digital", UpdateProductInput{ProductID: "G001", Price: &cheap, Restock: 5}, product.ErrInvalidAmount},
		{"negative restock", UpdateProductInput{ProductID: "G003", Price: &cheap, Restock: -1}, product.ErrInvalidAmount},
		{"negative price", UpdateProductInput{ProductID: "G003", Price: &negative, Restock: 3}, product.ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before, err := repo.FindByID(ctx, tc.cmd.ProductID)
			require.NoError(t, err)
			price, stock := before.Price(), before.Stock()

			_, err = uc.Execute(ctx, tc.cmd)
			require.ErrorIs(t, err, tc.want)

			after, err := repo.FindByID(ctx, tc.cmd.ProductID)
			require.NoError(t, err)
			assert.Equal(t, price.StringFixed(2), after.Price().StringFixed(2))
			assert.Equal(t, stock, after.Stock())
		})
	}
}
