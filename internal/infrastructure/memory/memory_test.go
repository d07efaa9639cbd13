package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/domain/notification"
	domain "github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCatalog(t *testing.T) {
	ctx := context.Background()
	repo, err := NewDemoCatalog()
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 10)
	assert.Equal(t, "G001", all[0].ID)
	assert.Equal(t, "G010", all[9].ID)

	zelda, err := repo.FindByID(ctx, "g003")
	require.NoError(t, err)
	assert.Equal(t, 8, zelda.Stock())
	assert.Equal(t, "299.9", zelda.Price().String())

	subs, err := repo.ListByCategory(ctx, product.CategorySubscription)
	require.NoError(t, err)
	assert.Len(t, subs, 3)

	_, err = repo.FindByID(ctx, "G404")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestCatalog_SharesProductPointers(t *testing.T) {
	ctx := context.Background()
	repo, err := NewDemoCatalog()
	require.NoError(t, err)

	a, _ := repo.FindByID(ctx, "G002")
	_, ok := a.TryDecrement(5)
	require.True(t, ok)

	b, _ := repo.FindByID(ctx, "G002")
	assert.Equal(t, 10, b.Stock())
}

func TestLoadCatalog_RejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`[{"id":"X1","name":"Vinyl","price":"10.00","category":"VINILO","stock":1}]`), 0o600))

	_, err := LoadCatalog(path)
	assert.ErrorIs(t, err, product.ErrUnknownCategory)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadCatalog_EmptyPathUsesDemo(t *testing.T) {
	repo, err := LoadCatalog("")
	require.NoError(t, err)
	p, err := repo.FindByID(context.Background(), "G003")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock())
}

func TestOrderHistory(t *testing.T) {
	ctx := context.Background()
	catalog, err := NewDemoCatalog()
	require.NoError(t, err)
	p, _ := catalog.FindByID(ctx, "G001")
	line, err := domain.NewLine(p, 1)
	require.NoError(t, err)

	history := NewOrderHistory()
	for _, id := range []string{"ORD-0001", "ORD-0002"} {
		o, err := domain.New(id, "Ana", []domain.Line{line}, time.Now())
		require.NoError(t, err)
		require.NoError(t, o.MarkPaid("YAPE", "YAPE-100000", time.Now()))
		require.NoError(t, history.Append(ctx, o))
	}

	dup, _ := domain.New("ORD-0001", "Ana", []domain.Line{line}, time.Now())
	assert.ErrorIs(t, history.Append(ctx, dup), ErrDuplicateOrder)

	all, err := history.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ORD-0001", all[0].ID)

	all[0].Lines[0].Quantity = 99
	got, err := history.FindByID(ctx, "ORD-0001")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Lines[0].Quantity)
	assert.Equal(t, domain.StatusPaid, got.Status)

	_, err = history.FindByID(ctx, "ORD-9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 2, history.Len())
}

func TestNotificationInbox_EvictsOldest(t *testing.T) {
	inbox := NewNotificationInbox(2)
	for i, customer := range []string{"Ana", "Luis", "ana"} {
		inbox.Push(notification.Notification{ID: string(rune('a' + i)), Customer: customer})
	}

	assert.Equal(t, 2, inbox.Len())
	all := inbox.List("")
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)

	mine := inbox.List("ANA")
	require.Len(t, mine, 1)
	assert.Equal(t, "c", mine[0].ID)
}
