package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tientrn/laptopstore/domain"
	"github.com/tientrn/laptopstore/internal/storage"
)

func laptop(id string, price float64, available int) domain.Product {
	return domain.Product{
		ProductID:         id,
		Name:              "ThinkBook " + id,
		Price:             price,
		AvailableQuantity: available,
	}
}

func TestAddToCart_NewLine(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())

	cart, err := sut.AddToCart(context.Background(), laptop("P1", 1000, 5))
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "P1", cart.Lines[0].ProductID)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, float64(1000), cart.Lines[0].UnitPrice)
	assert.Equal(t, float64(1000), cart.Lines[0].LineTotal)
}

func TestAddToCart_IncrementsExistingLine(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	_, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)
	_, err = sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)
	cart, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, float64(3000), cart.Lines[0].LineTotal)
}

func TestAddToCart_PriceSnapshotAtAddTime(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	_, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)
	// Listing price changed between adds; the line keeps its snapshot.
	cart, err := sut.AddToCart(ctx, laptop("P1", 1500, 5))
	require.NoError(t, err)

	assert.Equal(t, float64(1000), cart.Lines[0].UnitPrice)
	assert.Equal(t, float64(2000), cart.Lines[0].LineTotal)
}

func TestDecreaseQuantity_RemovesLineAtOne(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	_, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)

	cart, err := sut.DecreaseQuantity(ctx, "P1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Nil(t, cart.FindLine("P1"))
}

func TestDecreaseQuantity_Decrements(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	_, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)
	_, err = sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)

	cart, err := sut.DecreaseQuantity(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, float64(1000), cart.Lines[0].LineTotal)
}

func TestDecreaseQuantity_MissingLineIsNoop(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	_, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)

	cart, err := sut.DecreaseQuantity(ctx, "P9")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestRemoveFromCart_Idempotent(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	_, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)
	_, err = sut.AddToCart(ctx, laptop("P2", 2000, 5))
	require.NoError(t, err)

	first, err := sut.RemoveFromCart(ctx, "P1")
	require.NoError(t, err)
	second, err := sut.RemoveFromCart(ctx, "P1")
	require.NoError(t, err)

	assert.Equal(t, first.Lines, second.Lines)
	require.Len(t, second.Lines, 1)
	assert.Equal(t, "P2", second.Lines[0].ProductID)
}

func TestClearCart(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	_, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)

	require.NoError(t, sut.ClearCart(ctx))

	cart, err := sut.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCount_MatchesQuantitySum(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := sut.AddToCart(ctx, laptop("P2", 2000, 5))
		require.NoError(t, err)
	}

	count, err := sut.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	cart, err := sut.Current(ctx)
	require.NoError(t, err)
	sum := 0
	for _, l := range cart.Lines {
		sum += l.Quantity
	}
	assert.Equal(t, sum, count)
}

func TestTotalPrice_DerivedFromLineTotals(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	_, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)
	_, err = sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)
	_, err = sut.AddToCart(ctx, laptop("P2", 2500, 5))
	require.NoError(t, err)

	total, err := sut.TotalPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(4500), total)
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	_, err := sut.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)

	first, err := sut.Current(ctx)
	require.NoError(t, err)
	first.Lines[0].Quantity = 99

	// Scribbling on the returned cart must not leak into the store.
	second, err := sut.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Lines[0].Quantity)
}

func TestConcurrentAdds_NoLostUpdates(t *testing.T) {
	sut := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := sut.AddToCart(ctx, laptop(id, 1000, 5))
			assert.NoError(t, err)
		}([]string{"P1", "P2"}[i])
	}
	wg.Wait()

	cart, err := sut.Current(ctx)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.NotNil(t, cart.FindLine("P1"))
	assert.NotNil(t, cart.FindLine("P2"))
}

func TestCart_SurvivesServiceRestart(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	first := NewService(store)
	_, err := first.AddToCart(ctx, laptop("P1", 1000, 5))
	require.NoError(t, err)
	_, err = first.AddToCart(ctx, laptop("P2", 2000, 5))
	require.NoError(t, err)

	// A reload constructs a fresh service over the same session store.
	second := NewService(store)
	cart, err := second.Current(ctx)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "P1", cart.Lines[0].ProductID)
	assert.Equal(t, "P2", cart.Lines[1].ProductID)
}
