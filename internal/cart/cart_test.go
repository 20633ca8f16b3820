package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmregala/tindahan-pos/internal/models"
	"github.com/jmregala/tindahan-pos/internal/store"
)

type fakeLookup struct {
	snaps map[int64]Snapshot
	calls int
}

func (f *fakeLookup) Lookup(_ context.Context, id int64) (Snapshot, error) {
	f.calls++
	s, ok := f.snaps[id]
	if !ok {
		return Snapshot{}, store.ErrNotFound
	}
	return s, nil
}

func newFake() *fakeLookup {
	return &fakeLookup{snaps: map[int64]Snapshot{
		1: {ProductID: 1, Name: "Soap", PriceCents: 1200, Stock: 5},
		2: {ProductID: 2, Name: "Coffee", PriceCents: 950, Stock: 2},
		3: {ProductID: 3, Name: "Empty", PriceCents: 500, Stock: 0},
	}}
}

func TestAddItemAccumulates(t *testing.T) {
	c := New(newFake())
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, 1, 1))
	require.NoError(t, c.AddItem(ctx, 1, 2))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int32(3), lines[0].Qty)
}

func TestAddItemRejectsBeyondKnownStock(t *testing.T) {
	c := New(newFake())
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, 2, 2))
	// stock conocido 2: un tercero no entra y el carrito queda igual
	err := c.AddItem(ctx, 2, 1)
	var exceeds ErrExceedsStock
	require.ErrorAs(t, err, &exceeds)
	assert.Equal(t, int32(2), exceeds.Available)
	assert.Equal(t, int32(2), c.Lines()[0].Qty)
}

func TestAddItemRejectsOutOfStock(t *testing.T) {
	c := New(newFake())
	err := c.AddItem(context.Background(), 3, 1)
	var out ErrOutOfStock
	require.ErrorAs(t, err, &out)
	assert.Zero(t, c.Len())
}

func TestAddItemUnknownProduct(t *testing.T) {
	c := New(newFake())
	assert.Error(t, c.AddItem(context.Background(), 99, 1))
}

func TestSetQuantityClampsDown(t *testing.T) {
	c := New(newFake())
	ctx := context.Background()
	require.NoError(t, c.AddItem(ctx, 1, 1))

	// pide 50 con stock conocido 5: queda en 5, nunca sube en silencio
	got, err := c.SetQuantity(ctx, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int32(5), got)

	got, err = c.SetQuantity(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), got)

	_, err = c.SetQuantity(ctx, 1, 0)
	assert.Error(t, err)
	_, err = c.SetQuantity(ctx, 2, 1)
	assert.ErrorIs(t, err, ErrNotInCart)
}

func TestSetQuantityRejectsDepletedSnapshot(t *testing.T) {
	f := newFake()
	c := New(f)
	ctx := context.Background()
	require.NoError(t, c.AddItem(ctx, 2, 2))

	// el snapshot se agota: fijar cantidad no deja la línea por encima
	// del stock conocido
	f.snaps[2] = Snapshot{ProductID: 2, Name: "Coffee", PriceCents: 950, Stock: 0}
	_, err := c.SetQuantity(ctx, 2, 1)
	var out ErrOutOfStock
	require.ErrorAs(t, err, &out)
	assert.Equal(t, int32(2), c.Lines()[0].Qty)
}

func TestRemoveAndClear(t *testing.T) {
	c := New(newFake())
	ctx := context.Background()
	require.NoError(t, c.AddItem(ctx, 1, 1))
	require.NoError(t, c.AddItem(ctx, 2, 1))

	c.RemoveItem(1)
	assert.Equal(t, 1, c.Len())
	c.RemoveItem(42) // inexistente: no-op

	c.Clear()
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Lines())
}

func TestTotalIsPure(t *testing.T) {
	c := New(newFake())
	ctx := context.Background()
	require.NoError(t, c.AddItem(ctx, 1, 3)) // 3 × 1200
	require.NoError(t, c.AddItem(ctx, 2, 2)) // 2 × 950

	want := models.Money{Cents: 3*1200 + 2*950}
	assert.Equal(t, want, c.Total())
	assert.Equal(t, want, c.Total())
	assert.Equal(t, 2, c.Len())
}

func TestSaleLinesKeepInsertionOrder(t *testing.T) {
	c := New(newFake())
	ctx := context.Background()
	require.NoError(t, c.AddItem(ctx, 2, 1))
	require.NoError(t, c.AddItem(ctx, 1, 4))

	lines := c.SaleLines()
	require.Len(t, lines, 2)
	assert.Equal(t, store.Line{ProductID: 2, Qty: 1}, lines[0])
	assert.Equal(t, store.Line{ProductID: 1, Qty: 4}, lines[1])
}

type fakeCatalog struct {
	view  models.ProductView
	calls int
}

func (f *fakeCatalog) GetProduct(_ context.Context, _ int64) (*models.ProductView, error) {
	f.calls++
	v := f.view
	return &v, nil
}

func TestSnapshotSourceCachesAndInvalidates(t *testing.T) {
	cat := &fakeCatalog{view: models.ProductView{
		Product: models.Product{ID: 7, Name: "Cached", PriceCents: 100},
		Qty:     9,
	}}
	src := NewSnapshotSource(cat, 16, time.Minute)
	ctx := context.Background()

	snap, err := src.Lookup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(9), snap.Stock)

	_, err = src.Lookup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.calls)

	src.Invalidate(7)
	_, err = src.Lookup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.calls)
}
