package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aroundNow() (int64, int64) {
	now := time.Now().Unix()
	return now - 3600, now + 3600
}

func TestSalesSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := mustCreate(t, s, "Big Item", 10000, 2, 10)
	q := mustCreate(t, s, "Small Item", 5000, 2, 10)

	// dos ventas: ₱100.00 y ₱50.00
	_, err := s.RecordSale(ctx, "u1", []Line{{ProductID: p, Qty: 1}})
	require.NoError(t, err)
	_, err = s.RecordSale(ctx, "u2", []Line{{ProductID: q, Qty: 1}})
	require.NoError(t, err)

	start, end := aroundNow()
	sum, err := s.SalesSummary(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Orders)
	assert.Equal(t, int64(2), sum.ItemsSold)
	assert.Equal(t, int64(15000), sum.RevenueCents)
	assert.Equal(t, int64(7500), sum.AvgOrderCents)
}

func TestSalesSummaryEmptyRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := mustCreate(t, s, "Item", 1000, 2, 10)
	_, err := s.RecordSale(ctx, "u1", []Line{{ProductID: p, Qty: 1}})
	require.NoError(t, err)

	// rango en el pasado: sin órdenes, promedio definido como 0
	sum, err := s.SalesSummary(ctx, 100, 200)
	require.NoError(t, err)
	assert.Zero(t, sum.Orders)
	assert.Zero(t, sum.ItemsSold)
	assert.Zero(t, sum.RevenueCents)
	assert.Zero(t, sum.AvgOrderCents)
}

func TestTopMoversOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "Alpha", 1000, 2, 100)
	b := mustCreate(t, s, "Beta", 2000, 2, 100)
	c := mustCreate(t, s, "Gamma", 2000, 2, 100)

	// Alpha: qty 5, Beta: qty 3 con más ingreso que Gamma: qty 3
	_, err := s.RecordSale(ctx, "u", []Line{{ProductID: a, Qty: 5}})
	require.NoError(t, err)
	_, err = s.RecordSale(ctx, "u", []Line{{ProductID: b, Qty: 3}})
	require.NoError(t, err)
	require.NoError(t, s.EditProduct(ctx, c, 1500, 2))
	_, err = s.RecordSale(ctx, "u", []Line{{ProductID: c, Qty: 3}})
	require.NoError(t, err)

	start, end := aroundNow()
	rows, err := s.TopMovers(ctx, start, end, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Alpha", rows[0].Name)
	assert.Equal(t, int64(5), rows[0].Qty)
	// empate en qty: gana el de mayor ingreso
	assert.Equal(t, "Beta", rows[1].Name)
	assert.Equal(t, "Gamma", rows[2].Name)
}

func TestBottomMoversIncludeZeroSales(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "Mover", 1000, 2, 100)
	mustCreate(t, s, "Dust B", 1000, 2, 100)
	mustCreate(t, s, "Dust A", 1000, 2, 100)

	_, err := s.RecordSale(ctx, "u", []Line{{ProductID: a, Qty: 7}})
	require.NoError(t, err)

	start, end := aroundNow()
	rows, err := s.BottomMovers(ctx, start, end, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// los sin ventas primero, qty 0 y revenue 0, orden por nombre
	assert.Equal(t, "Dust A", rows[0].Name)
	assert.Zero(t, rows[0].Qty)
	assert.Zero(t, rows[0].RevenueCents)
	assert.Equal(t, "Dust B", rows[1].Name)
	assert.Zero(t, rows[1].Qty)
	assert.Equal(t, "Mover", rows[2].Name)
	assert.Equal(t, int64(7), rows[2].Qty)
}

func TestBottomMoversIgnoreSalesOutsideRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "Seasonal", 1000, 2, 100)
	_, err := s.RecordSale(ctx, "u", []Line{{ProductID: a, Qty: 4}})
	require.NoError(t, err)

	// rango pasado: la venta de hoy no cuenta, pero el producto aparece
	rows, err := s.BottomMovers(ctx, 100, 200, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Seasonal", rows[0].Name)
	assert.Zero(t, rows[0].Qty)
}

func TestLowStockStatuses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "P Out", 1000, 5, 0)
	mustCreate(t, s, "Q Low", 1000, 5, 4)
	mustCreate(t, s, "R Fine", 1000, 5, 10)

	items, err := s.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "P Out", items[0].Name)
	assert.Equal(t, "OUT", string(items[0].Status))
	assert.Equal(t, "Q Low", items[1].Name)
	assert.Equal(t, "LOW", string(items[1].Status))
}

func TestReportsAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := mustCreate(t, s, "Item", 1000, 5, 3)
	_, err := s.RecordSale(ctx, "u", []Line{{ProductID: p, Qty: 2}})
	require.NoError(t, err)

	start, end := aroundNow()
	sum1, err := s.SalesSummary(ctx, start, end)
	require.NoError(t, err)
	sum2, err := s.SalesSummary(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, sum1, sum2)

	low1, err := s.LowStock(ctx)
	require.NoError(t, err)
	low2, err := s.LowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, low1, low2)
}

func TestCountProducts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "One", 1000, 5, 1)
	mustCreate(t, s, "Two", 1000, 5, 1)

	n, err := s.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
