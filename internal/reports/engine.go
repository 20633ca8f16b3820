// Motor de reportes: agregados de solo lectura sobre el ledger de
// ventas y el stock actual. Puede correr en paralelo con checkouts;
// lee el último estado confirmado.
package reports

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jmregala/tindahan-pos/internal/models"
	"github.com/jmregala/tindahan-pos/internal/store"
)

// DefaultLimit aplica cuando el caller no acota los movers.
const DefaultLimit = 10

type Engine struct {
	store *store.Store
	log   zerolog.Logger
}

func New(st *store.Store, log zerolog.Logger) *Engine {
	return &Engine{store: st, log: log}
}

func (e *Engine) Summary(ctx context.Context, r Range) (models.Summary, error) {
	return e.store.SalesSummary(ctx, r.StartUnix, r.EndUnix)
}

func (e *Engine) TopMovers(ctx context.Context, r Range, limit int32) ([]models.MoverRow, error) {
	return e.store.TopMovers(ctx, r.StartUnix, r.EndUnix, clampLimit(limit))
}

func (e *Engine) BottomMovers(ctx context.Context, r Range, limit int32) ([]models.MoverRow, error) {
	return e.store.BottomMovers(ctx, r.StartUnix, r.EndUnix, clampLimit(limit))
}

func (e *Engine) LowStock(ctx context.Context) ([]models.LowStockItem, error) {
	return e.store.LowStock(ctx)
}

func clampLimit(limit int32) int32 {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// Dashboard junta todos los sub-reportes. Cada sección falla por su
// cuenta: un error en una no tumba a las demás.
type Dashboard struct {
	Summary    *models.Summary `json:"summary,omitempty"`
	SummaryErr string          `json:"summary_error,omitempty"`

	Top    []models.MoverRow `json:"top_movers,omitempty"`
	TopErr string            `json:"top_movers_error,omitempty"`

	Bottom    []models.MoverRow `json:"bottom_movers,omitempty"`
	BottomErr string            `json:"bottom_movers_error,omitempty"`

	LowStock    []models.LowStockItem `json:"low_stock,omitempty"`
	LowStockErr string                `json:"low_stock_error,omitempty"`

	ProductCount    int64  `json:"product_count"`
	ProductCountErr string `json:"product_count_error,omitempty"`
}

func (e *Engine) Dashboard(ctx context.Context, r Range, limit int32) Dashboard {
	var d Dashboard

	if sum, err := e.Summary(ctx, r); err != nil {
		e.log.Error().Err(err).Msg("dashboard: summary failed")
		d.SummaryErr = err.Error()
	} else {
		d.Summary = &sum
	}

	var err error
	if d.Top, err = e.TopMovers(ctx, r, limit); err != nil {
		e.log.Error().Err(err).Msg("dashboard: top movers failed")
		d.TopErr = err.Error()
	}
	if d.Bottom, err = e.BottomMovers(ctx, r, limit); err != nil {
		e.log.Error().Err(err).Msg("dashboard: bottom movers failed")
		d.BottomErr = err.Error()
	}
	if d.LowStock, err = e.LowStock(ctx); err != nil {
		e.log.Error().Err(err).Msg("dashboard: low stock failed")
		d.LowStockErr = err.Error()
	}
	if d.ProductCount, err = e.store.CountProducts(ctx); err != nil {
		e.log.Error().Err(err).Msg("dashboard: product count failed")
		d.ProductCountErr = err.Error()
	}
	return d
}
