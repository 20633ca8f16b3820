// Motor de checkout: única vía de decremento de stock por venta.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/jmregala/tindahan-pos/internal/models"
	"github.com/jmregala/tindahan-pos/internal/store"
)

var (
	ErrEmptyCart = errors.New("empty cart")

	// ErrStoreUnavailable envuelve fallas transitorias del store: el
	// caller conserva su carrito y puede reintentar tal cual.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Notifier publica el aviso de cambio de stock tras un checkout
// exitoso. Es fire-and-forget: una falla aquí no afecta la venta.
type Notifier interface {
	StockChanged(productID int64, soldQty int32, saleID string)
}

// Notifiers difunde el aviso a varios listeners en orden.
type Notifiers []Notifier

func (ns Notifiers) StockChanged(productID int64, soldQty int32, saleID string) {
	for _, n := range ns {
		n.StockChanged(productID, soldQty, saleID)
	}
}

type Engine struct {
	store    *store.Store
	notifier Notifier
	log      zerolog.Logger
}

func New(st *store.Store, notifier Notifier, log zerolog.Logger) *Engine {
	return &Engine{store: st, notifier: notifier, log: log}
}

// NotifyStockChanged difunde un cambio de stock hecho fuera del
// checkout (ajustes administrativos). delta es lo retirado del stock;
// negativo cuando se repone. ref queda vacío si no hay venta asociada.
func (e *Engine) NotifyStockChanged(productID int64, delta int32, ref string) {
	if e.notifier != nil {
		e.notifier.StockChanged(productID, delta, ref)
	}
}

// RecordSale valida la entrada sin tocar el store, fusiona líneas
// duplicadas y delega el commit atómico (validación contra stock vivo,
// decrementos condicionales, venta + líneas) a una sola transacción.
// Toda falla garantiza cero mutación de stock y cero registro de venta.
func (e *Engine) RecordSale(ctx context.Context, userID string, lines []store.Line) (*models.Sale, error) {
	if userID == "" {
		return nil, errors.New("user id required")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	merged := make([]store.Line, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, ln := range lines {
		if ln.Qty <= 0 {
			return nil, fmt.Errorf("product %d: quantity must be positive, got %d", ln.ProductID, ln.Qty)
		}
		if i, ok := index[ln.ProductID]; ok {
			// la suma se acumula en int64: dos cantidades válidas pueden
			// desbordar int32 y volverse negativas
			total := int64(merged[i].Qty) + int64(ln.Qty)
			if total > math.MaxInt32 {
				return nil, fmt.Errorf("product %d: merged quantity %d out of range", ln.ProductID, total)
			}
			merged[i].Qty = int32(total)
			continue
		}
		index[ln.ProductID] = len(merged)
		merged = append(merged, ln)
	}

	sale, err := e.store.RecordSale(ctx, userID, merged)
	if err != nil {
		var unknown store.ErrUnknownProduct
		var short store.ErrInsufficient
		if errors.As(err, &unknown) || errors.As(err, &short) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.log.Info().
		Str("sale", sale.ID).
		Str("user", sale.UserID).
		Int("lines", len(sale.Lines)).
		Int64("total_cents", sale.TotalCents).
		Msg("sale committed")

	if e.notifier != nil {
		for _, ln := range sale.Lines {
			e.notifier.StockChanged(ln.ProductID, ln.Qty, sale.ID)
		}
	}
	return sale, nil
}
