package cart

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jmregala/tindahan-pos/internal/models"
)

// Snapshot es la vista reciente (no autoritativa) de un producto con la
// que el carrito valida cantidades. El stock real puede haber cambiado.
type Snapshot struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Stock      int32  `json:"stock"`
}

type CatalogReader interface {
	GetProduct(ctx context.Context, id int64) (*models.ProductView, error)
}

// SnapshotSource sirve snapshots con un cache LRU con TTL por encima
// del catálogo: la validación del carrito es solo para UX, no necesita
// la última lectura.
type SnapshotSource struct {
	catalog CatalogReader
	cache   *expirable.LRU[int64, Snapshot]
}

func NewSnapshotSource(catalog CatalogReader, size int, ttl time.Duration) *SnapshotSource {
	return &SnapshotSource{
		catalog: catalog,
		cache:   expirable.NewLRU[int64, Snapshot](size, nil, ttl),
	}
}

func (s *SnapshotSource) Lookup(ctx context.Context, id int64) (Snapshot, error) {
	if snap, ok := s.cache.Get(id); ok {
		return snap, nil
	}
	v, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		ProductID:  v.ID,
		Name:       v.Name,
		PriceCents: v.PriceCents,
		Stock:      v.Qty,
	}
	s.cache.Add(id, snap)
	return snap, nil
}

// Invalidate descarta el snapshot tras un cambio de stock conocido
// (checkout propio o evento stock.changed).
func (s *SnapshotSource) Invalidate(id int64) {
	s.cache.Remove(id)
}

// StockChanged implementa el Notifier del motor de checkout: una venta
// confirmada invalida el snapshot del producto vendido.
func (s *SnapshotSource) StockChanged(productID int64, _ int32, _ string) {
	s.Invalidate(productID)
}
