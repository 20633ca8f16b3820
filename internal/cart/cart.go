// Carrito de sesión: staging en memoria previo al checkout. La
// validación contra stock es consultiva; la única garantía de
// corrección vive en el motor de checkout.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jmregala/tindahan-pos/internal/models"
	"github.com/jmregala/tindahan-pos/internal/store"
)

var ErrNotInCart = errors.New("product not in cart")

type ErrOutOfStock struct{ ProductID int64 }

func (e ErrOutOfStock) Error() string {
	return fmt.Sprintf("product %d is out of stock", e.ProductID)
}

// ErrExceedsStock: agregar dejaría la línea por encima del último stock
// conocido. La operación no modifica el carrito.
type ErrExceedsStock struct {
	ProductID int64
	Available int32
}

func (e ErrExceedsStock) Error() string {
	return fmt.Sprintf("product %d: only %d known in stock", e.ProductID, e.Available)
}

type Line struct {
	Snapshot
	Qty int32
}

// Lookup resuelve snapshots de producto; en producción es
// *SnapshotSource, en tests cualquier fake.
type Lookup interface {
	Lookup(ctx context.Context, id int64) (Snapshot, error)
}

// Cart pertenece a la sesión que lo creó; no hay estado global de
// paquete. Seguro para goroutines concurrentes de la misma sesión.
type Cart struct {
	mu    sync.Mutex
	src   Lookup
	lines map[int64]*Line
	order []int64
}

func New(src Lookup) *Cart {
	return &Cart{src: src, lines: make(map[int64]*Line)}
}

// AddItem suma qty a la línea del producto (creándola si no existe).
// Rechaza sin tocar el carrito si el producto no tiene stock conocido o
// si la cantidad resultante superaría el último stock conocido.
func (c *Cart) AddItem(ctx context.Context, productID int64, qty int32) error {
	if qty < 1 {
		return errors.New("quantity must be at least 1")
	}
	snap, err := c.src.Lookup(ctx, productID)
	if err != nil {
		return err
	}
	if snap.Stock <= 0 {
		return ErrOutOfStock{ProductID: productID}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ln, ok := c.lines[productID]
	if !ok {
		if qty > snap.Stock {
			return ErrExceedsStock{ProductID: productID, Available: snap.Stock}
		}
		c.lines[productID] = &Line{Snapshot: snap, Qty: qty}
		c.order = append(c.order, productID)
		return nil
	}
	if ln.Qty+qty > snap.Stock {
		return ErrExceedsStock{ProductID: productID, Available: snap.Stock}
	}
	ln.Snapshot = snap
	ln.Qty += qty
	return nil
}

// SetQuantity fija la cantidad de una línea existente, recortada al
// rango [1, stock conocido]. Devuelve la cantidad efectiva; valores
// menores a 1 se rechazan (para quitar la línea está RemoveItem) y un
// snapshot sin stock rechaza sin tocar la línea.
func (c *Cart) SetQuantity(ctx context.Context, productID int64, qty int32) (int32, error) {
	if qty < 1 {
		return 0, errors.New("quantity must be at least 1; use RemoveItem to drop the line")
	}
	snap, err := c.src.Lookup(ctx, productID)
	if err != nil {
		return 0, err
	}
	if snap.Stock <= 0 {
		return 0, ErrOutOfStock{ProductID: productID}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ln, ok := c.lines[productID]
	if !ok {
		return 0, ErrNotInCart
	}
	// clamp hacia abajo, nunca hacia arriba
	if qty > snap.Stock {
		qty = snap.Stock
	}
	ln.Snapshot = snap
	ln.Qty = qty
	return qty, nil
}

func (c *Cart) RemoveItem(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Total es puro: suma qty × precio del snapshot, sin efectos.
func (c *Cart) Total() models.Money {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total models.Money
	for _, ln := range c.lines {
		total = total.Add(models.Money{Cents: ln.PriceCents}.Mul(ln.Qty))
	}
	return total
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[int64]*Line)
	c.order = nil
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Lines devuelve copias en orden de inserción.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, 0, len(c.lines))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// SaleLines arma el payload para el motor de checkout, que revalida
// todo contra stock vivo.
func (c *Cart) SaleLines() []store.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]store.Line, 0, len(c.lines))
	for _, id := range c.order {
		out = append(out, store.Line{ProductID: id, Qty: c.lines[id].Qty})
	}
	return out
}
