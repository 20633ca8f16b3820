package models

// Money en centavos para evitar floats en totales.
type Money struct{ Cents int64 }

func (m Money) Add(o Money) Money   { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Mul(qty int32) Money { return Money{Cents: m.Cents * int64(qty)} }

// DefaultMinStock applies when a product is created without an
// explicit threshold.
const DefaultMinStock = 5

type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	MinStock    int32  `json:"min_stock"`
	CreatedUnix int64  `json:"created_unix"`
}

// Stock es 1:1 con Product. Qty nunca baja de cero; el motor de
// checkout es el único que decrementa, el ajuste de admin sobreescribe.
type Stock struct {
	ProductID   int64 `json:"product_id"`
	Qty         int32 `json:"qty"`
	UpdatedUnix int64 `json:"updated_unix"`
}

// ProductView es lo que ven el carrito y los listados: producto + stock.
type ProductView struct {
	Product
	Qty         int32 `json:"qty"`
	UpdatedUnix int64 `json:"updated_unix"`
}

// Sale es un hecho histórico: inmutable una vez confirmada.
type Sale struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TotalCents  int64      `json:"total_cents"`
	CreatedUnix int64      `json:"created_unix"`
	Lines       []SaleLine `json:"lines"`
}

// SaleLine congela nombre y precio unitario al momento del commit;
// cambios posteriores del catálogo no la afectan.
type SaleLine struct {
	ID        int64  `json:"id"`
	SaleID    string `json:"sale_id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Qty       int32  `json:"qty"`
	UnitCents int64  `json:"unit_cents"`
	LineCents int64  `json:"line_cents"`
}

// Estado derivado de stock vs umbral mínimo.
type StockStatus string

const (
	StockOK  StockStatus = "OK"
	StockLow StockStatus = "LOW"
	StockOut StockStatus = "OUT"
)

func StatusFor(qty, minStock int32) StockStatus {
	switch {
	case qty <= 0:
		return StockOut
	case qty <= minStock:
		return StockLow
	default:
		return StockOK
	}
}
