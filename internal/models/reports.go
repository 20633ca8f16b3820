package models

// Agregados de reporte derivados del ledger de ventas y el stock actual.

type Summary struct {
	Orders        int64 `json:"orders"`
	ItemsSold     int64 `json:"items_sold"`
	RevenueCents  int64 `json:"revenue_cents"`
	AvgOrderCents int64 `json:"avg_order_cents"`
}

type MoverRow struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	Qty          int64  `json:"qty"`
	RevenueCents int64  `json:"revenue_cents"`
}

type LowStockItem struct {
	ProductID int64       `json:"product_id"`
	Name      string      `json:"name"`
	Qty       int32       `json:"stock"`
	MinStock  int32       `json:"min_stock"`
	Status    StockStatus `json:"status"`
}
