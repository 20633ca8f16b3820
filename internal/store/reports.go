package store

import (
	"context"
	"database/sql"

	"github.com/jmregala/tindahan-pos/internal/models"
)

// Consultas de agregación sobre el ledger. Solo lectura: toleran correr
// en paralelo con checkouts, leen el último estado confirmado.

// SalesSummary agrega ventas en [startUnix, endUnix).
func (s *Store) SalesSummary(ctx context.Context, startUnix, endUnix int64) (models.Summary, error) {
	var sum models.Summary
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(1), COALESCE(SUM(total_cents),0)
FROM sales
WHERE created_unix >= ? AND created_unix < ?`, startUnix, endUnix).
		Scan(&sum.Orders, &sum.RevenueCents)
	if err != nil { return models.Summary{}, err }

	err = s.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(si.qty),0)
FROM sale_items si
JOIN sales sa ON sa.id = si.sale_id
WHERE sa.created_unix >= ? AND sa.created_unix < ?`, startUnix, endUnix).
		Scan(&sum.ItemsSold)
	if err != nil { return models.Summary{}, err }

	if sum.Orders > 0 {
		sum.AvgOrderCents = sum.RevenueCents / sum.Orders
	}
	return sum, nil
}

// TopMovers: más vendidos por cantidad; desempata por ingreso y nombre
// para que el orden sea reproducible.
func (s *Store) TopMovers(ctx context.Context, startUnix, endUnix int64, limit int32) ([]models.MoverRow, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.id, p.name, SUM(si.qty) AS qty, SUM(si.line_cents) AS revenue
FROM sale_items si
JOIN sales sa ON sa.id = si.sale_id
JOIN products p ON p.id = si.product_id
WHERE sa.created_unix >= ? AND sa.created_unix < ?
GROUP BY p.id, p.name
ORDER BY qty DESC, revenue DESC, p.name ASC
LIMIT ?`, startUnix, endUnix, limit)
	if err != nil { return nil, err }
	defer rows.Close()
	return scanMovers(rows)
}

// BottomMovers parte del catálogo completo (LEFT JOIN): un producto sin
// ventas en el rango debe aparecer con qty 0, no desaparecer.
func (s *Store) BottomMovers(ctx context.Context, startUnix, endUnix int64, limit int32) ([]models.MoverRow, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.id, p.name, COALESCE(SUM(si.qty),0) AS qty, COALESCE(SUM(si.line_cents),0) AS revenue
FROM products p
LEFT JOIN (
    SELECT i.product_id, i.qty, i.line_cents
    FROM sale_items i
    JOIN sales sa ON sa.id = i.sale_id
    WHERE sa.created_unix >= ? AND sa.created_unix < ?
) si ON si.product_id = p.id
GROUP BY p.id, p.name
ORDER BY qty ASC, revenue ASC, p.name ASC
LIMIT ?`, startUnix, endUnix, limit)
	if err != nil { return nil, err }
	defer rows.Close()
	return scanMovers(rows)
}

func scanMovers(rows *sql.Rows) ([]models.MoverRow, error) {
	var out []models.MoverRow
	for rows.Next() {
		var r models.MoverRow
		if err := rows.Scan(&r.ProductID, &r.Name, &r.Qty, &r.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LowStock no lleva rango: siempre refleja el stock actual.
func (s *Store) LowStock(ctx context.Context) ([]models.LowStockItem, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.id, p.name, st.qty, p.min_stock
FROM products p
JOIN stock st ON st.product_id = p.id
WHERE st.qty <= p.min_stock
ORDER BY st.qty ASC, p.name ASC`)
	if err != nil { return nil, err }
	defer rows.Close()

	var out []models.LowStockItem
	for rows.Next() {
		var it models.LowStockItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Qty, &it.MinStock); err != nil {
			return nil, err
		}
		it.Status = models.StatusFor(it.Qty, it.MinStock)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var c int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM products`).Scan(&c)
	return c, err
}
