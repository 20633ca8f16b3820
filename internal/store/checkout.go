package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jmregala/tindahan-pos/internal/models"
)

// Line es una línea de venta ya validada por el motor de checkout.
type Line struct {
	ProductID int64 `json:"product_id"`
	Qty       int32 `json:"qty"`
}

type ErrUnknownProduct struct{ ProductID int64 }

func (e ErrUnknownProduct) Error() string {
	return fmt.Sprintf("unknown product %d", e.ProductID)
}

type ErrInsufficient struct {
	ProductID int64
	Requested int32
	Available int32
}

func (e ErrInsufficient) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// RecordSale ejecuta el commit atómico del checkout: valida cada línea
// contra el stock vivo, decrementa condicionalmente y persiste la venta
// con sus líneas, todo en una transacción. Cualquier falla deja el
// stock intacto para todas las líneas.
//
// El precio unitario se lee dentro de la transacción: queda congelado
// al momento del commit, no al momento de armar el carrito.
func (s *Store) RecordSale(ctx context.Context, userID string, lines []Line) (*models.Sale, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil { return nil, err }
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	sale := &models.Sale{
		ID:          uuid.NewString(),
		UserID:      userID,
		CreatedUnix: now,
	}

	// 1) Validar todas las líneas antes de tocar nada
	for _, ln := range lines {
		var name string
		var unitCents int64
		var avail int32
		err := tx.QueryRowContext(ctx, `
SELECT p.name, p.price_cents, st.qty
FROM products p
JOIN stock st ON st.product_id = p.id
WHERE p.id = ?`, ln.ProductID).Scan(&name, &unitCents, &avail)
		if err == sql.ErrNoRows {
			return nil, ErrUnknownProduct{ProductID: ln.ProductID}
		}
		if err != nil { return nil, err }
		if avail < ln.Qty {
			return nil, ErrInsufficient{ProductID: ln.ProductID, Requested: ln.Qty, Available: avail}
		}
		line := models.SaleLine{
			SaleID:    sale.ID,
			ProductID: ln.ProductID,
			Name:      name,
			Qty:       ln.Qty,
			UnitCents: unitCents,
			LineCents: unitCents * int64(ln.Qty),
		}
		sale.Lines = append(sale.Lines, line)
		sale.TotalCents += line.LineCents
	}

	// 2) Decrementos condicionales: qty >= ? protege contra una lectura
	// obsoleta; si no afecta fila, alguien ganó la carrera y abortamos.
	for _, ln := range lines {
		res, err := tx.ExecContext(ctx, `
UPDATE stock SET qty = qty - ?, updated_unix = ?
WHERE product_id = ? AND qty >= ?`, ln.Qty, now, ln.ProductID, ln.Qty)
		if err != nil { return nil, err }
		if n, _ := res.RowsAffected(); n == 0 {
			var avail int32
			if err := tx.QueryRowContext(ctx, `SELECT qty FROM stock WHERE product_id=?`, ln.ProductID).Scan(&avail); err != nil {
				return nil, err
			}
			return nil, ErrInsufficient{ProductID: ln.ProductID, Requested: ln.Qty, Available: avail}
		}
	}

	// 3) Venta + líneas, durables en el mismo commit que los decrementos
	if _, err := tx.ExecContext(ctx, `
INSERT INTO sales(id, user_id, total_cents, created_unix) VALUES(?,?,?,?)`,
		sale.ID, sale.UserID, sale.TotalCents, sale.CreatedUnix); err != nil {
		return nil, err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO sale_items(sale_id, product_id, name, qty, unit_cents, line_cents)
VALUES(?,?,?,?,?,?)`)
	if err != nil { return nil, err }
	defer stmt.Close()
	for i := range sale.Lines {
		ln := &sale.Lines[i]
		res, err := stmt.ExecContext(ctx, ln.SaleID, ln.ProductID, ln.Name, ln.Qty, ln.UnitCents, ln.LineCents)
		if err != nil { return nil, err }
		ln.ID, _ = res.LastInsertId()
	}

	if err := tx.Commit(); err != nil { return nil, err }
	return sale, nil
}

func (s *Store) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.QueryRowContext(ctx, `
SELECT id, user_id, total_cents, created_unix FROM sales WHERE id=?`, id).
		Scan(&sale.ID, &sale.UserID, &sale.TotalCents, &sale.CreatedUnix)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil { return nil, err }

	rows, err := s.db.QueryContext(ctx, `
SELECT id, sale_id, product_id, name, qty, unit_cents, line_cents
FROM sale_items WHERE sale_id=? ORDER BY id`, id)
	if err != nil { return nil, err }
	defer rows.Close()
	for rows.Next() {
		var ln models.SaleLine
		if err := rows.Scan(&ln.ID, &ln.SaleID, &ln.ProductID, &ln.Name, &ln.Qty, &ln.UnitCents, &ln.LineCents); err != nil {
			return nil, err
		}
		sale.Lines = append(sale.Lines, ln)
	}
	if err := rows.Err(); err != nil { return nil, err }
	return &sale, nil
}
