package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmregala/tindahan-pos/internal/models"
)

var ErrNotFound = errors.New("not found")

// ErrProductHasSales bloquea el borrado de productos con historial de
// ventas: el ledger es inmutable y sus líneas deben seguir resolviendo.
type ErrProductHasSales struct{ ProductID int64 }

func (e ErrProductHasSales) Error() string {
	return fmt.Sprintf("product %d is referenced by sale history", e.ProductID)
}

// ListProducts devuelve catálogo + stock, ordenado por frescura del
// stock (igual que el listado de venta) y con filtro opcional por nombre.
func (s *Store) ListProducts(ctx context.Context, search string) ([]models.ProductView, error) {
	base := `
SELECT p.id, p.name, p.price_cents, p.min_stock, p.created_unix, st.qty, st.updated_unix
FROM products p
JOIN stock st ON st.product_id = p.id`
	var rows *sql.Rows
	var err error
	if q := strings.TrimSpace(search); q != "" {
		rows, err = s.db.QueryContext(ctx, base+`
WHERE lower(p.name) LIKE ?
ORDER BY st.updated_unix DESC, p.id DESC`, "%"+strings.ToLower(q)+"%")
	} else {
		rows, err = s.db.QueryContext(ctx, base+`
ORDER BY st.updated_unix DESC, p.id DESC`)
	}
	if err != nil { return nil, err }
	defer rows.Close()

	var out []models.ProductView
	for rows.Next() {
		var v models.ProductView
		if err := rows.Scan(&v.ID, &v.Name, &v.PriceCents, &v.MinStock, &v.CreatedUnix, &v.Qty, &v.UpdatedUnix); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.ProductView, error) {
	var v models.ProductView
	err := s.db.QueryRowContext(ctx, `
SELECT p.id, p.name, p.price_cents, p.min_stock, p.created_unix, st.qty, st.updated_unix
FROM products p
JOIN stock st ON st.product_id = p.id
WHERE p.id = ?`, id).
		Scan(&v.ID, &v.Name, &v.PriceCents, &v.MinStock, &v.CreatedUnix, &v.Qty, &v.UpdatedUnix)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil { return nil, err }
	return &v, nil
}

// CreateProduct inserta producto y su fila de stock en una sola
// transacción: nunca existe producto sin stock asociado.
func (s *Store) CreateProduct(ctx context.Context, name string, priceCents int64, minStock, initialQty int32) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, errors.New("product name required")
	}
	if priceCents < 0 || minStock < 0 || initialQty < 0 {
		return 0, errors.New("price, min stock and initial stock must be non-negative")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil { return 0, err }
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx, `
INSERT INTO products(name, price_cents, min_stock, created_unix) VALUES(?,?,?,?)`,
		name, priceCents, minStock, now)
	if err != nil { return 0, err }
	id, err := res.LastInsertId()
	if err != nil { return 0, err }

	if _, err := tx.ExecContext(ctx, `
INSERT INTO stock(product_id, qty, updated_unix) VALUES(?,?,?)`, id, initialQty, now); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil { return 0, err }
	return id, nil
}

// EditProduct toca precio y umbral, campos disjuntos del stock: puede
// correr en paralelo con checkouts sin pisar decrementos.
func (s *Store) EditProduct(ctx context.Context, id int64, priceCents int64, minStock int32) error {
	if priceCents < 0 || minStock < 0 {
		return errors.New("price and min stock must be non-negative")
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE products SET price_cents=?, min_stock=? WHERE id=?`, priceCents, minStock, id)
	if err != nil { return err }
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock es la sobreescritura incondicional del admin.
// Devuelve la cantidad anterior para el registro de auditoría.
func (s *Store) AdjustStock(ctx context.Context, id int64, newQty int32) (oldQty int32, err error) {
	if newQty < 0 {
		return 0, errors.New("stock must be non-negative")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil { return 0, err }
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `SELECT qty FROM stock WHERE product_id=?`, id).Scan(&oldQty)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil { return 0, err }

	if _, err = tx.ExecContext(ctx, `
UPDATE stock SET qty=?, updated_unix=? WHERE product_id=?`, newQty, time.Now().Unix(), id); err != nil {
		return 0, err
	}
	return oldQty, tx.Commit()
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil { return err }
	defer func() { _ = tx.Rollback() }()

	var refs int64
	if err := tx.QueryRowContext(ctx, `
SELECT COUNT(1) FROM sale_items WHERE product_id=?`, id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrProductHasSales{ProductID: id}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stock WHERE product_id=?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id=?`, id)
	if err != nil { return err }
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// Anomaly es una invariante violada encontrada en los datos. Se
// reporta, nunca se corrige en silencio.
type Anomaly struct {
	Kind      string `json:"kind"`
	ProductID int64  `json:"product_id,omitempty"`
	SaleID    string `json:"sale_id,omitempty"`
	Detail    string `json:"detail"`
}

func (s *Store) CheckIntegrity(ctx context.Context) ([]Anomaly, error) {
	var out []Anomaly

	rows, err := s.db.QueryContext(ctx, `SELECT product_id, qty FROM stock WHERE qty < 0`)
	if err != nil { return nil, err }
	for rows.Next() {
		var id int64
		var qty int32
		if err := rows.Scan(&id, &qty); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, Anomaly{
			Kind:      "negative_stock",
			ProductID: id,
			Detail:    fmt.Sprintf("stock qty %d below zero", qty),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil { return nil, err }

	rows, err = s.db.QueryContext(ctx, `
SELECT si.sale_id, si.product_id
FROM sale_items si
LEFT JOIN products p ON p.id = si.product_id
WHERE p.id IS NULL`)
	if err != nil { return nil, err }
	defer rows.Close()
	for rows.Next() {
		var saleID string
		var pid int64
		if err := rows.Scan(&saleID, &pid); err != nil { return nil, err }
		out = append(out, Anomaly{
			Kind:      "orphan_sale_line",
			ProductID: pid,
			SaleID:    saleID,
			Detail:    "sale line references a deleted product",
		})
	}
	return out, rows.Err()
}
