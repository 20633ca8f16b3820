package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // driver 100% Go
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	// _pragma busy_timeout para evitar "database is locked"; WAL para
	// lectores concurrentes con el escritor.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout=5000&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(2 * time.Minute)
	// una sola conexión: el check-and-decrement de cada checkout queda
	// serializado frente a cualquier otro escritor del proceso
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS products(
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  name         TEXT NOT NULL,
  price_cents  INTEGER NOT NULL,
  min_stock    INTEGER NOT NULL DEFAULT 5,
  created_unix INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS stock(
  product_id   INTEGER PRIMARY KEY REFERENCES products(id),
  qty          INTEGER NOT NULL DEFAULT 0,
  updated_unix INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS sales(
  id           TEXT PRIMARY KEY,
  user_id      TEXT NOT NULL,
  total_cents  INTEGER NOT NULL,
  created_unix INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS sale_items(
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  sale_id     TEXT NOT NULL REFERENCES sales(id),
  product_id  INTEGER NOT NULL,
  name        TEXT NOT NULL,
  qty         INTEGER NOT NULL,
  unit_cents  INTEGER NOT NULL,
  line_cents  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sales_created ON sales(created_unix);
CREATE INDEX IF NOT EXISTS idx_items_sale ON sale_items(sale_id);
CREATE INDEX IF NOT EXISTS idx_items_product ON sale_items(product_id);
CREATE INDEX IF NOT EXISTS idx_stock_updated ON stock(updated_unix);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

// seed inicial opcional (para pruebas y demos)
func (s *Store) Seed(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil { return err }
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	seeds := []struct {
		name  string
		cents int64
		min   int32
		qty   int32
	}{
		{"Instant Noodles", 1550, 10, 40},
		{"Canned Sardines", 2800, 8, 12},
		{"3-in-1 Coffee", 950, 15, 0},
		{"Laundry Soap", 1275, 5, 30},
		{"Cooking Oil 1L", 16500, 3, 2},
	}
	for _, v := range seeds {
		res, err := tx.ExecContext(ctx, `
INSERT INTO products(name, price_cents, min_stock, created_unix)
SELECT ?,?,?,?
WHERE NOT EXISTS (SELECT 1 FROM products WHERE name=?)`,
			v.name, v.cents, v.min, now, v.name)
		if err != nil { return err }
		id, err := res.LastInsertId()
		if err != nil { return err }
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO stock(product_id, qty, updated_unix) VALUES(?,?,?)
ON CONFLICT(product_id) DO NOTHING`, id, v.qty, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}
