package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pos_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreate(t *testing.T, s *Store, name string, cents int64, minStock, qty int32) int64 {
	t.Helper()
	id, err := s.CreateProduct(context.Background(), name, cents, minStock, qty)
	require.NoError(t, err)
	return id
}

func stockOf(t *testing.T, s *Store, id int64) int32 {
	t.Helper()
	p, err := s.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Qty
}
