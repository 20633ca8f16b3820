package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jmregala/tindahan-pos/internal/engine"
	"github.com/jmregala/tindahan-pos/internal/reports"
	"github.com/jmregala/tindahan-pos/internal/store"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := s.store.GetProduct(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleSnapshot sirve la vista no autoritativa con la que el cliente
// valida su carrito; sale del cache LRU, no siempre del stock vivo.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	snap, err := s.snaps.Lookup(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type recordSaleRequest struct {
	Lines []store.Line `json:"lines"`
}

func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var req recordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sale, err := s.engine.RecordSale(r.Context(), userID(r), req.Lines)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (s *Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := s.store.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

// Reportes

func (s *Server) parseRange(r *http.Request) (reports.Range, error) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" && end == "" {
		// mismo default que la vista original: últimos 30 días
		return reports.LastDays(30, s.loc), nil
	}
	return reports.DayRange(start, end, s.loc)
}

func parseLimit(r *http.Request) int32 {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return 0
	}
	return int32(n)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := s.parseRange(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	sum, err := s.reports.Summary(r.Context(), rng)
	if err != nil {
		s.fail(w, err)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(reports.FormatSummary(sum) + "\n"))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleTopMovers(w http.ResponseWriter, r *http.Request) {
	rng, err := s.parseRange(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := s.reports.TopMovers(r.Context(), rng, parseLimit(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleBottomMovers(w http.ResponseWriter, r *http.Request) {
	rng, err := s.parseRange(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := s.reports.BottomMovers(r.Context(), rng, parseLimit(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := s.reports.LowStock(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rng, err := s.parseRange(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.reports.Dashboard(r.Context(), rng, parseLimit(r)))
}

// Administración de catálogo

type createProductRequest struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	MinStock   int32  `json:"min_stock"`
	InitialQty int32  `json:"initial_qty"`
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, err := s.store.CreateProduct(r.Context(), req.Name, req.PriceCents, req.MinStock, req.InitialQty)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

type editProductRequest struct {
	PriceCents int64 `json:"price_cents"`
	MinStock   int32 `json:"min_stock"`
}

func (s *Server) handleEditProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req editProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.store.EditProduct(r.Context(), id, req.PriceCents, req.MinStock); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adjustStockRequest struct {
	Qty int32 `json:"qty"`
}

func (s *Server) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req adjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	oldQty, err := s.store.AdjustStock(r.Context(), id, req.Qty)
	if err != nil {
		s.fail(w, err)
		return
	}
	// misma difusión que un checkout: invalida snapshots y avisa al broker
	s.engine.NotifyStockChanged(id, oldQty-req.Qty, "")
	s.log.Info().Int64("product", id).Int32("old", oldQty).Int32("new", req.Qty).
		Str("by", userID(r)).Msg("stock adjusted")
	writeJSON(w, http.StatusOK, map[string]int32{"old_qty": oldQty, "new_qty": req.Qty})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := s.store.DeleteProduct(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	anomalies, err := s.store.CheckIntegrity(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	for _, a := range anomalies {
		s.log.Error().Str("kind", a.Kind).Int64("product", a.ProductID).
			Str("sale", a.SaleID).Msg("integrity anomaly")
	}
	writeJSON(w, http.StatusOK, map[string]any{"anomalies": anomalies, "count": len(anomalies)})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// fail mapea la taxonomía de errores del dominio a códigos HTTP.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var unknown store.ErrUnknownProduct
	var short store.ErrInsufficient
	var hasSales store.ErrProductHasSales
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not found")
	case errors.As(err, &unknown):
		writeErr(w, http.StatusUnprocessableEntity, unknown.Error())
	case errors.As(err, &short):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "insufficient stock",
			"product_id": short.ProductID,
			"requested":  short.Requested,
			"available":  short.Available,
		})
	case errors.As(err, &hasSales):
		writeErr(w, http.StatusConflict, hasSales.Error())
	case errors.Is(err, engine.ErrEmptyCart):
		writeErr(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, engine.ErrStoreUnavailable):
		writeErr(w, http.StatusServiceUnavailable, "store unavailable, retry")
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeErr(w, http.StatusBadRequest, err.Error())
	}
}
