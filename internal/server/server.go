package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/jmregala/tindahan-pos/internal/cart"
	"github.com/jmregala/tindahan-pos/internal/engine"
	"github.com/jmregala/tindahan-pos/internal/reports"
	"github.com/jmregala/tindahan-pos/internal/store"
)

type Server struct {
	store   *store.Store
	engine  *engine.Engine
	reports *reports.Engine
	snaps   *cart.SnapshotSource
	loc     *time.Location
	log     zerolog.Logger
}

func New(st *store.Store, eng *engine.Engine, rep *reports.Engine, snaps *cart.SnapshotSource, loc *time.Location, log zerolog.Logger) *Server {
	return &Server{store: st, engine: eng, reports: rep, snaps: snaps, loc: loc, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-User-Id", "X-User-Role"},
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/products", s.handleListProducts)
		r.Get("/products/{id}", s.handleGetProduct)
		// vista cacheada para validación de carrito en el cliente
		r.Get("/products/{id}/snapshot", s.handleSnapshot)
		r.Post("/sales", s.handleRecordSale)
		r.Get("/sales/{id}", s.handleGetSale)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", s.handleSummary)
			r.Get("/top-movers", s.handleTopMovers)
			r.Get("/slow-movers", s.handleBottomMovers)
			r.Get("/low-stock", s.handleLowStock)
			r.Get("/dashboard", s.handleDashboard)
		})

		// mutaciones de catálogo y chequeos de operador: solo admin
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/products", s.handleCreateProduct)
			r.Put("/products/{id}", s.handleEditProduct)
			r.Put("/products/{id}/stock", s.handleAdjustStock)
			r.Delete("/products/{id}", s.handleDeleteProduct)
			r.Get("/admin/integrity", s.handleIntegrity)
		})
	})
	return r
}

type ctxKey string

const (
	ctxUserID ctxKey = "user_id"
	ctxRole   ctxKey = "role"
)

// La identidad llega en headers puestos por el proveedor de sesión
// externo (proxy autenticador). Este core no guarda credenciales:
// solo usa el rol para la puerta de entrada de mutaciones de catálogo.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-Id")
		if userID == "" {
			writeErr(w, http.StatusUnauthorized, "missing X-User-Id")
			return
		}
		role := r.Header.Get("X-User-Role")
		if role == "" {
			role = "staff"
		}
		ctx := context.WithValue(r.Context(), ctxUserID, userID)
		ctx = context.WithValue(ctx, ctxRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(ctxRole).(string); role != "admin" {
			writeErr(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxUserID).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
