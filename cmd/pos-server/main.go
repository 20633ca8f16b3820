package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jmregala/tindahan-pos/internal/cart"
	"github.com/jmregala/tindahan-pos/internal/config"
	"github.com/jmregala/tindahan-pos/internal/engine"
	"github.com/jmregala/tindahan-pos/internal/rabbit"
	"github.com/jmregala/tindahan-pos/internal/reports"
	"github.com/jmregala/tindahan-pos/internal/server"
	"github.com/jmregala/tindahan-pos/internal/store"
)

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := config.LoadConfig()
	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("db", cfg.DBPath).
		Str("rabbit", cfg.RabbitURL).
		Msg("starting pos server")

	// Store
	st, err := store.Open(cfg.DBPath)
	must(err)
	defer st.Close()

	if cfg.SeedOnStart {
		must(st.Seed(context.Background()))
		log.Info().Msg("seeded initial catalog")
	}

	loc := time.Local
	if cfg.ReportTZ != "" && cfg.ReportTZ != "Local" {
		loc, err = time.LoadLocation(cfg.ReportTZ)
		must(err)
	}

	// cache de snapshots para la validación consultiva del carrito;
	// los checkouts lo invalidan vía el notifier
	snaps := cart.NewSnapshotSource(st, cfg.SnapshotCacheSize, cfg.SnapshotTTL)
	notifiers := engine.Notifiers{snaps}

	// Rabbit opcional: sin broker el checkout funciona igual, solo no
	// se publican avisos de stock
	if cfg.RabbitURL != "" {
		rb, err := rabbit.New(cfg.RabbitURL, cfg.Exchange, log.Logger)
		must(err)
		defer rb.Close()
		notifiers = append(notifiers, rb)
		log.Info().Str("exchange", cfg.Exchange).Msg("rabbit connected")
	}

	// digest de stock bajo al arrancar, para el operador
	if items, err := st.LowStock(context.Background()); err == nil && len(items) > 0 {
		log.Warn().Msg(reports.FormatLowStock(items))
	}

	eng := engine.New(st, notifiers, log.Logger)
	rep := reports.New(st, log.Logger)
	srv := server.New(st, eng, rep, snaps, loc, log.Logger)

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Router(),
	}

	// Señales para apagado limpio
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		log.Warn().Msg("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)
	}()

	log.Info().Msg("HTTP listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server")
	}
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
