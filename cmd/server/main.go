package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/example/saathigo/internal/config"
	"github.com/example/saathigo/internal/engine"
	"github.com/example/saathigo/internal/gateway"
	httpapi "github.com/example/saathigo/internal/http"
	"github.com/example/saathigo/internal/logging"
	"github.com/example/saathigo/internal/matcher"
	"github.com/example/saathigo/internal/mirror"
	"github.com/example/saathigo/internal/storage"
	"github.com/example/saathigo/internal/stream"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	if cfg.PGDSN != "" && cfg.RunMigrations {
		if err := runMigrations(cfg.PGDSN); err != nil {
			logger.Error("migration failed", "error", err)
		}
	}

	gw := gateway.New(logger)
	eng := engine.New(gw, logger)
	eng.Params = matcher.Params{RadiusKm: cfg.MatchRadiusKm, Window: cfg.MatchWindow}
	eng.MaxRequestAge = cfg.MaxRequestAge
	gw.Engine = eng

	if cfg.PGDSN != "" {
		if arch, err := storage.NewPostgresArchive(cfg.PGDSN); err == nil {
			eng.Archive = arch
			defer arch.Close()
		} else {
			logger.Warn("postgres unavailable, falling back to memory archive", "error", err)
		}
	}
	if eng.Archive == nil {
		eng.Archive = storage.NewMemoryArchive()
	}

	if len(cfg.KafkaBrokers) > 0 {
		p := stream.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		eng.Stream = p
		defer p.Close()
	}

	if cfg.RedisAddr != "" {
		m := mirror.NewRedisMirror(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisGeoKey)
		eng.Mirror = m
		defer m.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go eng.RunReaper(ctx, cfg.ReaperInterval)

	// Full read/write timeouts would tear down long-lived websocket
	// connections, so only the header read is bounded here.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(eng, gw, logger),
		ReadHeaderTimeout: cfg.ReadTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	go func() {
		logger.Info("saathigo matching server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func runMigrations(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	b, err := os.ReadFile(filepath.Join("migrations", "001_create_matches.sql"))
	if err != nil {
		return err
	}
	if _, err := db.Exec(string(b)); err != nil {
		return err
	}
	log.Printf("migration applied: 001_create_matches.sql")
	return nil
}
