// Command o1chat-server runs a chat mirror speaking the polling HTTP protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/o1chat/internal/limiter"
	"github.com/and161185/o1chat/internal/migrate"
	"github.com/and161185/o1chat/internal/repository"
	"github.com/and161185/o1chat/internal/repository/memory"
	"github.com/and161185/o1chat/internal/repository/postgres"
	"github.com/and161185/o1chat/internal/server/httpapi"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses flags, picks a storage backend and serves the mirror API.
func main() {
	// Flags
	addr := flag.String("addr", ":8080", "listen address")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (empty: in-memory store)")
	runMigrations := flag.Bool("migrate", true, "apply migrations on startup (postgres only)")
	rate := flag.Int("rate", 300, "requests per minute per client address (0 disables)")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	var (
		users    repository.UserRepository
		messages repository.MessageRepository
	)
	if *dsn == "" {
		logger.Info("using in-memory store")
		st := memory.New()
		users, messages = st, st
	} else {
		if *runMigrations {
			if err := migrate.Up(ctx, *dsn, logger); err != nil {
				logger.Fatal("migrate up", zap.Error(err))
			}
		}
		db, err := postgres.New(ctx, *dsn)
		if err != nil {
			logger.Fatal("postgres.New", zap.Error(err))
		}
		defer db.Close()
		if err := db.Ping(ctx); err != nil {
			logger.Fatal("postgres ping", zap.Error(err))
		}
		users, messages = postgres.NewUserRepo(db), postgres.NewMessageRepo(db)
	}

	api := httpapi.New(users, messages, logger)
	if *rate > 0 {
		api.WithLimiter(limiter.NewWindow(time.Minute, *rate))
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
