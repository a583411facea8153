package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/logging"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Run the HTTP storefront",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	ctx = logging.IntoContext(ctx, logger)

	base, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	logger.Info("store opened", "driver", cfg.StoreDriver)

	var publisher mykafka.Publisher = mykafka.Nop{}
	var producer *mykafka.Producer
	cleanup := func() {
		if err := closeStore(); err != nil {
			logger.Error("store close error", "error", err)
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				logger.Error("kafka close error", "error", err)
			}
		}
	}
	defer cleanup()

	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create kafka producer", err)
		}
		publisher = producer
	}

	opts := service.Options{Publisher: publisher, CheckoutDelay: cfg.CheckoutDelay}
	var searcher httpserver.OrderSearcher
	if cfg.ESURL != "" {
		client, err := es.NewClient(cfg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to connect to elasticsearch", err)
		}
		idx := &search.OrderIndex{ES: client, Index: cfg.ESIndex}
		if err := idx.EnsureIndex(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to prepare order index", err)
		}
		opts.Indexer = idx
		searcher = idx
	}

	logger.Info("storefront configured", "kafka", producer != nil, "search", searcher != nil)

	reg := service.NewRegistry(base, opts)
	reg.IdleTTL = cfg.OriginIdleTTL
	reg.MaxOrigins = cfg.MaxOrigins

	e := httpserver.NewEcho(loggingmw.RequestLogger(logger))
	httpserver.Register(e, &httpserver.Deps{
		Storefront:   &httpserver.StorefrontHTTP{Registry: reg, Search: searcher},
		OriginSecret: cfg.OriginSecret,
		SecureCookie: cfg.CookieSecure,
		Ready: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return storage.Ping(ctx, base)
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.CheckoutDelay + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if reg.IdleTTL > 0 {
		go reg.Run(sigCtx, evictInterval(reg.IdleTTL))
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			logger.Error("http server error", "error", err)
			return WrapExitError(ExitCommandError, "http server failed", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func evictInterval(ttl time.Duration) time.Duration {
	if d := ttl / 4; d > time.Second {
		return d
	}
	return time.Second
}
