package main

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

	"github.com/geocoder89/blogapi/internal/config"
	"github.com/geocoder89/blogapi/internal/db"
	httpx "github.com/geocoder89/blogapi/internal/http"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/geocoder89/blogapi/internal/repo/memory"
	"github.com/geocoder89/blogapi/internal/repo/postgres"
	"github.com/geocoder89/blogapi/internal/security"
	"github.com/geocoder89/blogapi/internal/service"
)

type stores struct {
	users    service.UserStore
	articles service.ArticleStore
	ping     func(ctx context.Context) error
	close    func()
}

func main() {
	// Load the config set up
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, os.Stdout)

	tracingService := ""
	if cfg.OTelEnabled {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.OTelServiceName,
			Endpoint:    cfg.OTelEndpoint,
			Env:         cfg.Env,
		})
		cancel()

		if err != nil {
			log.Error("tracing disabled", "err", err)
		} else {
			tracingService = cfg.OTelServiceName
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	prom := observability.NewProm()

	st, err := openStores(cfg, prom, log)
	if err != nil {
		log.Error("storage unavailable", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}
	defer st.close()

	credentials, err := service.NewCredentialService(st.users, security.NewHasher(cfg.BcryptCost), log)
	if err != nil {
		log.Error("credential service", "err", err)
		os.Exit(1)
	}

	router := httpx.NewRouter(httpx.RouterDeps{
		Env:                cfg.Env,
		Log:                log,
		Prom:               prom,
		Ping:               st.ping,
		Credentials:        credentials,
		Articles:           service.NewArticleService(st.articles, log),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		TracingService:     tracingService,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")
	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func openStores(cfg config.Config, prom *observability.Prom, log *slog.Logger) (stores, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		articles := memory.NewArticlesRepo()
		log.Warn("using in-memory storage, data is lost on restart")

		return stores{
			users:    memory.NewUsersRepo(),
			articles: articles,
			ping:     articles.Ping,
			close:    func() {},
		}, nil

	case config.StoragePostgres:
		ctx, cancel := config.WithTimeout(30 * time.Second)
		defer cancel()

		pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return stores{}, fmt.Errorf("connect: %w", err)
		}

		if err := db.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("migrate: %w", err)
		}

		return stores{
			users:    postgres.NewUsersRepo(pool, prom),
			articles: postgres.NewArticlesRepo(pool, prom),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
