package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"newsroom/internal/auth"
	"newsroom/internal/cache"
	"newsroom/internal/db"
	"newsroom/internal/handlers"
	"newsroom/internal/rating"
	"newsroom/internal/store"
	"newsroom/internal/subscription"
)

// openDB opens the configured database and brings its schema up to date.
func openDB(ctx context.Context) (*sql.DB, error) {
	dbc, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, dbc); err != nil {
		dbc.Close()
		return nil, err
	}
	return dbc, nil
}

func newHandler(dbc *sql.DB) (http.Handler, error) {
	s := store.New(dbc)
	identity := auth.NewIdentity(dbc)
	lru, err := cache.NewLRU(cfg.Cache.Size)
	if err != nil {
		return nil, err
	}
	h := handlers.New(handlers.Services{
		Store:    s,
		Sessions: auth.NewManager(dbc, cfg.Session.MaxAge),
		Identity: identity,
		Promoter: auth.NewPromoter(identity, s, logger),
		Ratings:  rating.NewEngine(s, logger),
		Registry: subscription.NewRegistry(s, logger),
		Detail:   cache.NewDetail(lru, s, cfg.Cache.InvalidateOnWrite, logger),
		Log:      logger,
	})
	return h.Routes(), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbc, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer dbc.Close()

	handler, err := newHandler(dbc)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("db", cfg.Database.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
