package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipsync/internal/app/server/api"
	"clipsync/internal/app/server/config"
	"clipsync/internal/infrastructure/storage/postgres"
	"clipsync/internal/utils/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	conf := config.MustLoad()
	log := logger.New(conf.Env)
	log.Info("starting clipsync server", "env", conf.Env, "address", conf.Server.RunAddress)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := postgres.New(ctx, conf.DB, log)
	if err != nil {
		log.Error("failed to init storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	services, err := api.NewServices(storage, conf, log)
	if err != nil {
		log.Error("failed to init services", "error", err)
		storage.Close()
		os.Exit(1)
	}
	srv := &http.Server{
		Addr:              conf.Server.RunAddress,
		Handler:           api.New(ctx, services, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return services.Devices.RunSweeper(gctx, conf.Devices.SweepInterval)
	})
	g.Go(func() error {
		return services.Backup.RunScheduler(gctx, conf.Backup.Tick)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
