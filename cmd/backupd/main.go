// Command backupd hosts the HTTP control plane and the /metrics endpoint
// over net/http. It registers no scheduler triggers itself; profile
// updates and deletes spawn the backupctl subcommands that do. Grounded
// on original_source/server/src/main.rs's
// startup sequence (parse args, init logger, load general config, mount
// routes) and on daemon-style main.go flag/env wiring and graceful
// shutdown.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"backupsdk/api"
	"backupsdk/internal/store"
	"backupsdk/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	generalConfigPath := flag.String("general-config", "./general_config.json", "path to general config file")
	addr := flag.String("addr", ":8080", "address to listen on")
	logLevel := flag.String("log-level", "info", "log level: debug|info|warn|error")
	flag.Parse()

	log := logger.NewWithConfig(logger.Config{Level: *logLevel, Format: "json"})

	gcfg, err := store.LoadGeneralConfig(*generalConfigPath)
	if err != nil {
		log.Error("couldn't load general config", "error", err)
		return 1
	}
	log.Info("loaded general config", "profiles_dir", gcfg.ProfilesDir)

	exe, err := os.Executable()
	if err != nil {
		log.Error("couldn't resolve own executable path", "error", err)
		return 1
	}

	st := store.New(gcfg.ProfilesDir)
	srv := api.New(st, log, exe)

	mux := srv.Routes()
	mux.Handle("GET /metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", *addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server exited with error", "error", err)
			return 1
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
			return 1
		}
	}

	fmt.Fprintln(os.Stdout, "backupd stopped")
	return 0
}
