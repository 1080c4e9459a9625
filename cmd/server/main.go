package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netauto/internal/bootstrap"
	"netauto/internal/logger"
	httptransport "netauto/internal/transport/http"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap failed: %v\n", err)
		os.Exit(1)
	}
	log := app.Logger
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close resources failed: %v\n", err)
		}
	}()

	router := httptransport.NewRouter(app)
	server := &http.Server{
		Addr:              app.Config.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server", "server starting", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "server failed", map[string]interface{}{"error": err})
			cancel()
		}
	}()

	waitForShutdown(ctx, server, log)
}

func waitForShutdown(ctx context.Context, server *http.Server, log logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server", "server shutdown failed", map[string]interface{}{"error": err})
		return
	}
	log.Info("server", "server stopped", nil)
}
