// Command storefront-fake serves an in-memory storefront API for local
// development of the terminal client.
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

	"github.com/pyropark/storefront/internal/fakeapi"
	"github.com/pyropark/storefront/internal/logger"
)

func main() {
	addr := flag.String("addr", envOr("STOREFRONT_FAKE_ADDR", ":8080"), "listen address")
	level := flag.String("log-level", envOr("STOREFRONT_LOG_LEVEL", "info"), "debug, info, warn or error")
	flag.Parse()

	log := logger.NewConsole(os.Stdout, logger.ParseLevel(*level))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           fakeapi.New(fakeapi.WithLogger(log)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("fake storefront API listening", "addr", *addr, "base", "/api")
	log.Info("seeded accounts",
		"admin", fakeapi.AdminEmail+" / "+fakeapi.AdminPassword,
		"customer", fakeapi.CustomerEmail+" / "+fakeapi.CustomerPassword)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
