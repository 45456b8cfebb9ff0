package main

import (
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/config"
	"github.com/roomledger/roomledger/internal/server"
	"github.com/roomledger/roomledger/internal/storage/sqlite"
	"github.com/roomledger/roomledger/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	srv := server.NewServer(store, tokens, slog.Default())

	// h2c allows HTTP/2 without TLS; a TLS-terminating proxy sits in front in
	// production.
	handler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
