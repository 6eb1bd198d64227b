package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/config"
	"github.com/splitledger/splitledger/internal/server"
	"github.com/splitledger/splitledger/internal/service"
	"github.com/splitledger/splitledger/internal/storage/sqlite"
	"github.com/splitledger/splitledger/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Log.Level)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.Database.Path)

	svc := service.NewTransactionService(store)
	jwtManager := auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	router := server.NewRouter(svc, jwtManager)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
