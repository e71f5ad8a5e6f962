// Package main is the entry point for the photofeed server.
//
// Its job is deliberately small: load configuration, build the logger, hand
// both to the server package and block. All actual logic lives in
// internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/sakif/photofeed/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// .env is a local-dev convenience; in production the variables come from
	// the real environment and the file simply doesn't exist.
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded configuration from .env")
	}

	var cfg server.Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The SQLite file may live in a directory that doesn't exist yet.
	if dbDir := filepath.Dir(cfg.DBPath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
