// Package main is the entry point for the noto backend server.
//
// Its job is deliberately small: load configuration from the environment,
// build the logger and the Gemini client, and hand everything to
// internal/server. All actual logic lives in the imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/zgjun/noto-backend/internal/generator"
	"github.com/zgjun/noto-backend/internal/server"
	"github.com/zgjun/noto-backend/internal/service"
)

func main() {
	// .env is optional — in production the variables come from the
	// deployment environment, in development from a local file.
	_ = godotenv.Load()

	logLevel := slog.LevelInfo
	if os.Getenv("LOG_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/noto.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// JWT_SECRET must be a long random string:
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		logger.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}
	geminiCfg := generator.DefaultGeminiConfig(geminiKey)
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		geminiCfg.Model = model
	}
	gemini, err := generator.NewGemini(geminiCfg)
	if err != nil {
		logger.Error("failed to create Gemini client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	study := service.DefaultStudyConfig()
	if v := os.Getenv("ITEMS_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			study.MinItems = n
		}
	}
	if v := os.Getenv("ITEMS_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= study.MinItems {
			study.MaxItems = n
		}
	}
	if v := os.Getenv("GENERATE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			study.Timeout = d
		}
	}

	cfg := server.Config{
		Port:      port,
		DBPath:    dbPath,
		JWTSecret: jwtSecret,
		Study:     study,
	}

	srv, err := server.New(cfg, gemini, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
