package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/fmuoria/resume-screener/internal/api"
	"github.com/fmuoria/resume-screener/internal/config"
	"github.com/fmuoria/resume-screener/internal/ingestion"
	"github.com/fmuoria/resume-screener/internal/judgment"
	"github.com/fmuoria/resume-screener/internal/llm"
	"github.com/fmuoria/resume-screener/internal/matching"
	"github.com/fmuoria/resume-screener/internal/parser"
	"github.com/fmuoria/resume-screener/internal/store"
)

func main() {
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	cfg.ApplyToEnv()

	ctx := context.Background()

	st, err := store.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer st.Close()

	if err := st.CreateTables(ctx); err != nil {
		logger.Fatal("failed to create tables", zap.Error(err))
	}

	// The judgment provider is optional: without it the service runs in
	// rule-based-only mode.
	var generator judgment.ContentGenerator
	llmClient, err := llm.NewVertexAIClient(ctx)
	if err != nil {
		logger.Warn("Vertex AI client unavailable, running rule-based only", zap.Error(err))
	} else {
		defer llmClient.Close()
		generator = llmClient
	}

	judge := judgment.NewService(ctx, generator, logger)
	engine := matching.NewEngine(judge, logger)

	p, err := parser.NewParser(parser.DefaultConfig(), logger)
	if err != nil {
		logger.Fatal("failed to create parser", zap.Error(err))
	}

	fileHandler := ingestion.NewFileHandler(cfg.UploadsDir)
	server := api.NewServer(st, p, engine, fileHandler, judge.Available(), logger)

	logger.Info("starting resume screener",
		zap.String("port", cfg.Port),
		zap.Bool("ai_available", judge.Available()))

	if err := http.ListenAndServe(":"+cfg.Port, server.Router()); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// newLogger picks console output with debug level when DEBUG is set, JSON
// production output otherwise.
func newLogger() (*zap.Logger, error) {
	if os.Getenv("DEBUG") == "true" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
