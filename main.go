package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hxl333/mbti-bot/assessor"
	"github.com/hxl333/mbti-bot/config"
	"github.com/hxl333/mbti-bot/llm"
	"github.com/hxl333/mbti-bot/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.New[config.App]("MBTI")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// A missing credential keeps the service up with the model not ready,
	// so the UI can still load and show a friendly error.
	var gateway llm.Gateway
	if err := cfg.Validate(); err != nil {
		slog.Error("model disabled", "error", err)
	} else {
		gw, err := llm.NewGeminiGateway(ctx, cfg)
		if err != nil {
			slog.Error("failed to initialize gemini gateway, model disabled", "error", err)
		} else {
			gateway = gw
		}
	}

	// AnalysisKeywords carries an envconfig default, so only treat it as an
	// operator override when the variable is actually set.
	_, phrasesSet := os.LookupEnv("MBTI_ANALYSIS_KEYWORDS")
	if !phrasesSet {
		_, phrasesSet = os.LookupEnv("ANALYSIS_KEYWORDS")
	}
	keywords, err := assessor.ResolveKeywords(cfg.KeywordsFile, cfg.AnalysisKeywords, phrasesSet)
	if err != nil {
		slog.Warn("failed to load keywords file, using defaults", "path", cfg.KeywordsFile, "error", err)
	}

	sessions := server.NewSessionManager(gateway, assessor.Options{
		MinQuestionsBeforeAnalysis: cfg.MinQuestionsBeforeAnalysis,
		Keywords:                   keywords,
	}, logger)

	router := server.NewRouter(server.NewHandler(sessions, logger), []string{"*"})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.Addr, "model", cfg.Model, "model_ready", sessions.Ready())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
