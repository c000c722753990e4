package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jrygg01/FrameForge/internal/api"
	"github.com/Jrygg01/FrameForge/internal/config"
	"github.com/Jrygg01/FrameForge/internal/generate"
	"github.com/Jrygg01/FrameForge/internal/llm/openai"
	"github.com/Jrygg01/FrameForge/internal/observability/otelx"
	"github.com/Jrygg01/FrameForge/internal/transcript"
)

func main() {
	env := config.LoadEnv()

	listenAddr := flag.String("listen", env.ListenAddr, "address to serve the HTTP API on")
	promptsPath := flag.String("prompts", env.PromptsPath, "optional YAML file overriding the built-in prompts")
	transcriptPath := flag.String("transcripts", env.TranscriptPath, "directory for session transcripts (empty disables them)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otelx.Init(ctx, logger, env.OTel)
	if err != nil {
		log.Fatalf("failed to init otel: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("otel shutdown failed", "error", err)
		}
	}()

	prompts, err := config.LoadPrompts(*promptsPath)
	if err != nil {
		log.Fatalf("failed to load prompts: %v", err)
	}

	if env.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; requests will fail unless the endpoint needs no key", "base_url", env.OpenAI.BaseURL)
	}
	client := openai.NewClient(env.OpenAI)

	gen, err := generate.New(client, prompts, generate.Config{
		Model:           env.OpenAI.Model,
		MaxOutputTokens: env.MaxOutputTokens,
		BudgetKnob:      config.MaxOutputTokensEnv,
	}, generate.KeywordIntent{}, logger)
	if err != nil {
		log.Fatalf("failed to build orchestrator: %v", err)
	}

	var transcripts api.Transcripts
	if *transcriptPath != "" {
		store, err := transcript.Open(*transcriptPath)
		if err != nil {
			log.Fatalf("failed to open transcripts: %v", err)
		}
		defer store.Close()
		transcripts = store
	}

	server := api.NewServer(api.Config{
		AllowedOrigin:  env.AllowedOrigin,
		Production:     env.Production,
		RequestTimeout: env.RequestTimeout,
	}, gen, transcripts, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting frameforge",
			"addr", *listenAddr,
			"model", env.OpenAI.Model,
			"max_output_tokens", env.MaxOutputTokens,
			"allowed_origin", env.AllowedOrigin,
			"transcripts", *transcriptPath != "",
		)
		errCh <- server.Start(*listenAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", "error", err)
	}
}
