package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type CLI struct {
	Serve   ServeCommand   `cmd:"serve" help:"Start the TTS server."`
	Convert ConvertCommand `cmd:"convert" help:"Convert text to a WAV file using a TTS server."`
	RAG     RAGCommand     `cmd:"rag" help:"Convert a RAG chat answer to a WAV file using a TTS server."`
	Health  HealthCommand  `cmd:"health" help:"Check the health of a TTS server."`
	Version VersionCommand `cmd:"version" help:"Print the version of the TTS server."`
}

func main() {
	// Environment variables take precedence over the .env file.
	_ = godotenv.Load()

	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

func getLogger(level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ll,
	}))
}
