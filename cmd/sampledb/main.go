package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ryanbastic/go-sampledb/internal/config"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := newRootCmd(cfg, logger).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
