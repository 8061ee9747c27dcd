package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/qyinm/prodtui/dummyjson"
	"github.com/qyinm/prodtui/logger"
	"github.com/qyinm/prodtui/mcpsrv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := mcpsrv.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	// stdout carries the protocol; logs go to stderr.
	log, err := logger.New(cfg.LogLevel, "stderr")
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	source := dummyjson.New(dummyjson.WithBaseURL(cfg.BaseURL), dummyjson.WithTimeout(cfg.Timeout))
	server := mcpsrv.NewServer(source, "dev", &mcpsrv.ServerOptions{Logger: log})

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Error("stdio mcp server failed", zap.Error(err))
		return err
	}
	return nil
}
