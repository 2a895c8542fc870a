package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/modelhub-web/internal/httpserver"
	"github.com/angeloszaimis/modelhub-web/internal/httpx"
	"github.com/angeloszaimis/modelhub-web/internal/mockapi"
	"github.com/angeloszaimis/modelhub-web/pkg/logger"
)

var (
	mockAddr      string
	mockEndpoints []string
)

var mockapiCmd = &cobra.Command{
	Use:   "mockapi",
	Short: "Run an in-memory model API for local development",
	RunE:  runMockAPI,
}

func init() {
	mockapiCmd.Flags().StringVar(&mockAddr, "addr", "127.0.0.1:8000", "Listen address")
	mockapiCmd.Flags().StringSliceVar(&mockEndpoints, "endpoint", []string{"demo"}, "Endpoint names to serve")
	rootCmd.AddCommand(mockapiCmd)
}

func runMockAPI(cmd *cobra.Command, _ []string) error {
	log := logger.New("info", false, "dev").With(slog.String("component", "mockapi"))

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	api := mockapi.New(log, mockEndpoints...)
	srv, err := httpserver.New(mockAddr, httpx.WithLogging(log, api.Handler()), httpserver.Timeouts{})
	if err != nil {
		return err
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Mock model API listening",
		slog.String("addr", mockAddr),
		slog.Any("endpoints", mockEndpoints))

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-srvErrCh:
		return err
	}
}
