package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/ganttline/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve <source>",
	Short: "Serve hierarchy queries over HTTP",
	Long: `Load a plan once and answer /tasks, /tasks/{id}/ancestors|children|siblings|descendants
and /snapshots queries until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

var (
	serveAddr      string
	serveNoHistory bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "Listen address (default server.addr)")
	serveCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "Do not expose the history database")
}

func runServe(cmd *cobra.Command, args []string) error {
	records, source, err := loadPlan(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	st, err := openHistory(serveNoHistory)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	svc := service.NewService(source, records, st)
	server := service.NewServer(svc, st, addr, logger)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		err := server.Start()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
	return nil
}
