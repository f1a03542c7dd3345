// serve.go implements the "storysense serve" command, the HTTP shell.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storysense-dev/storysense/internal/config"
	"github.com/storysense-dev/storysense/internal/export"
	"github.com/storysense-dev/storysense/internal/httpapi"
	"github.com/storysense-dev/storysense/internal/session"
	"github.com/storysense-dev/storysense/internal/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve one rating session over HTTP",
	Long: `Start an HTTP server hosting a single rating session. Load a dataset
with POST /dataset, rate with POST /ratings and download the ratings
with GET /export.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr    string
	serveRater   string
	serveDataset string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8501)")
	serveCmd.Flags().StringVar(&serveRater, "rater", "", "Rater name recorded in the export")
	serveCmd.Flags().StringVar(&serveDataset, "dataset", "", "Dataset file to load on start")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	root, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveRater != "" {
		cfg.Rater = serveRater
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher, closeSinks, err := export.FromConfig(ctx, root, cfg, "")
	if err != nil {
		return err
	}
	defer closeSinks()

	ctrl := workflow.New(session.NewStore())
	ctrl.Store().SetRaterName(cfg.Rater)
	if serveDataset != "" {
		payload, err := os.ReadFile(serveDataset)
		if err != nil {
			return fmt.Errorf("reading dataset: %w", err)
		}
		if err := ctrl.Load(payload); err != nil && !errors.Is(err, workflow.ErrEmptyDataset) {
			return err
		}
		logger.Info("dataset preloaded",
			zap.String("path", serveDataset),
			zap.Int("stories", ctrl.Store().Dataset().Len()))
	}

	srv := httpapi.NewServer(ctrl, publisher, openEventLog(root, cfg), logger).HTTPServer(cfg.Server.Addr)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", cfg.Server.Addr), zap.String("session", ctrl.Store().ID()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
