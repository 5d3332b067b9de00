package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/texsite/internal/api"
	"github.com/dgallion1/texsite/internal/config"
	"github.com/dgallion1/texsite/internal/pipeline"
	"github.com/dgallion1/texsite/internal/storage"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the built site and rebuild it on request",
	Long: `Serves the site directory, exposes the latest data set and row
statistics as JSON, and queues full rebuilds through POST /api/build when an
API key is configured.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default texsite.yaml in . or ./config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional SQLite export for tag lookups.
	var store storage.ExportStore
	if cfg.SQLitePath != "" {
		db, err := storage.New(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		defer db.Close()
		if err := storage.Migrate(db); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
		store = storage.NewExportRepo(db)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, log)
	if err := orch.LoadExisting(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("existing data set not loaded", "error", err)
	}
	orch.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, store, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. The pipeline stops only after in-flight requests
	// have drained, so no handler can submit to a closed queue.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting texsite server", "port", cfg.Port, "site_dir", cfg.SiteDir, "rebuilds", cfg.APIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		orch.Stop()
		return err
	}
	<-drained
	orch.Stop()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
