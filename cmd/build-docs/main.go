package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/texsite/internal/config"
	"github.com/dgallion1/texsite/internal/pipeline"
)

var (
	configFile string
	only       string
)

var rootCmd = &cobra.Command{
	Use:   "build-docs",
	Short: "Convert the configured markup documents into reader pages",
	Long: `Parses every configured document source, renders it to HTML with a
table of contents, and writes one reader page per document. Pages whose
content did not change are left untouched.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runBuildDocs,
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default texsite.yaml in . or ./config)")
	rootCmd.Flags().StringVar(&only, "only", "", "Build only the document with this id")
}

func runBuildDocs(cmd *cobra.Command, args []string) error {
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

	res, err := pipeline.NewBuilder(cfg, log).Docs(ctx, only)
	if err != nil {
		log.Error("docs build failed", "error", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d documents (%d headings)\n", len(res.Pages), res.Headings())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
