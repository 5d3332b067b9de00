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
	sqlitePath string
	outPath    string
)

var rootCmd = &cobra.Command{
	Use:   "build-data",
	Short: "Extract the question bank and knowledge base into the site data file",
	Long: `Reads the configured question bank and knowledge base sources, extracts
questions and knowledge items, and writes the consolidated data file used by
the quiz front end. Optionally exports the same data to SQLite.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runBuildData,
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default texsite.yaml in . or ./config)")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Also export to this SQLite database")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "Data file path (default <site_dir>/<data_file>)")
}

func runBuildData(cmd *cobra.Command, args []string) error {
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

	res, err := pipeline.NewBuilder(cfg, log).Data(ctx, pipeline.DataOptions{Out: outPath, SQLitePath: sqlitePath})
	if err != nil {
		log.Error("data build failed", "error", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Knowledge: %d | Questions: %d (%s)\n",
		res.Set.Meta.KnowledgeCount, res.Set.Meta.QuestionCount, res.Path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
