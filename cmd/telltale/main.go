package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/marek-kar/telltale/pkg/catalog"
	"github.com/marek-kar/telltale/pkg/config"
	"github.com/marek-kar/telltale/pkg/logger"
	"github.com/marek-kar/telltale/pkg/render"
)

type globalFlags struct {
	configPath  string
	catalogPath string
	format      string
	logLevel    string
}

// app is everything a subcommand needs once startup has succeeded.
type app struct {
	cfg      *config.Config
	log      *logger.ZapLogger
	catalog  *catalog.Catalog
	renderer render.Renderer
}

func main() {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "telltale",
		Short:         "Classify vehicle dashboard warning lamps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&flags.catalogPath, "catalog", "", "indicator catalog file (default: embedded)")
	root.PersistentFlags().StringVarP(&flags.format, "format", "f", string(render.FormatTable), "output format: table or json")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newDiagnoseCmd(&flags))
	root.AddCommand(newScanCmd(&flags))
	root.AddCommand(newCatalogCmd(&flags))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(flags *globalFlags) (*app, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.App.LogLevel = flags.logLevel
	}
	if flags.catalogPath != "" {
		cfg.Catalog.Path = flags.catalogPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	format, err := render.ParseFormat(flags.format)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	return &app{cfg: cfg, log: log, catalog: cat, renderer: render.New(format)}, nil
}
