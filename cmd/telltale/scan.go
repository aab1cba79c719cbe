package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/marek-kar/telltale/pkg/collector"
	"github.com/marek-kar/telltale/pkg/diagnose"
	"github.com/marek-kar/telltale/pkg/logger"
	"github.com/marek-kar/telltale/pkg/model"
)

func newScanCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan IMAGE...",
		Short: "Read dashboard photos with Gemini and diagnose them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(flags)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			opts := collector.DefaultOptions()
			opts.Model = a.cfg.Gemini.Model
			opts.Timeout = a.cfg.Gemini.Timeout
			opts.Temperature = a.cfg.Gemini.Temperature

			entries := a.catalog.Entries()
			vocabulary := make([]model.IndicatorID, len(entries))
			for i, e := range entries {
				vocabulary[i] = e.ID
			}

			ex, err := collector.NewGeminiExtractor(ctx, a.cfg.Gemini.APIKey, vocabulary, opts, a.log)
			if err != nil {
				return err
			}

			items := make([]diagnose.Item, 0, len(args))
			for _, path := range args {
				img, err := collector.ReadImage(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Reading %s...\n", img.Name)
				raw, err := collector.Collect(logger.WithSource(ctx, path), ex, img, opts)
				if err != nil {
					return err
				}
				items = append(items, diagnose.Item{Source: path, Raw: raw})
			}

			d := diagnose.New(a.catalog, diagnose.WithLogger(a.log))
			results, err := d.Batch(ctx, items, a.cfg.Batch.Workers)
			if err != nil {
				return err
			}
			return a.renderer.Render(cmd.OutOrStdout(), results)
		},
	}
}
