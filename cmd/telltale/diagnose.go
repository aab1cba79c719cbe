package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/marek-kar/telltale/pkg/diagnose"
	"github.com/marek-kar/telltale/pkg/logger"
	"github.com/marek-kar/telltale/pkg/model"
)

func newDiagnoseCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose FILE...",
		Short: "Diagnose observation JSON files (- reads stdin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(flags)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			items, err := readItems(ctx, args, cmd.InOrStdin(), a.log)
			if err != nil {
				return err
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

// readItems fails only when a file cannot be read. A file that is not a JSON
// object yields an empty observation, which diagnoses as invalid.
func readItems(ctx context.Context, paths []string, stdin io.Reader, log logger.Logger) ([]diagnose.Item, error) {
	items := make([]diagnose.Item, 0, len(paths))
	for _, p := range paths {
		var (
			data []byte
			err  error
		)
		if p == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(p)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}

		var raw model.RawObservation
		if err := json.Unmarshal(data, &raw); err != nil {
			log.Warnf(logger.WithSource(ctx, p), "decode observation: %v", err)
			raw = model.RawObservation{}
		}
		items = append(items, diagnose.Item{Source: p, Raw: raw})
	}
	return items, nil
}
