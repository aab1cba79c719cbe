package diagnose

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/marek-kar/telltale/pkg/analysis"
	"github.com/marek-kar/telltale/pkg/catalog"
	"github.com/marek-kar/telltale/pkg/compose"
	"github.com/marek-kar/telltale/pkg/logger"
	"github.com/marek-kar/telltale/pkg/model"
)

// Diagnoser runs validation, classification and composition for one
// observation. It holds no per-request state and is safe for concurrent use.
type Diagnoser struct {
	validator *analysis.Validator
	engine    *analysis.Engine
	composer  *compose.Composer
	log       logger.Logger
}

type Option func(*Diagnoser)

func WithLogger(l logger.Logger) Option {
	return func(d *Diagnoser) { d.log = l }
}

func WithEngine(e *analysis.Engine) Option {
	return func(d *Diagnoser) { d.engine = e }
}

func New(c *catalog.Catalog, opts ...Option) *Diagnoser {
	d := &Diagnoser{
		validator: analysis.NewValidator(c),
		engine:    analysis.DefaultEngine(),
		composer:  compose.NewComposer(c),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Diagnose never fails: anything that cannot be classified yields the
// invalid report.
func (d *Diagnoser) Diagnose(ctx context.Context, raw model.RawObservation) model.DiagnosticReport {
	if logger.RequestID(ctx) == "" {
		ctx = logger.WithRequestID(ctx, uuid.NewString())
	}

	obs, verdict := d.validator.Validate(raw)
	if !verdict.Valid() {
		d.log.Infof(ctx, "observation rejected: %s", verdict)
		return model.InvalidReport()
	}

	res, err := d.engine.Classify(obs)
	if err != nil {
		d.log.Errorf(ctx, "classify: %v", err)
		return model.InvalidReport()
	}
	d.log.Debugf(ctx, "rule %s matched %d indicator(s): %s/%s", res.Rule, obs.IndicatorCount(), res.VehicleState, res.Severity)

	report, err := d.composer.Compose(obs, res)
	if err != nil {
		d.log.Errorf(ctx, "compose: %v", err)
		return model.InvalidReport()
	}
	if err := analysis.CheckReport(report); err != nil {
		d.log.Errorf(ctx, "report check: %v", err)
		return model.InvalidReport()
	}
	return report
}

type Item struct {
	Source string
	Raw    model.RawObservation
}

type Result struct {
	Source string                 `json:"source"`
	Report model.DiagnosticReport `json:"report"`
}

// Batch diagnoses items with at most workers running at once. Results keep
// the order of items.
func (d *Diagnoser) Batch(ctx context.Context, items []Item, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ictx := logger.WithSource(gctx, item.Source)
			results[i] = Result{Source: item.Source, Report: d.Diagnose(ictx, item.Raw)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	return results, nil
}
