package render

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/marek-kar/telltale/pkg/diagnose"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table or json)", s)
	}
}

type Renderer interface {
	Render(w io.Writer, results []diagnose.Result) error
}

func New(f Format) Renderer {
	switch f {
	case FormatJSON:
		return &jsonRenderer{}
	default:
		return &tableRenderer{}
	}
}

type jsonRenderer struct{}

// Render writes a single result as its bare report so the wire contract is
// unchanged; several results are written as an array with their sources.
func (r *jsonRenderer) Render(w io.Writer, results []diagnose.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0].Report)
	}
	if results == nil {
		results = []diagnose.Result{}
	}
	return enc.Encode(results)
}

type tableRenderer struct{}

func (r *tableRenderer) Render(w io.Writer, results []diagnose.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "SOURCE\tSTATE\tSEVERITY\tCATEGORY\tCONFIDENCE\n")
	for _, res := range results {
		rep := res.Report
		if !rep.IsValid {
			fmt.Fprintf(tw, "%s\tINVALID\t-\t-\t-\n", res.Source)
			continue
		}
		category := rep.SystemCategory
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			res.Source,
			rep.VehicleState,
			rep.Severity,
			category,
			rep.ConfidenceScore,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, res := range results {
		rep := res.Report
		if !rep.IsValid {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", res.Source)
		fmt.Fprintf(w, "State: %s (%s)\n", rep.VehicleStateLabel, rep.SeverityLabel)
		if rep.FaultNames != "" {
			fmt.Fprintf(w, "Faults: %s\n", rep.FaultNames)
		}
		fmt.Fprintf(w, "Analysis: %s\n", rep.TechnicalAnalysis)
		fmt.Fprintf(w, "Suggestion: %s\n", rep.DrivingSuggestion)
	}
	return nil
}
