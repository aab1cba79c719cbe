package analysis

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/marek-kar/telltale/pkg/model"
)

var ErrMalformedReport = errors.New("malformed report")

var confidencePattern = regexp.MustCompile(`^(100|[1-9]?[0-9])%$`)

// CheckReport enforces the output schema: an invalid report carries nothing
// but the flag, a valid one carries every field its state calls for.
func CheckReport(r model.DiagnosticReport) error {
	if !r.IsValid {
		if r != model.InvalidReport() {
			return fmt.Errorf("%w: invalid report with populated fields", ErrMalformedReport)
		}
		return nil
	}

	if !knownState(r.VehicleState) {
		return fmt.Errorf("%w: vehicle state %q", ErrMalformedReport, r.VehicleState)
	}
	if !knownSeverity(r.Severity) {
		return fmt.Errorf("%w: severity %q", ErrMalformedReport, r.Severity)
	}
	if r.VehicleStateLabel == "" || r.SeverityLabel == "" {
		return fmt.Errorf("%w: missing display label", ErrMalformedReport)
	}
	if r.TechnicalAnalysis == "" || r.DrivingSuggestion == "" {
		return fmt.Errorf("%w: missing analysis or suggestion", ErrMalformedReport)
	}
	if !confidencePattern.MatchString(r.ConfidenceScore) {
		return fmt.Errorf("%w: confidence %q", ErrMalformedReport, r.ConfidenceScore)
	}

	nominal := r.VehicleState == model.StateNominal
	if nominal && (r.FaultNames != "" || r.SystemCategory != "") {
		return fmt.Errorf("%w: nominal report names faults", ErrMalformedReport)
	}
	if !nominal && (r.FaultNames == "" || r.SystemCategory == "") {
		return fmt.Errorf("%w: %s report without faults", ErrMalformedReport, r.VehicleState)
	}
	return nil
}

func knownState(s model.VehicleState) bool {
	for _, known := range model.VehicleStates {
		if s == known {
			return true
		}
	}
	return false
}

func knownSeverity(s model.Severity) bool {
	for _, known := range model.Severities {
		if s == known {
			return true
		}
	}
	return false
}
