package model

type VehicleState string

const (
	StateSelfCheck    VehicleState = "SELF_CHECK"
	StateStaticFault  VehicleState = "STATIC_FAULT"
	StateDrivingFault VehicleState = "DRIVING_FAULT"

	// StateNominal covers zero lit indicators at either engine speed.
	StateNominal VehicleState = "NOMINAL"
)

var VehicleStates = []VehicleState{
	StateSelfCheck,
	StateStaticFault,
	StateDrivingFault,
	StateNominal,
}

type Severity string

const (
	SeverityNotice  Severity = "NOTICE"
	SeverityWarning Severity = "WARNING"
	SeverityDanger  Severity = "DANGER"
)

var Severities = []Severity{
	SeverityNotice,
	SeverityWarning,
	SeverityDanger,
}

type ClassificationResult struct {
	VehicleState VehicleState
	Severity     Severity

	// Rule names the decision-table row that produced the result.
	Rule string
}

// DiagnosticReport is the wire contract returned to callers. An invalid report
// serializes as {"is_valid":false}.
type DiagnosticReport struct {
	IsValid           bool         `json:"is_valid"`
	VehicleState      VehicleState `json:"vehicle_state,omitempty"`
	VehicleStateLabel string       `json:"vehicle_state_label,omitempty"`
	FaultNames        string       `json:"fault_names,omitempty"`
	SystemCategory    string       `json:"system_category,omitempty"`
	Severity          Severity     `json:"severity,omitempty"`
	SeverityLabel     string       `json:"severity_label,omitempty"`
	TechnicalAnalysis string       `json:"technical_analysis,omitempty"`
	DrivingSuggestion string       `json:"driving_suggestion,omitempty"`
	ConfidenceScore   string       `json:"confidence_score,omitempty"`
}

func InvalidReport() DiagnosticReport {
	return DiagnosticReport{IsValid: false}
}
