package analysis

import "github.com/marek-kar/telltale/pkg/model"

// SelfCheckThreshold is the number of simultaneously lit indicators at zero
// engine speed from which the dashboard is read as a power-up sweep. Two lit
// indicators are a static fault, three are a self-check.
const SelfCheckThreshold = 3

// Rule is one row of the decision table. Rows are evaluated in order and the
// first match wins.
type Rule struct {
	Name     string
	Match    func(obs model.Observation) bool
	State    model.VehicleState
	Severity model.Severity
}

func (r Rule) Result() model.ClassificationResult {
	return model.ClassificationResult{
		VehicleState: r.State,
		Severity:     r.Severity,
		Rule:         r.Name,
	}
}

// DecisionTable is exhaustive over {ZERO, NONZERO} x {0, 1, 2, >=3}. The
// self-check row is a hard override: it wins regardless of which indicators
// are lit.
var DecisionTable = []Rule{
	{
		Name: "zero-speed-self-check",
		Match: func(obs model.Observation) bool {
			return obs.EngineSpeed() == model.EngineSpeedZero && obs.IndicatorCount() >= SelfCheckThreshold
		},
		State:    model.StateSelfCheck,
		Severity: model.SeverityNotice,
	},
	{
		Name: "zero-speed-static-fault",
		Match: func(obs model.Observation) bool {
			n := obs.IndicatorCount()
			return obs.EngineSpeed() == model.EngineSpeedZero && n >= 1 && n < SelfCheckThreshold
		},
		State:    model.StateStaticFault,
		Severity: model.SeverityWarning,
	},
	{
		Name: "zero-speed-nominal",
		Match: func(obs model.Observation) bool {
			return obs.EngineSpeed() == model.EngineSpeedZero && obs.IndicatorCount() == 0
		},
		State:    model.StateNominal,
		Severity: model.SeverityNotice,
	},
	{
		Name: "running-driving-fault",
		Match: func(obs model.Observation) bool {
			return obs.EngineSpeed() == model.EngineSpeedNonZero && obs.IndicatorCount() >= 1
		},
		State:    model.StateDrivingFault,
		Severity: model.SeverityDanger,
	},
	{
		Name: "running-nominal",
		Match: func(obs model.Observation) bool {
			return obs.EngineSpeed() == model.EngineSpeedNonZero && obs.IndicatorCount() == 0
		},
		State:    model.StateNominal,
		Severity: model.SeverityNotice,
	},
}
