package analysis

import (
	"math"
	"strings"

	"github.com/marek-kar/telltale/pkg/catalog"
	"github.com/marek-kar/telltale/pkg/model"
)

// ZeroRPMEpsilon is the highest tachometer reading, in r/min, still read as a
// needle resting on zero.
const ZeroRPMEpsilon = 100.0

// Verdict is the outcome of validation. Anything other than VerdictValid
// terminates the request with an invalid report; it is not an error.
type Verdict string

const (
	VerdictValid               Verdict = "valid"
	VerdictUnreadableImage     Verdict = "unreadable_image"
	VerdictMissingSpeed        Verdict = "missing_speed"
	VerdictAmbiguousSpeed      Verdict = "ambiguous_speed"
	VerdictMissingIndicators   Verdict = "missing_indicators"
	VerdictMalformedIndicators Verdict = "malformed_indicators"
)

func (v Verdict) Valid() bool { return v == VerdictValid }

type Validator struct {
	catalog *catalog.Catalog
}

func NewValidator(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// Validate turns the extraction output into an Observation. Any explicit
// indicator count in raw is ignored; the count is derived from the set.
func (v *Validator) Validate(raw model.RawObservation) (model.Observation, Verdict) {
	if raw.Malformed(model.FieldImageUsable) || raw.ImageUsable == nil || !*raw.ImageUsable {
		return model.Observation{}, VerdictUnreadableImage
	}

	speed, verdict := engineSpeed(raw)
	if !verdict.Valid() {
		return model.Observation{}, verdict
	}

	if raw.Malformed(model.FieldIndicators) {
		return model.Observation{}, VerdictMalformedIndicators
	}
	if raw.Indicators == nil {
		return model.Observation{}, VerdictMissingIndicators
	}
	indicators := make([]model.Indicator, 0, len(raw.Indicators))
	for _, name := range raw.Indicators {
		if strings.TrimSpace(name) == "" {
			return model.Observation{}, VerdictMalformedIndicators
		}
		indicators = append(indicators, v.catalog.Resolve(name))
	}

	return model.NewObservation(speed, indicators...), VerdictValid
}

func engineSpeed(raw model.RawObservation) (model.EngineSpeedState, Verdict) {
	if raw.Malformed(model.FieldEngineSpeed) || raw.Malformed(model.FieldRPM) {
		return "", VerdictAmbiguousSpeed
	}
	var fromState, fromRPM model.EngineSpeedState

	if raw.EngineSpeed != nil {
		switch catalog.Normalize(*raw.EngineSpeed) {
		case "ZERO":
			fromState = model.EngineSpeedZero
		case "NONZERO", "NON_ZERO":
			fromState = model.EngineSpeedNonZero
		case "":
		default:
			return "", VerdictAmbiguousSpeed
		}
	}

	if raw.RPM != nil {
		rpm := *raw.RPM
		if math.IsNaN(rpm) || math.IsInf(rpm, 0) || rpm < 0 {
			return "", VerdictAmbiguousSpeed
		}
		if rpm <= ZeroRPMEpsilon {
			fromRPM = model.EngineSpeedZero
		} else {
			fromRPM = model.EngineSpeedNonZero
		}
	}

	switch {
	case fromState == "" && fromRPM == "":
		return "", VerdictMissingSpeed
	case fromState == "":
		return fromRPM, VerdictValid
	case fromRPM == "":
		return fromState, VerdictValid
	case fromState != fromRPM:
		return "", VerdictAmbiguousSpeed
	default:
		return fromState, VerdictValid
	}
}
