package model

import (
	"encoding/json"
	"sort"
)

type EngineSpeedState string

const (
	EngineSpeedZero    EngineSpeedState = "ZERO"
	EngineSpeedNonZero EngineSpeedState = "NONZERO"
)

type IndicatorID string

// Well-known indicator ids. The catalog may define more.
const (
	IndicatorEngineFault IndicatorID = "ENGINE_FAULT"
	IndicatorBattery     IndicatorID = "BATTERY"
	IndicatorOilPressure IndicatorID = "OIL_PRESSURE"
	IndicatorTPMS        IndicatorID = "TPMS"
	IndicatorBrake       IndicatorID = "BRAKE"
	IndicatorABS         IndicatorID = "ABS"
	IndicatorSeatbelt    IndicatorID = "SEATBELT"
	IndicatorCoolantTemp IndicatorID = "COOLANT_TEMP"
	IndicatorAirbag      IndicatorID = "AIRBAG"
	IndicatorOther       IndicatorID = "OTHER"
)

// Indicator is one illuminated lamp. Name is kept only for the OTHER bucket so
// that two different unrecognized lamps still count as two.
type Indicator struct {
	ID   IndicatorID `json:"id"`
	Name string      `json:"name,omitempty"`
}

func (i Indicator) key() string {
	if i.ID == IndicatorOther {
		return string(i.ID) + "/" + i.Name
	}
	return string(i.ID)
}

func (i Indicator) IsOther() bool { return i.ID == IndicatorOther }

// Observation is the validated perception of one dashboard photo.
// The indicator set is deduplicated and sorted on construction; the count is
// always derived from it.
type Observation struct {
	engineSpeed EngineSpeedState
	indicators  []Indicator
}

func NewObservation(speed EngineSpeedState, indicators ...Indicator) Observation {
	seen := make(map[string]bool, len(indicators))
	set := make([]Indicator, 0, len(indicators))
	for _, ind := range indicators {
		if ind.ID != IndicatorOther {
			ind.Name = ""
		}
		k := ind.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		set = append(set, ind)
	}
	sort.Slice(set, func(i, j int) bool { return set[i].key() < set[j].key() })
	return Observation{engineSpeed: speed, indicators: set}
}

func (o Observation) EngineSpeed() EngineSpeedState { return o.engineSpeed }

func (o Observation) IndicatorCount() int { return len(o.indicators) }

// Indicators returns a copy of the indicator set in canonical order.
func (o Observation) Indicators() []Indicator {
	out := make([]Indicator, len(o.indicators))
	copy(out, o.indicators)
	return out
}

func (o Observation) Has(id IndicatorID) bool {
	for _, ind := range o.indicators {
		if ind.ID == id {
			return true
		}
	}
	return false
}

func (o Observation) OtherCount() int {
	n := 0
	for _, ind := range o.indicators {
		if ind.IsOther() {
			n++
		}
	}
	return n
}

// RawObservation is the pre-validation shape produced by the extraction
// service. Pointer fields distinguish "absent" from the zero value.
type RawObservation struct {
	ImageUsable    *bool    `json:"image_usable"`
	EngineSpeed    *string  `json:"engine_speed,omitempty"`
	RPM            *float64 `json:"rpm,omitempty"`
	Indicators     []string `json:"indicators"`
	IndicatorCount *int     `json:"indicator_count,omitempty"`

	// malformed holds the keys whose JSON value had the wrong type.
	malformed map[string]bool
}

// Wire keys of RawObservation.
const (
	FieldImageUsable    = "image_usable"
	FieldEngineSpeed    = "engine_speed"
	FieldRPM            = "rpm"
	FieldIndicators     = "indicators"
	FieldIndicatorCount = "indicator_count"
)

// UnmarshalJSON decodes each field on its own. A value of the wrong type is
// recorded as malformed and left unset; only a document that is not a JSON
// object fails.
func (r *RawObservation) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = RawObservation{}
	decodeField(r, fields, FieldImageUsable, &r.ImageUsable)
	decodeField(r, fields, FieldEngineSpeed, &r.EngineSpeed)
	decodeField(r, fields, FieldRPM, &r.RPM)
	decodeField(r, fields, FieldIndicators, &r.Indicators)
	decodeField(r, fields, FieldIndicatorCount, &r.IndicatorCount)
	return nil
}

func decodeField[T any](r *RawObservation, fields map[string]json.RawMessage, key string, dst *T) {
	msg, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		if r.malformed == nil {
			r.malformed = make(map[string]bool)
		}
		r.malformed[key] = true
		return
	}
	*dst = v
}

func (r RawObservation) Malformed(key string) bool { return r.malformed[key] }
