package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/marek-kar/telltale/pkg/catalog"
	"github.com/marek-kar/telltale/pkg/model"
)

func ptr[T any](v T) *T { return &v }

func testValidator(t *testing.T) *Validator {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return NewValidator(c)
}

func TestValidate_Verdicts(t *testing.T) {
	tests := []struct {
		name string
		raw  model.RawObservation
		want Verdict
	}{
		{
			name: "legibility missing",
			raw:  model.RawObservation{EngineSpeed: ptr("ZERO"), Indicators: []string{}},
			want: VerdictUnreadableImage,
		},
		{
			name: "unreadable image",
			raw:  model.RawObservation{ImageUsable: ptr(false), EngineSpeed: ptr("ZERO"), Indicators: []string{"TPMS"}},
			want: VerdictUnreadableImage,
		},
		{
			name: "no speed signal",
			raw:  model.RawObservation{ImageUsable: ptr(true), Indicators: []string{"TPMS"}},
			want: VerdictMissingSpeed,
		},
		{
			name: "blank speed signal",
			raw:  model.RawObservation{ImageUsable: ptr(true), EngineSpeed: ptr("  "), Indicators: []string{"TPMS"}},
			want: VerdictMissingSpeed,
		},
		{
			name: "unknown speed label",
			raw:  model.RawObservation{ImageUsable: ptr(true), EngineSpeed: ptr("IDLE"), Indicators: []string{}},
			want: VerdictAmbiguousSpeed,
		},
		{
			name: "negative rpm",
			raw:  model.RawObservation{ImageUsable: ptr(true), RPM: ptr(-5.0), Indicators: []string{}},
			want: VerdictAmbiguousSpeed,
		},
		{
			name: "nan rpm",
			raw:  model.RawObservation{ImageUsable: ptr(true), RPM: ptr(math.NaN()), Indicators: []string{}},
			want: VerdictAmbiguousSpeed,
		},
		{
			name: "state contradicts rpm",
			raw:  model.RawObservation{ImageUsable: ptr(true), EngineSpeed: ptr("ZERO"), RPM: ptr(2200.0), Indicators: []string{}},
			want: VerdictAmbiguousSpeed,
		},
		{
			name: "null indicator set",
			raw:  model.RawObservation{ImageUsable: ptr(true), EngineSpeed: ptr("ZERO")},
			want: VerdictMissingIndicators,
		},
		{
			name: "blank indicator name",
			raw:  model.RawObservation{ImageUsable: ptr(true), EngineSpeed: ptr("ZERO"), Indicators: []string{"TPMS", ""}},
			want: VerdictMalformedIndicators,
		},
		{
			name: "empty indicator set is valid",
			raw:  model.RawObservation{ImageUsable: ptr(true), EngineSpeed: ptr("NONZERO"), Indicators: []string{}},
			want: VerdictValid,
		},
		{
			name: "state agrees with rpm",
			raw:  model.RawObservation{ImageUsable: ptr(true), EngineSpeed: ptr("non-zero"), RPM: ptr(850.0), Indicators: []string{}},
			want: VerdictValid,
		},
	}

	v := testValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := v.Validate(tt.raw)
			if got != tt.want {
				t.Errorf("verdict: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate_RPMThreshold(t *testing.T) {
	tests := []struct {
		rpm  float64
		want model.EngineSpeedState
	}{
		{0, model.EngineSpeedZero},
		{ZeroRPMEpsilon, model.EngineSpeedZero},
		{ZeroRPMEpsilon + 1, model.EngineSpeedNonZero},
		{3000, model.EngineSpeedNonZero},
	}

	v := testValidator(t)
	for _, tt := range tests {
		obs, verdict := v.Validate(model.RawObservation{ImageUsable: ptr(true), RPM: ptr(tt.rpm), Indicators: []string{}})
		if !verdict.Valid() {
			t.Fatalf("rpm %v: verdict %q", tt.rpm, verdict)
		}
		if obs.EngineSpeed() != tt.want {
			t.Errorf("rpm %v: got %q, want %q", tt.rpm, obs.EngineSpeed(), tt.want)
		}
	}
}

func TestValidate_RecomputesCount(t *testing.T) {
	v := testValidator(t)
	raw := model.RawObservation{
		ImageUsable:    ptr(true),
		EngineSpeed:    ptr("ZERO"),
		Indicators:     []string{"TPMS", "tire pressure", "BRAKE"},
		IndicatorCount: ptr(7),
	}
	obs, verdict := v.Validate(raw)
	if !verdict.Valid() {
		t.Fatalf("verdict: %q", verdict)
	}
	if obs.IndicatorCount() != 2 {
		t.Errorf("count: got %d, want 2", obs.IndicatorCount())
	}
}

func TestValidate_UnknownIndicatorGoesToOther(t *testing.T) {
	v := testValidator(t)
	obs, verdict := v.Validate(model.RawObservation{
		ImageUsable: ptr(true),
		EngineSpeed: ptr("ZERO"),
		Indicators:  []string{"washer fluid"},
	})
	if !verdict.Valid() {
		t.Fatalf("verdict: %q", verdict)
	}
	got := obs.Indicators()
	if len(got) != 1 || got[0].ID != model.IndicatorOther || got[0].Name != "WASHER_FLUID" {
		t.Errorf("indicators: got %v, want [OTHER/WASHER_FLUID]", got)
	}
}

func TestValidate_MistypedFields(t *testing.T) {
	tests := []struct {
		doc  string
		want Verdict
	}{
		{`{"image_usable":"yes","engine_speed":"ZERO","indicators":["TPMS"]}`, VerdictUnreadableImage},
		{`{"image_usable":1,"engine_speed":"ZERO","indicators":["TPMS"]}`, VerdictUnreadableImage},
		{`{"image_usable":true,"engine_speed":false,"indicators":["TPMS"]}`, VerdictAmbiguousSpeed},
		{`{"image_usable":true,"engine_speed":"ZERO","rpm":"idle","indicators":["TPMS"]}`, VerdictAmbiguousSpeed},
		{`{"image_usable":true,"rpm":0,"indicators":"TPMS"}`, VerdictMalformedIndicators},
		{`{"image_usable":true,"rpm":0,"indicators":[1,2]}`, VerdictMalformedIndicators},
		{`{"image_usable":true,"rpm":0,"indicators":{"TPMS":true}}`, VerdictMalformedIndicators},
		{`{"image_usable":true,"rpm":0,"indicators":["TPMS",null]}`, VerdictMalformedIndicators},
		{`{"image_usable":true,"rpm":0,"indicators":["TPMS"],"indicator_count":"one"}`, VerdictValid},
	}

	v := testValidator(t)
	for _, tt := range tests {
		var raw model.RawObservation
		if err := json.Unmarshal([]byte(tt.doc), &raw); err != nil {
			t.Fatalf("%s: decode: %v", tt.doc, err)
		}
		if _, got := v.Validate(raw); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.doc, got, tt.want)
		}
	}
}
