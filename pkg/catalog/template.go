package catalog

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/marek-kar/telltale/pkg/model"
)

type rawFamily struct {
	Condition  string `yaml:"condition"`
	Indicators string `yaml:"indicators"`
	Conclusion string `yaml:"conclusion"`
	Action     string `yaml:"action"`
}

// TemplateData is the parameter set every template family receives.
type TemplateData struct {
	State         model.VehicleState
	StateLabel    string
	SeverityLabel string
	Category      string
	Terms         []string
	TermList      string
	Count         int
	Findings      []string
	Inspections   []string
	EngineRunning bool
}

// Text is one rendered family: the four analysis parts and the action.
type Text struct {
	Condition  string
	Indicators string
	Conclusion string
	Action     string
}

func (t Text) Analysis() string {
	return t.Condition + t.Indicators + t.Conclusion
}

// Family is the template set for one vehicle state.
type Family struct {
	state      model.VehicleState
	condition  *template.Template
	indicators *template.Template
	conclusion *template.Template
	action     *template.Template
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

func newFamily(state model.VehicleState, raw rawFamily) (*Family, error) {
	fam := &Family{state: state}
	var err error
	if fam.condition, err = parsePart(state, "condition", raw.Condition); err != nil {
		return nil, err
	}
	if fam.indicators, err = parsePart(state, "indicators", raw.Indicators); err != nil {
		return nil, err
	}
	if fam.conclusion, err = parsePart(state, "conclusion", raw.Conclusion); err != nil {
		return nil, err
	}
	if fam.action, err = parsePart(state, "action", raw.Action); err != nil {
		return nil, err
	}

	if _, err := fam.Render(sampleData(state)); err != nil {
		return nil, fmt.Errorf("%w: templates.%s: %v", ErrConfigurationMissing, state, err)
	}
	return fam, nil
}

func parsePart(state model.VehicleState, part, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, missing(fmt.Sprintf("templates.%s.%s", state, part))
	}
	tmpl, err := template.New(string(state) + "." + part).
		Option("missingkey=error").
		Funcs(funcs).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: templates.%s.%s: %v", ErrConfigurationMissing, state, part, err)
	}
	return tmpl, nil
}

func sampleData(state model.VehicleState) TemplateData {
	return TemplateData{
		State:         state,
		StateLabel:    string(state),
		SeverityLabel: "NOTICE",
		Category:      "engine",
		Terms:         []string{"lamp-a", "lamp-b"},
		TermList:      "lamp-a, lamp-b",
		Count:         2,
		Findings:      []string{"finding-a", "finding-b"},
		Inspections:   []string{"inspect-a", "inspect-b"},
		EngineRunning: state == model.StateDrivingFault,
	}
}

func (f *Family) State() model.VehicleState { return f.state }

func (f *Family) Render(data TemplateData) (Text, error) {
	var t Text
	var err error
	if t.Condition, err = execute(f.condition, data); err != nil {
		return Text{}, err
	}
	if t.Indicators, err = execute(f.indicators, data); err != nil {
		return Text{}, err
	}
	if t.Conclusion, err = execute(f.conclusion, data); err != nil {
		return Text{}, err
	}
	if t.Action, err = execute(f.action, data); err != nil {
		return Text{}, err
	}
	return t, nil
}

func execute(tmpl *template.Template, data TemplateData) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(b.String()), nil
}
