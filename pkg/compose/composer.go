package compose

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marek-kar/telltale/pkg/catalog"
	"github.com/marek-kar/telltale/pkg/model"
)

const listSeparator = "、"

type Composer struct {
	catalog *catalog.Catalog
}

func NewComposer(c *catalog.Catalog) *Composer {
	return &Composer{catalog: c}
}

type lamp struct {
	indicator model.Indicator
	entry     catalog.Entry
}

// Compose renders a classification into the report for obs. It is pure: the
// same inputs always produce the same report.
func (c *Composer) Compose(obs model.Observation, res model.ClassificationResult) (model.DiagnosticReport, error) {
	fam := c.catalog.Family(res.VehicleState)
	if fam == nil {
		return model.DiagnosticReport{}, fmt.Errorf("no template family for state %q", res.VehicleState)
	}

	lamps := c.lamps(obs)
	terms := make([]string, 0, len(lamps))
	var faults, findings, inspections []string
	for _, l := range lamps {
		terms = append(terms, displayTerm(l))
		faults = appendUnique(faults, l.entry.Fault)
		findings = appendUnique(findings, l.entry.Finding)
		inspections = appendUnique(inspections, l.entry.Inspection)
	}

	category := c.systemCategory(lamps, res.VehicleState)
	text, err := fam.Render(catalog.TemplateData{
		State:         res.VehicleState,
		StateLabel:    c.catalog.StateLabel(res.VehicleState),
		SeverityLabel: c.catalog.SeverityLabel(res.Severity),
		Category:      category,
		Terms:         terms,
		TermList:      strings.Join(terms, listSeparator),
		Count:         len(lamps),
		Findings:      findings,
		Inspections:   inspections,
		EngineRunning: obs.EngineSpeed() == model.EngineSpeedNonZero,
	})
	if err != nil {
		return model.DiagnosticReport{}, fmt.Errorf("render %s: %w", fam.State(), err)
	}

	return model.DiagnosticReport{
		IsValid:           true,
		VehicleState:      res.VehicleState,
		VehicleStateLabel: c.catalog.StateLabel(res.VehicleState),
		FaultNames:        strings.Join(faults, listSeparator),
		SystemCategory:    category,
		Severity:          res.Severity,
		SeverityLabel:     c.catalog.SeverityLabel(res.Severity),
		TechnicalAnalysis: text.Analysis(),
		DrivingSuggestion: text.Action,
		ConfidenceScore:   FormatConfidence(c.Confidence(obs)),
	}, nil
}

// lamps orders the lit indicators the way the vocabulary lists them, with
// unrecognized lamps last by name.
func (c *Composer) lamps(obs model.Observation) []lamp {
	inds := obs.Indicators()
	out := make([]lamp, len(inds))
	for i, ind := range inds {
		out[i] = lamp{indicator: ind, entry: c.catalog.Entry(ind.ID)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri := c.catalog.EntryRank(out[i].indicator.ID)
		rj := c.catalog.EntryRank(out[j].indicator.ID)
		if ri != rj {
			return ri < rj
		}
		return out[i].indicator.Name < out[j].indicator.Name
	})
	return out
}

func displayTerm(l lamp) string {
	switch {
	case l.indicator.IsOther() && l.indicator.Name != "":
		return fmt.Sprintf("%s（%s）", l.entry.Term, l.indicator.Name)
	case l.entry.Color != "":
		return fmt.Sprintf("%s（%s）", l.entry.Term, l.entry.Color)
	default:
		return l.entry.Term
	}
}

// systemCategory labels a self-check spanning two or more groups as
// multi-system. Otherwise it names the group holding the most lamps, ties
// going to the group listed first in the catalog. The OTHER bucket's group
// is only named when no recognized lamp is lit.
func (c *Composer) systemCategory(lamps []lamp, state model.VehicleState) string {
	if len(lamps) == 0 {
		return ""
	}
	counts := make(map[string]int)
	for _, l := range lamps {
		counts[l.entry.Group]++
	}
	if state == model.StateSelfCheck && len(counts) >= 2 {
		return c.catalog.MultiSystemCategory()
	}
	if other := c.catalog.Entry(model.IndicatorOther).Group; len(counts) > 1 {
		delete(counts, other)
	}

	best := ""
	for g, n := range counts {
		switch {
		case best == "":
			best = g
		case n > counts[best]:
			best = g
		case n == counts[best] && c.catalog.GroupRank(g) < c.catalog.GroupRank(best):
			best = g
		}
	}
	return c.catalog.Group(best).Label
}

// Confidence is full marks for an observation made entirely of recognized
// indicators, lowered for every lamp that fell into the OTHER bucket.
func (c *Composer) Confidence(obs model.Observation) int {
	cf := c.catalog.Confidence()
	score := cf.Full - cf.UnknownPenalty*obs.OtherCount()
	if score < cf.Floor {
		score = cf.Floor
	}
	return score
}

func FormatConfidence(score int) string {
	return fmt.Sprintf("%d%%", score)
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
