package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/marek-kar/telltale/pkg/model"
)

// ErrConfigurationMissing means a required table or template is absent. The
// process must not serve requests with such a catalog.
var ErrConfigurationMissing = errors.New("catalog configuration missing")

//go:embed default.yaml
var defaultCatalog []byte

type Group struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type Entry struct {
	ID         model.IndicatorID `yaml:"id"`
	Term       string            `yaml:"term"`
	Color      string            `yaml:"color"`
	Group      string            `yaml:"group"`
	Fault      string            `yaml:"fault"`
	Finding    string            `yaml:"finding"`
	Inspection string            `yaml:"inspection"`
	Aliases    []string          `yaml:"aliases"`
}

type Confidence struct {
	Full           int `yaml:"full"`
	UnknownPenalty int `yaml:"unknown_penalty"`
	Floor          int `yaml:"floor"`
}

type file struct {
	Version             string                           `yaml:"version"`
	MultiSystemCategory string                           `yaml:"multi_system_category"`
	Groups              []Group                          `yaml:"groups"`
	Indicators          []Entry                          `yaml:"indicators"`
	States              map[model.VehicleState]string    `yaml:"states"`
	Severities          map[model.Severity]string        `yaml:"severities"`
	Confidence          Confidence                       `yaml:"confidence"`
	Templates           map[model.VehicleState]rawFamily `yaml:"templates"`
}

// Catalog is the indicator vocabulary and report text, loaded once and
// read-only afterwards. All methods are safe for concurrent use.
type Catalog struct {
	version    string
	multi      string
	groups     []Group
	groupIdx   map[string]int
	entries    []Entry
	byID       map[model.IndicatorID]int
	aliases    map[string]model.IndicatorID
	states     map[model.VehicleState]string
	severities map[model.Severity]string
	confidence Confidence
	families   map[model.VehicleState]*Family
}

func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path selects the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfigurationMissing, path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrConfigurationMissing, err)
	}
	return build(f)
}

func build(f file) (*Catalog, error) {
	c := &Catalog{
		version:    f.Version,
		multi:      f.MultiSystemCategory,
		groups:     f.Groups,
		groupIdx:   make(map[string]int, len(f.Groups)),
		byID:       make(map[model.IndicatorID]int, len(f.Indicators)),
		aliases:    make(map[string]model.IndicatorID),
		states:     f.States,
		severities: f.Severities,
		confidence: f.Confidence,
		families:   make(map[model.VehicleState]*Family, len(f.Templates)),
	}

	if c.multi == "" {
		return nil, missing("multi_system_category")
	}
	if len(f.Groups) == 0 {
		return nil, missing("groups")
	}
	for i, g := range f.Groups {
		if g.ID == "" || g.Label == "" {
			return nil, missing(fmt.Sprintf("groups[%d] id/label", i))
		}
		if _, dup := c.groupIdx[g.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate group %q", ErrConfigurationMissing, g.ID)
		}
		c.groupIdx[g.ID] = i
	}

	if len(f.Indicators) == 0 {
		return nil, missing("indicators")
	}
	for i, e := range f.Indicators {
		if err := c.addEntry(i, e); err != nil {
			return nil, err
		}
	}
	if _, ok := c.byID[model.IndicatorOther]; !ok {
		return nil, missing("indicators: OTHER bucket")
	}
	for key, id := range c.aliases {
		if owner := model.IndicatorID(key); owner != id && owner != model.IndicatorOther {
			if _, ok := c.byID[owner]; ok {
				return nil, fmt.Errorf("%w: alias %q of %s is the id of another indicator", ErrConfigurationMissing, key, id)
			}
		}
	}

	for _, s := range model.VehicleStates {
		if c.states[s] == "" {
			return nil, missing("states." + string(s))
		}
	}
	for _, s := range model.Severities {
		if c.severities[s] == "" {
			return nil, missing("severities." + string(s))
		}
	}

	cf := c.confidence
	if cf.Full <= 0 || cf.Full > 100 || cf.Floor < 0 || cf.Floor > cf.Full || cf.UnknownPenalty < 0 {
		return nil, fmt.Errorf("%w: confidence out of range: %+v", ErrConfigurationMissing, cf)
	}

	for _, s := range model.VehicleStates {
		raw, ok := f.Templates[s]
		if !ok {
			return nil, missing("templates." + string(s))
		}
		fam, err := newFamily(s, raw)
		if err != nil {
			return nil, err
		}
		c.families[s] = fam
	}
	return c, nil
}

func (c *Catalog) addEntry(i int, e Entry) error {
	e.ID = model.IndicatorID(Normalize(string(e.ID)))
	if e.ID == "" || e.Term == "" || e.Fault == "" || e.Finding == "" || e.Inspection == "" {
		return missing(fmt.Sprintf("indicators[%d] id/term/fault/finding/inspection", i))
	}
	if _, ok := c.groupIdx[e.Group]; !ok {
		return fmt.Errorf("%w: indicator %s references unknown group %q", ErrConfigurationMissing, e.ID, e.Group)
	}
	if _, dup := c.byID[e.ID]; dup {
		return fmt.Errorf("%w: duplicate indicator %s", ErrConfigurationMissing, e.ID)
	}
	c.byID[e.ID] = len(c.entries)
	c.entries = append(c.entries, e)

	for _, a := range e.Aliases {
		key := Normalize(a)
		if key == "" {
			continue
		}
		if prev, dup := c.aliases[key]; dup && prev != e.ID {
			return fmt.Errorf("%w: alias %q maps to both %s and %s", ErrConfigurationMissing, a, prev, e.ID)
		}
		c.aliases[key] = e.ID
	}
	return nil
}

func missing(what string) error {
	return fmt.Errorf("%w: %s", ErrConfigurationMissing, what)
}

// Normalize folds an indicator name to its lookup key: trimmed, upper-case,
// spaces and hyphens replaced by underscores.
func Normalize(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

// Resolve maps an extracted lamp name onto the vocabulary. Unrecognized names
// land in the OTHER bucket with their normalized name preserved.
func (c *Catalog) Resolve(name string) model.Indicator {
	key := Normalize(name)
	id := model.IndicatorID(key)
	if _, ok := c.byID[id]; ok && id != model.IndicatorOther {
		return model.Indicator{ID: id}
	}
	if aliased, ok := c.aliases[key]; ok {
		return model.Indicator{ID: aliased}
	}
	return model.Indicator{ID: model.IndicatorOther, Name: key}
}

// Entry returns the vocabulary entry for id, falling back to OTHER.
func (c *Catalog) Entry(id model.IndicatorID) Entry {
	if i, ok := c.byID[id]; ok {
		return c.entries[i]
	}
	return c.entries[c.byID[model.IndicatorOther]]
}

// EntryRank is the position of id in the vocabulary, OTHER's for unknown ids.
func (c *Catalog) EntryRank(id model.IndicatorID) int {
	if i, ok := c.byID[id]; ok {
		return i
	}
	return c.byID[model.IndicatorOther]
}

func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Groups() []Group {
	out := make([]Group, len(c.groups))
	copy(out, c.groups)
	return out
}

func (c *Catalog) Group(id string) Group {
	if i, ok := c.groupIdx[id]; ok {
		return c.groups[i]
	}
	return Group{ID: id, Label: id}
}

// GroupRank orders groups as listed in the catalog; lower is more specific.
func (c *Catalog) GroupRank(id string) int {
	if i, ok := c.groupIdx[id]; ok {
		return i
	}
	return len(c.groups)
}

func (c *Catalog) Version() string                        { return c.version }
func (c *Catalog) MultiSystemCategory() string            { return c.multi }
func (c *Catalog) StateLabel(s model.VehicleState) string { return c.states[s] }
func (c *Catalog) SeverityLabel(s model.Severity) string  { return c.severities[s] }
func (c *Catalog) Confidence() Confidence                 { return c.confidence }
func (c *Catalog) Family(s model.VehicleState) *Family    { return c.families[s] }
