package analysis

import (
	"errors"
	"fmt"

	"github.com/marek-kar/telltale/pkg/model"
)

var ErrNoRuleMatched = errors.New("no rule matched")

type Engine struct {
	rules []Rule
}

func NewEngine(rules ...Rule) *Engine {
	e := &Engine{}
	for _, r := range rules {
		e.Register(r)
	}
	return e
}

func DefaultEngine() *Engine {
	return NewEngine(DecisionTable...)
}

// Register appends r; rules are tried in registration order.
func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Classify returns the result of the first matching rule. It only fails for
// an engine whose table is not exhaustive or an observation with an unknown
// engine speed state.
func (e *Engine) Classify(obs model.Observation) (model.ClassificationResult, error) {
	for _, r := range e.rules {
		if r.Match(obs) {
			return r.Result(), nil
		}
	}
	return model.ClassificationResult{}, fmt.Errorf("%w: speed=%q indicators=%d", ErrNoRuleMatched, obs.EngineSpeed(), obs.IndicatorCount())
}
