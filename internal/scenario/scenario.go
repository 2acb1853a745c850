// Package scenario holds the static narrative content: an ordered catalog of
// scenarios, each offering choices that carry a civic.ChoiceImpact.
package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/talgya/civicsim/internal/civic"
)

var (
	ErrInvalidCatalog  = errors.New("invalid catalog")
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrUnknownChoice   = errors.New("unknown choice")
)

// Scenario is one decision point in a run.
type Scenario struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Context     string   `json:"context,omitempty" yaml:"context,omitempty"`
	Choices     []Choice `json:"choices" yaml:"choices"`
}

// Choice is one option within a scenario.
type Choice struct {
	ID          string             `json:"id" yaml:"id"`
	Text        string             `json:"text" yaml:"text"`
	Impact      civic.ChoiceImpact `json:"impact" yaml:"impact"`
	Consequence string             `json:"consequence" yaml:"consequence"`
}

// Choice finds a choice by ID within the scenario.
func (s Scenario) Choice(id string) (Choice, bool) {
	for _, c := range s.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// Record builds the audit entry for picking c in s.
func (s Scenario) Record(c Choice) civic.ChoiceRecord {
	return civic.ChoiceRecord{
		ScenarioID:    s.ID,
		ScenarioTitle: s.Title,
		ChoiceID:      c.ID,
		ChoiceText:    c.Text,
		Consequence:   c.Consequence,
		Impact:        c.Impact,
	}
}

// clone copies s including its Choices, so the copy can be changed freely.
func (s Scenario) clone() Scenario {
	s.Choices = slices.Clone(s.Choices)
	return s
}

// Catalog is a validated, ordered list of scenarios. It is read-only once built.
type Catalog struct {
	scenarios []Scenario
	index     map[string]int // scenario ID → position
}

// NewCatalog validates scenarios and returns a catalog preserving their order.
func NewCatalog(scenarios []Scenario) (*Catalog, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios", ErrInvalidCatalog)
	}

	index := make(map[string]int, len(scenarios))
	choiceIDs := make(map[string]string)
	for i, s := range scenarios {
		if strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("%w: scenario %d has no id", ErrInvalidCatalog, i+1)
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate scenario id %q", ErrInvalidCatalog, s.ID)
		}
		if strings.TrimSpace(s.Title) == "" {
			return nil, fmt.Errorf("%w: scenario %q has no title", ErrInvalidCatalog, s.ID)
		}
		if len(s.Choices) < 2 {
			return nil, fmt.Errorf("%w: scenario %q needs at least 2 choices", ErrInvalidCatalog, s.ID)
		}
		for _, c := range s.Choices {
			if strings.TrimSpace(c.ID) == "" {
				return nil, fmt.Errorf("%w: scenario %q has a choice with no id", ErrInvalidCatalog, s.ID)
			}
			if owner, dup := choiceIDs[c.ID]; dup {
				return nil, fmt.Errorf("%w: choice id %q used by %q and %q", ErrInvalidCatalog, c.ID, owner, s.ID)
			}
			if strings.TrimSpace(c.Text) == "" {
				return nil, fmt.Errorf("%w: choice %q has no text", ErrInvalidCatalog, c.ID)
			}
			choiceIDs[c.ID] = s.ID
		}
		index[s.ID] = i
	}

	cp := make([]Scenario, len(scenarios))
	for i, s := range scenarios {
		cp[i] = s.clone()
	}
	return &Catalog{scenarios: cp, index: index}, nil
}

// Len returns the number of scenarios in a full run.
func (c *Catalog) Len() int {
	return len(c.scenarios)
}

// At returns the scenario at position i.
func (c *Catalog) At(i int) Scenario {
	return c.scenarios[i].clone()
}

// Scenarios returns a deep copy of the ordered scenario list.
func (c *Catalog) Scenarios() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	for i, s := range c.scenarios {
		out[i] = s.clone()
	}
	return out
}

// Scenario finds a scenario by ID.
func (c *Catalog) Scenario(id string) (Scenario, bool) {
	i, ok := c.index[id]
	if !ok {
		return Scenario{}, false
	}
	return c.scenarios[i].clone(), true
}

// Choice resolves a choice within a named scenario.
func (c *Catalog) Choice(scenarioID, choiceID string) (Choice, error) {
	s, ok := c.Scenario(scenarioID)
	if !ok {
		return Choice{}, fmt.Errorf("%q: %w", scenarioID, ErrUnknownScenario)
	}
	ch, ok := s.Choice(choiceID)
	if !ok {
		return Choice{}, fmt.Errorf("%q in scenario %q: %w", choiceID, scenarioID, ErrUnknownChoice)
	}
	return ch, nil
}
