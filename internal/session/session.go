// Package session drives a single run through a scenario catalog: it owns the
// running Metrics and WorldState, applies each choice through the impact
// engine, keeps the choice history, and produces the final profile.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/civicsim/internal/civic"
	"github.com/talgya/civicsim/internal/scenario"
)

var (
	// ErrComplete is returned when choosing after the last scenario.
	ErrComplete = errors.New("session complete")
	// ErrIncomplete is returned when asking for a profile before the last scenario.
	ErrIncomplete = errors.New("session incomplete")
)

// Session is one user's walk through the catalog.
// It is not safe for concurrent use.
type Session struct {
	ID string

	catalog *scenario.Catalog
	index   int // position of the scenario awaiting a decision
	metrics civic.Metrics
	world   civic.WorldState
	history []civic.ChoiceRecord
}

// Outcome describes the effect of a single decision.
type Outcome struct {
	Record     civic.ChoiceRecord `json:"record"`
	Metrics    civic.Metrics      `json:"metrics"`
	WorldState civic.WorldState   `json:"worldState"`
	Applied    []civic.FieldDelta `json:"applied"` // effective change after clamping
	Milestone  Milestone          `json:"milestone"`
	Step       int                `json:"step"` // 1-based decision number
	Total      int                `json:"total"`
}

// New starts a session at the first scenario with initial state.
func New(catalog *scenario.Catalog) *Session {
	s := &Session{catalog: catalog}
	s.Reset()
	return s
}

// Reset returns the session to the first scenario with a fresh run ID.
func (s *Session) Reset() {
	s.ID = uuid.NewString()
	s.index = 0
	s.metrics = civic.InitialMetrics()
	s.world = civic.InitialWorldState()
	s.history = nil
}

// Current returns the scenario awaiting a decision, or false when done.
func (s *Session) Current() (scenario.Scenario, bool) {
	if s.Done() {
		return scenario.Scenario{}, false
	}
	return s.catalog.At(s.index), true
}

// Progress returns the number of decisions made and the run length.
func (s *Session) Progress() (int, int) {
	return s.index, s.catalog.Len()
}

// Done reports whether every scenario has been answered.
func (s *Session) Done() bool {
	return s.index >= s.catalog.Len()
}

// Metrics returns the current personal metrics.
func (s *Session) Metrics() civic.Metrics { return s.metrics }

// WorldState returns the current world state.
func (s *Session) WorldState() civic.WorldState { return s.world }

// History returns a copy of the decisions made so far.
func (s *Session) History() []civic.ChoiceRecord {
	out := make([]civic.ChoiceRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Choose applies the named choice of the current scenario and advances.
func (s *Session) Choose(choiceID string) (Outcome, error) {
	sc, ok := s.Current()
	if !ok {
		return Outcome{}, ErrComplete
	}
	ch, ok := sc.Choice(choiceID)
	if !ok {
		return Outcome{}, fmt.Errorf("%q in scenario %q: %w", choiceID, sc.ID, scenario.ErrUnknownChoice)
	}

	metrics, world, err := civic.ApplyImpact(s.metrics, s.world, ch.Impact)
	if err != nil {
		return Outcome{}, fmt.Errorf("choose %q: %w", choiceID, err)
	}

	applied := civic.Applied(s.metrics, s.world, metrics, world)
	record := sc.Record(ch)

	s.metrics = metrics
	s.world = world
	s.history = append(s.history, record)
	s.index++

	out := Outcome{
		Record:     record,
		Metrics:    metrics,
		WorldState: world,
		Applied:    applied,
		Milestone:  milestoneAt(s.index, s.catalog.Len()),
		Step:       s.index,
		Total:      s.catalog.Len(),
	}

	slog.Debug("choice applied",
		"run", s.ID,
		"scenario", sc.ID,
		"choice", ch.ID,
		"step", out.Step,
		"milestone", out.Milestone,
	)
	if out.Milestone == MilestoneComplete {
		slog.Info("run complete", "run", s.ID, "decisions", len(s.history))
	}
	return out, nil
}

// Profile classifies the final state. It fails until every scenario is answered.
func (s *Session) Profile() (civic.CivicProfile, error) {
	if !s.Done() {
		done, total := s.Progress()
		return civic.CivicProfile{}, fmt.Errorf("%d of %d decisions made: %w", done, total, ErrIncomplete)
	}
	return civic.DetermineProfile(s.metrics, s.world, s.history), nil
}

// Replay runs a full path of choice IDs, one per scenario, and returns the
// finished session.
func Replay(catalog *scenario.Catalog, choiceIDs []string) (*Session, error) {
	switch {
	case len(choiceIDs) < catalog.Len():
		return nil, fmt.Errorf("replay: got %d choices for %d scenarios: %w",
			len(choiceIDs), catalog.Len(), ErrIncomplete)
	case len(choiceIDs) > catalog.Len():
		return nil, fmt.Errorf("replay: got %d choices for %d scenarios: %w",
			len(choiceIDs), catalog.Len(), ErrComplete)
	}

	s := New(catalog)
	for _, id := range choiceIDs {
		if _, err := s.Choose(id); err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
	}
	return s, nil
}
