// Package civic provides the behavioural state model, the impact engine that
// folds a choice into that state, and the profile classifier that turns the
// final state into an archetype with feedback.
//
// Everything in this package is pure: no I/O, no shared state, no randomness.
package civic

import (
	"errors"
	"fmt"
)

// Value bounds for every Metrics and WorldState field.
const (
	MinValue     = 0
	MaxValue     = 100
	InitialValue = 50
)

var (
	// ErrOutOfRange reports state that already violates [MinValue, MaxValue].
	ErrOutOfRange = errors.New("value out of range")
	// ErrUnknownField reports a field name outside the seven known fields.
	ErrUnknownField = errors.New("unknown field")
)

// Metrics is the user's personal behavioural profile.
// All values range from 0 to 100.
type Metrics struct {
	CivicAwareness      int `json:"civicAwareness"`
	Empathy             int `json:"empathy"`
	SocialTrust         int `json:"socialTrust"`
	PersonalConvenience int `json:"personalConvenience"`
}

// WorldState is the condition of the simulated environment as shaped by the
// user's choices. All values range from 0 to 100.
type WorldState struct {
	PublicPatience   int `json:"publicPatience"`
	CleanlinessLevel int `json:"cleanlinessLevel"`
	CooperationLevel int `json:"cooperationLevel"`
}

// InitialMetrics returns the metrics every session starts from.
func InitialMetrics() Metrics {
	return Metrics{
		CivicAwareness:      InitialValue,
		Empathy:             InitialValue,
		SocialTrust:         InitialValue,
		PersonalConvenience: InitialValue,
	}
}

// InitialWorldState returns the world state every session starts from.
func InitialWorldState() WorldState {
	return WorldState{
		PublicPatience:   InitialValue,
		CleanlinessLevel: InitialValue,
		CooperationLevel: InitialValue,
	}
}

// Get returns the value of a metrics field. World fields return 0.
func (m Metrics) Get(f Field) int {
	switch f {
	case CivicAwareness:
		return m.CivicAwareness
	case Empathy:
		return m.Empathy
	case SocialTrust:
		return m.SocialTrust
	case PersonalConvenience:
		return m.PersonalConvenience
	}
	return 0
}

// Get returns the value of a world field. Metrics fields return 0.
func (w WorldState) Get(f Field) int {
	switch f {
	case PublicPatience:
		return w.PublicPatience
	case CleanlinessLevel:
		return w.CleanlinessLevel
	case CooperationLevel:
		return w.CooperationLevel
	}
	return 0
}

// Value returns the value of any of the seven fields.
func Value(m Metrics, w WorldState, f Field) int {
	if f.IsWorld() {
		return w.Get(f)
	}
	return m.Get(f)
}

// Validate reports the first field outside [MinValue, MaxValue].
func (m Metrics) Validate() error {
	for _, f := range MetricFields() {
		if err := checkRange(f, m.Get(f)); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports the first field outside [MinValue, MaxValue].
func (w WorldState) Validate() error {
	for _, f := range WorldFields() {
		if err := checkRange(f, w.Get(f)); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(f Field, v int) error {
	if v < MinValue || v > MaxValue {
		return fmt.Errorf("%s = %d: %w", f, v, ErrOutOfRange)
	}
	return nil
}

// ChoiceRecord is one entry of a session's audit trail.
type ChoiceRecord struct {
	ScenarioID    string       `json:"scenarioId"`
	ScenarioTitle string       `json:"scenarioTitle"`
	ChoiceID      string       `json:"choiceId"`
	ChoiceText    string       `json:"choiceText"`
	Consequence   string       `json:"consequence"`
	Impact        ChoiceImpact `json:"impact"`
}

// CivicProfile is the classifier's result.
type CivicProfile struct {
	Archetype        ArchetypeID `json:"archetype"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Strengths        []string    `json:"strengths"`
	Improvements     []string    `json:"improvements"`
	CriticalInsights []string    `json:"criticalInsights"`
}
