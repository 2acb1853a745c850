package civic

import "fmt"

// ChoiceImpact is the sparse delta a choice applies to the seven fields.
// A field left unset contributes zero.
type ChoiceImpact struct {
	CivicAwareness      int `json:"civicAwareness,omitempty" yaml:"civicAwareness,omitempty"`
	Empathy             int `json:"empathy,omitempty" yaml:"empathy,omitempty"`
	SocialTrust         int `json:"socialTrust,omitempty" yaml:"socialTrust,omitempty"`
	PersonalConvenience int `json:"personalConvenience,omitempty" yaml:"personalConvenience,omitempty"`
	PublicPatience      int `json:"publicPatience,omitempty" yaml:"publicPatience,omitempty"`
	CleanlinessLevel    int `json:"cleanlinessLevel,omitempty" yaml:"cleanlinessLevel,omitempty"`
	CooperationLevel    int `json:"cooperationLevel,omitempty" yaml:"cooperationLevel,omitempty"`
}

// FieldDelta pairs a field with a signed change.
type FieldDelta struct {
	Field Field `json:"field"`
	Delta int   `json:"delta"`
}

// Delta returns the change declared for f, or 0 when the field is absent.
func (i ChoiceImpact) Delta(f Field) int {
	switch f {
	case CivicAwareness:
		return i.CivicAwareness
	case Empathy:
		return i.Empathy
	case SocialTrust:
		return i.SocialTrust
	case PersonalConvenience:
		return i.PersonalConvenience
	case PublicPatience:
		return i.PublicPatience
	case CleanlinessLevel:
		return i.CleanlinessLevel
	case CooperationLevel:
		return i.CooperationLevel
	}
	return 0
}

// Set assigns the change for f. Unknown fields are ignored.
func (i *ChoiceImpact) Set(f Field, delta int) {
	switch f {
	case CivicAwareness:
		i.CivicAwareness = delta
	case Empathy:
		i.Empathy = delta
	case SocialTrust:
		i.SocialTrust = delta
	case PersonalConvenience:
		i.PersonalConvenience = delta
	case PublicPatience:
		i.PublicPatience = delta
	case CleanlinessLevel:
		i.CleanlinessLevel = delta
	case CooperationLevel:
		i.CooperationLevel = delta
	}
}

// IsZero reports whether the impact changes nothing.
func (i ChoiceImpact) IsZero() bool {
	return i == ChoiceImpact{}
}

// NonZero lists the declared changes in canonical field order.
func (i ChoiceImpact) NonZero() []FieldDelta {
	var out []FieldDelta
	for _, f := range Fields() {
		if d := i.Delta(f); d != 0 {
			out = append(out, FieldDelta{Field: f, Delta: d})
		}
	}
	return out
}

// ImpactFromMap builds an impact from wire names to deltas.
func ImpactFromMap(m map[string]int) (ChoiceImpact, error) {
	var impact ChoiceImpact
	for name, delta := range m {
		f, err := ParseField(name)
		if err != nil {
			return ChoiceImpact{}, err
		}
		impact.Set(f, delta)
	}
	return impact, nil
}

// ApplyImpact folds a choice's impact into the current state.
//
// Each field becomes clamp(current+delta, 0, 100) independently of the
// others. Inputs must already be in range; corrupt state is reported as
// ErrOutOfRange rather than silently clamped.
func ApplyImpact(m Metrics, w WorldState, impact ChoiceImpact) (Metrics, WorldState, error) {
	if err := m.Validate(); err != nil {
		return m, w, fmt.Errorf("apply impact: metrics: %w", err)
	}
	if err := w.Validate(); err != nil {
		return m, w, fmt.Errorf("apply impact: world state: %w", err)
	}

	metrics := Metrics{
		CivicAwareness:      shift(m.CivicAwareness, impact.Delta(CivicAwareness)),
		Empathy:             shift(m.Empathy, impact.Delta(Empathy)),
		SocialTrust:         shift(m.SocialTrust, impact.Delta(SocialTrust)),
		PersonalConvenience: shift(m.PersonalConvenience, impact.Delta(PersonalConvenience)),
	}
	world := WorldState{
		PublicPatience:   shift(w.PublicPatience, impact.Delta(PublicPatience)),
		CleanlinessLevel: shift(w.CleanlinessLevel, impact.Delta(CleanlinessLevel)),
		CooperationLevel: shift(w.CooperationLevel, impact.Delta(CooperationLevel)),
	}
	return metrics, world, nil
}

// Applied reports the effective change per field between two states, after
// clamping. Fields that did not move are omitted.
func Applied(beforeM Metrics, beforeW WorldState, afterM Metrics, afterW WorldState) []FieldDelta {
	var out []FieldDelta
	for _, f := range Fields() {
		if d := Value(afterM, afterW, f) - Value(beforeM, beforeW, f); d != 0 {
			out = append(out, FieldDelta{Field: f, Delta: d})
		}
	}
	return out
}

// shift adds delta to an in-range value and saturates at the bounds.
// The headroom comparison avoids integer overflow for extreme deltas.
func shift(current, delta int) int {
	switch {
	case delta > 0 && delta >= MaxValue-current:
		return MaxValue
	case delta < 0 && delta <= MinValue-current:
		return MinValue
	}
	return clamp(current+delta, MinValue, MaxValue)
}

func clamp(v, lo, hi int) int {
	return min(hi, max(lo, v))
}
