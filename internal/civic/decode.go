package civic

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrMissingField reports a state object that omits one of its fields.
	ErrMissingField = errors.New("missing field")
	// ErrDuplicateField reports a JSON object naming the same field twice.
	ErrDuplicateField = errors.New("duplicate field")
)

// decodeFields reads a JSON object whose keys are exact wire names from
// allowed. encoding/json matches keys case-insensitively and lets a repeated
// key overwrite the first, so the object is walked token by token instead.
// With requireAll, every allowed field must be present.
func decodeFields(data []byte, allowed []Field, requireAll bool) (map[Field]int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	values := make(map[Field]int, len(allowed))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		f, err := ParseField(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(allowed, f) {
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownField)
		}
		if _, dup := values[f]; dup {
			return nil, fmt.Errorf("%q: %w", name, ErrDuplicateField)
		}
		var v int
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		values[f] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	if requireAll {
		for _, f := range allowed {
			if _, ok := values[f]; !ok {
				return nil, fmt.Errorf("%s: %w", f, ErrMissingField)
			}
		}
	}
	return values, nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// UnmarshalJSON requires all four metric fields, spelled exactly.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return fmt.Errorf("decode metrics: %w", ErrMissingField)
	}
	v, err := decodeFields(data, MetricFields(), true)
	if err != nil {
		return fmt.Errorf("decode metrics: %w", err)
	}
	*m = Metrics{
		CivicAwareness:      v[CivicAwareness],
		Empathy:             v[Empathy],
		SocialTrust:         v[SocialTrust],
		PersonalConvenience: v[PersonalConvenience],
	}
	return nil
}

// UnmarshalJSON requires all three world fields, spelled exactly.
func (w *WorldState) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return fmt.Errorf("decode world state: %w", ErrMissingField)
	}
	v, err := decodeFields(data, WorldFields(), true)
	if err != nil {
		return fmt.Errorf("decode world state: %w", err)
	}
	*w = WorldState{
		PublicPatience:   v[PublicPatience],
		CleanlinessLevel: v[CleanlinessLevel],
		CooperationLevel: v[CooperationLevel],
	}
	return nil
}

// UnmarshalJSON accepts any subset of the seven fields, spelled exactly and
// named at most once. Absent fields contribute zero.
func (i *ChoiceImpact) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	v, err := decodeFields(data, Fields(), false)
	if err != nil {
		return fmt.Errorf("decode impact: %w", err)
	}
	var impact ChoiceImpact
	for f, d := range v {
		impact.Set(f, d)
	}
	*i = impact
	return nil
}
