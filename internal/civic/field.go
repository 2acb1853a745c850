package civic

import "fmt"

// Field identifies one of the seven state variables.
type Field uint8

// Canonical field order. Metrics fields come first, world fields after.
const (
	CivicAwareness Field = iota
	Empathy
	SocialTrust
	PersonalConvenience
	PublicPatience
	CleanlinessLevel
	CooperationLevel
)

// NumFields is the total number of state variables.
const NumFields = 7

var fieldNames = [NumFields]string{
	"civicAwareness",
	"empathy",
	"socialTrust",
	"personalConvenience",
	"publicPatience",
	"cleanlinessLevel",
	"cooperationLevel",
}

var fieldLabels = [NumFields]string{
	"Civic Awareness",
	"Empathy",
	"Social Trust",
	"Convenience",
	"Public Patience",
	"Cleanliness",
	"Cooperation",
}

// String returns the wire name, e.g. "civicAwareness".
func (f Field) String() string {
	if int(f) < NumFields {
		return fieldNames[f]
	}
	return fmt.Sprintf("Field(%d)", uint8(f))
}

// Label returns the human-readable name shown to users.
func (f Field) Label() string {
	if int(f) < NumFields {
		return fieldLabels[f]
	}
	return f.String()
}

// IsWorld reports whether the field belongs to WorldState.
func (f Field) IsWorld() bool {
	return f >= PublicPatience && int(f) < NumFields
}

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	if int(f) >= NumFields {
		return nil, fmt.Errorf("marshal %s: %w", f, ErrUnknownField)
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseField resolves a wire name to its Field.
func ParseField(name string) (Field, error) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownField)
}

// Fields returns all seven fields in canonical order.
func Fields() []Field {
	return []Field{
		CivicAwareness, Empathy, SocialTrust, PersonalConvenience,
		PublicPatience, CleanlinessLevel, CooperationLevel,
	}
}

// MetricFields returns the four Metrics fields.
func MetricFields() []Field {
	return []Field{CivicAwareness, Empathy, SocialTrust, PersonalConvenience}
}

// WorldFields returns the three WorldState fields.
func WorldFields() []Field {
	return []Field{PublicPatience, CleanlinessLevel, CooperationLevel}
}

// Level buckets a value for display.
type Level uint8

const (
	LevelLow      Level = iota // below 45
	LevelModerate              // 45–64
	LevelHigh                  // 65 and above
)

// LevelOf returns the display band for a value.
func LevelOf(v int) Level {
	switch {
	case v >= 65:
		return LevelHigh
	case v >= 45:
		return LevelModerate
	default:
		return LevelLow
	}
}

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "high"
	case LevelModerate:
		return "moderate"
	default:
		return "low"
	}
}
