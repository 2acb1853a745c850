package scenario

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/civicsim/internal/civic"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 8, c.Len())

	wantOrder := []string{
		"queue-railway", "loud-phone", "litter-park", "bus-seat",
		"lost-wallet", "late-night-signal", "cleanup-drive", "roadside-accident",
	}
	for i, id := range wantOrder {
		s := c.At(i)
		assert.Equal(t, id, s.ID)
		assert.NotEmpty(t, s.Title)
		assert.NotEmpty(t, s.Description)
		assert.GreaterOrEqual(t, len(s.Choices), 2)
		for _, ch := range s.Choices {
			assert.NotEmpty(t, ch.Consequence, "choice %s", ch.ID)
			assert.False(t, ch.Impact.IsZero(), "choice %s", ch.ID)
			for _, d := range ch.Impact.NonZero() {
				assert.LessOrEqual(t, d.Delta, 14, "choice %s", ch.ID)
				assert.GreaterOrEqual(t, d.Delta, -14, "choice %s", ch.ID)
			}
		}
	}
}

func TestDefaultCatalogQueueImpacts(t *testing.T) {
	ch, err := Default().Choice("queue-railway", "queue-decline")
	require.NoError(t, err)
	assert.Equal(t, civic.ChoiceImpact{
		CivicAwareness:      10,
		SocialTrust:         5,
		Empathy:             5,
		PublicPatience:      5,
		PersonalConvenience: -5,
	}, ch.Impact)
}

func TestCatalogLookup(t *testing.T) {
	c := Default()

	s, ok := c.Scenario("litter-park")
	require.True(t, ok)
	assert.Equal(t, "Litter in Public Park", s.Title)

	_, ok = c.Scenario("missing")
	assert.False(t, ok)

	_, err := c.Choice("missing", "litter-pickup")
	assert.ErrorIs(t, err, ErrUnknownScenario)

	_, err = c.Choice("litter-park", "queue-accept")
	assert.ErrorIs(t, err, ErrUnknownChoice)

	rec := s.Record(s.Choices[0])
	assert.Equal(t, "litter-park", rec.ScenarioID)
	assert.Equal(t, s.Choices[0].ID, rec.ChoiceID)
	assert.Equal(t, s.Choices[0].Impact, rec.Impact)
}

func TestCatalogScenariosIsACopy(t *testing.T) {
	c := Default()
	list := c.Scenarios()
	list[0].Title = "changed"
	assert.NotEqual(t, "changed", c.At(0).Title)
}

func TestCatalogChoicesAreNotShared(t *testing.T) {
	source := []Scenario{{
		ID:    "only",
		Title: "Only",
		Choices: []Choice{
			{ID: "up", Text: "Up", Impact: civic.ChoiceImpact{Empathy: 3}},
			{ID: "down", Text: "Down"},
		},
	}}
	c, err := NewCatalog(source)
	require.NoError(t, err)
	source[0].Choices[0].Impact.Empathy = 99

	c.Scenarios()[0].Choices[0].Impact.Empathy = 99
	c.At(0).Choices[0].Impact.Empathy = 99
	sc, ok := c.Scenario("only")
	require.True(t, ok)
	sc.Choices[0].Impact.Empathy = 99

	ch, err := c.Choice("only", "up")
	require.NoError(t, err)
	assert.Equal(t, 3, ch.Impact.Empathy)
}

func TestNewCatalogValidation(t *testing.T) {
	two := []Choice{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}}

	tests := []struct {
		name      string
		scenarios []Scenario
		wantMsg   string
	}{
		{"empty", nil, "no scenarios"},
		{"missing id", []Scenario{{Title: "T", Choices: two}}, "has no id"},
		{"missing title", []Scenario{{ID: "s", Choices: two}}, "has no title"},
		{"too few choices", []Scenario{{ID: "s", Title: "T", Choices: two[:1]}}, "at least 2 choices"},
		{"duplicate scenario", []Scenario{
			{ID: "s", Title: "T", Choices: two},
			{ID: "s", Title: "U", Choices: []Choice{{ID: "c", Text: "C"}, {ID: "d", Text: "D"}}},
		}, "duplicate scenario id"},
		{"duplicate choice across scenarios", []Scenario{
			{ID: "s", Title: "T", Choices: two},
			{ID: "u", Title: "U", Choices: []Choice{{ID: "a", Text: "C"}, {ID: "d", Text: "D"}}},
		}, `choice id "a"`},
		{"blank choice text", []Scenario{{ID: "s", Title: "T", Choices: []Choice{{ID: "a", Text: "A"}, {ID: "b"}}}}, "has no text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.scenarios)
			require.ErrorIs(t, err, ErrInvalidCatalog)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecodeRejectsUnknownImpactField(t *testing.T) {
	doc := `
scenarios:
  - id: s
    title: T
    description: D
    choices:
      - id: a
        text: A
        impact:
          empathy: 5
          karma: 3
      - id: b
        text: B
`
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "karma")
}

func TestDecodeEmptyDocument(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Default()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, original))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, original.Scenarios(), decoded.Scenarios())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultCatalogYAML, 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
