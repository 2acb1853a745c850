// Archetype classification: an ordered rule chain, first match wins.
// Predicates overlap, so the order of the table is part of its meaning.
package civic

// ArchetypeID names a civic archetype.
type ArchetypeID string

// Archetype identifiers in priority order.
const (
	CivicChampion       ArchetypeID = "civic-champion"
	EmpatheticSoul      ArchetypeID = "empathetic-soul"
	CommunityBuilder    ArchetypeID = "community-builder"
	QuietContributor    ArchetypeID = "quiet-contributor"
	PragmaticIndividual ArchetypeID = "pragmatic-individual"
	ReluctantCitizen    ArchetypeID = "reluctant-citizen"
	SilentObserver      ArchetypeID = "silent-observer"
)

// Archetype is one entry of the classification table.
type Archetype struct {
	ID          ArchetypeID `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`

	// Matches is evaluated against the final state; nil never matches.
	Matches func(m Metrics, w WorldState) bool `json:"-"`
}

// archetypes is evaluated top to bottom. The last entry always matches.
var archetypes = []Archetype{
	{
		ID:    CivicChampion,
		Title: "The Civic Champion",
		Description: "You consistently chose community over convenience. Your decisions reflect a deep understanding " +
			"that civic life is a shared responsibility. You're the person who makes public spaces better simply by " +
			"being present. The world needs more people like you.",
		Matches: func(m Metrics, _ WorldState) bool {
			return m.CivicAwareness >= 70 && m.Empathy >= 60 && m.SocialTrust >= 60
		},
	},
	{
		ID:    EmpatheticSoul,
		Title: "The Empathetic Soul",
		Description: "Your choices reveal someone who feels deeply for others. You may not always take the boldest " +
			"action, but you never look away from human vulnerability. Your empathy is your compass — it points you " +
			"toward what matters most: people.",
		Matches: func(m Metrics, _ WorldState) bool {
			return m.Empathy >= 70 && m.SocialTrust >= 55
		},
	},
	{
		ID:    CommunityBuilder,
		Title: "The Community Builder",
		Description: "You see solutions where others see problems. Your instinct is to bring people together, to find " +
			"the middle ground, to build systems that work for everyone. You're not just a participant in civic " +
			"life — you're an architect of it.",
		Matches: func(m Metrics, w WorldState) bool {
			return w.CooperationLevel >= 65 && m.CivicAwareness >= 60
		},
	},
	{
		ID:    QuietContributor,
		Title: "The Quiet Contributor",
		Description: "You may not make grand gestures, but your steady, thoughtful choices add up. You do what's right " +
			"when it's convenient and sometimes even when it's not. You're the backbone of society — reliable, " +
			"decent, and often underappreciated.",
		Matches: func(m Metrics, _ WorldState) bool {
			return m.CivicAwareness >= 50 && m.Empathy >= 50 && m.PersonalConvenience <= 60
		},
	},
	{
		ID:    PragmaticIndividual,
		Title: "The Pragmatic Individual",
		Description: "You're practical and self-aware. You know the 'right' thing to do, but you also know the cost. " +
			"Your choices lean toward personal efficiency, and there's honesty in that. The question is whether " +
			"convenience is a choice — or a habit.",
		Matches: func(m Metrics, _ WorldState) bool {
			return m.PersonalConvenience >= 60
		},
	},
	{
		ID:    ReluctantCitizen,
		Title: "The Reluctant Citizen",
		Description: "You're not indifferent — you're cautious. You watch, assess, and sometimes hesitate a moment too " +
			"long. Your civic instincts are there, just underused. The gap between knowing the right thing and doing " +
			"it is where your growth lies.",
		Matches: func(m Metrics, _ WorldState) bool {
			return m.CivicAwareness < 50 && m.Empathy >= 40
		},
	},
	{
		ID:    SilentObserver,
		Title: "The Silent Observer",
		Description: "You tend to stand at the edges, watching civic life unfold without stepping in. There may be many " +
			"reasons — conflict avoidance, time pressure, or a belief that someone else will act. But your choices " +
			"reveal a pattern of disengagement that, over time, shapes the world you live in.",
		Matches: func(Metrics, WorldState) bool { return true },
	},
}

// Archetypes returns the classification table in priority order.
func Archetypes() []Archetype {
	out := make([]Archetype, len(archetypes))
	copy(out, archetypes)
	return out
}

// LookupArchetype finds an archetype by ID.
func LookupArchetype(id ArchetypeID) (Archetype, bool) {
	for _, a := range archetypes {
		if a.ID == id {
			return a, true
		}
	}
	return Archetype{}, false
}

// Classify returns the first archetype whose predicate holds.
func Classify(m Metrics, w WorldState) Archetype {
	for _, a := range archetypes {
		if a.Matches != nil && a.Matches(m, w) {
			return a
		}
	}
	// Unreachable while the table ends with the catch-all.
	return archetypes[len(archetypes)-1]
}

// DetermineProfile classifies the final state and derives feedback.
//
// The choice history is accepted for callers that track it but does not
// influence the result.
func DetermineProfile(m Metrics, w WorldState, _ []ChoiceRecord) CivicProfile {
	a := Classify(m, w)
	return CivicProfile{
		Archetype:        a.ID,
		Title:            a.Title,
		Description:      a.Description,
		Strengths:        strengthRules.collect(m, w),
		Improvements:     improvementRules.collect(m, w),
		CriticalInsights: criticalRules.collect(m, w),
	}
}
