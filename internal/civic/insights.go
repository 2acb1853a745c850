// Feedback battery: fixed threshold checks, each mapped to one message.
// Values exactly on 35, 50 or 65 and anything in 50–64 fall in a neutral zone
// and produce no per-field message in the improvement band.
package civic

// Thresholds for the feedback battery.
const (
	StrengthThreshold = 65 // >= is a strength
	CriticalThreshold = 35 // <= is critical
	ImprovementUpper  = 50 // improvement band is (CriticalThreshold, ImprovementUpper)
)

// Messages used when a category has no matching rule.
const (
	FallbackStrength    = "You completed the simulation — self-awareness is the first step toward civic growth."
	FallbackImprovement = "With strong foundations, focus on consistency — being civic in difficult moments, not just easy ones."
	FallbackCritical    = "No critical concerns — your civic behavior is generally positive. Keep building on it."
)

type insightRule struct {
	field   Field
	test    func(v int) bool
	message string
}

type ruleSet struct {
	rules    []insightRule
	fallback string
}

func atLeast(n int) func(int) bool { return func(v int) bool { return v >= n } }
func atMost(n int) func(int) bool  { return func(v int) bool { return v <= n } }
func between(lo, hi int) func(int) bool {
	return func(v int) bool { return v > lo && v < hi }
}

var strengthRules = ruleSet{
	rules: []insightRule{
		{CivicAwareness, atLeast(StrengthThreshold), "Strong civic awareness — you understand that public life requires active participation."},
		{Empathy, atLeast(StrengthThreshold), "High empathy — you notice how situations affect others, not just yourself."},
		{SocialTrust, atLeast(StrengthThreshold), "You build social trust through your actions, reinforcing faith in community."},
		{CooperationLevel, atLeast(StrengthThreshold), "You foster cooperation — your presence makes collective action more likely."},
		{CleanlinessLevel, atLeast(StrengthThreshold), "You contribute to cleaner, more pleasant shared environments."},
		{PublicPatience, atLeast(StrengthThreshold), "Your behavior promotes patience and calm in public spaces."},
	},
	fallback: FallbackStrength,
}

var improvementRules = ruleSet{
	rules: []insightRule{
		{CivicAwareness, between(CriticalThreshold, ImprovementUpper), "Your civic awareness has room to grow — small actions in public spaces can build the habit."},
		{Empathy, between(CriticalThreshold, ImprovementUpper), "You sometimes overlook how your choices affect others emotionally."},
		{SocialTrust, between(CriticalThreshold, ImprovementUpper), "Your actions occasionally undermine trust — consider how your choices appear to others."},
		{PersonalConvenience, atLeast(StrengthThreshold), "You lean heavily toward personal convenience — consider what's lost when everyone does the same."},
		{CooperationLevel, between(CriticalThreshold, ImprovementUpper), "Cooperation around you could be stronger — try engaging with others instead of going solo."},
	},
	fallback: FallbackImprovement,
}

var criticalRules = ruleSet{
	rules: []insightRule{
		{CivicAwareness, atMost(CriticalThreshold), "Your civic awareness is critically low. Public spaces need active, engaged citizens — not spectators."},
		{Empathy, atMost(CriticalThreshold), "Empathy was largely absent in your choices. People around you were hurting, and you looked away."},
		{SocialTrust, atMost(CriticalThreshold), "Your actions eroded social trust significantly. Communities can't function without mutual confidence."},
		{CleanlinessLevel, atMost(CriticalThreshold), "Public spaces deteriorated due to choices like yours. Shared environments need shared responsibility."},
		{PublicPatience, atMost(CriticalThreshold), "Public patience collapsed. When confrontation replaces dialogue, everyone suffers."},
	},
	fallback: FallbackCritical,
}

// collect returns every matching message, or the fallback alone.
func (rs ruleSet) collect(m Metrics, w WorldState) []string {
	var out []string
	for _, r := range rs.rules {
		if r.test(Value(m, w, r.field)) {
			out = append(out, r.message)
		}
	}
	if len(out) == 0 {
		out = append(out, rs.fallback)
	}
	return out
}
