// Package kb defines the immutable medical knowledge base: the topic
// catalogue the engine scores against and the emergency rules that can
// short-circuit it. A KB is built once at startup by Load or Parse and
// is safe for unlimited concurrent readers.
package kb

// Severity is the urgency tier attached to a topic or emergency rule.
type Severity string

const (
	// SeverityInfo is general educational content with no urgency.
	SeverityInfo Severity = "info"

	// SeverityMild means self-care is usually sufficient.
	SeverityMild Severity = "mild"

	// SeverityModerate means a provider visit is advisable if symptoms persist.
	SeverityModerate Severity = "moderate"

	// SeveritySerious means prompt medical evaluation is needed.
	SeveritySerious Severity = "serious"

	// SeverityEmergency means immediate emergency care is required.
	SeverityEmergency Severity = "emergency"
)

// Valid reports whether s is one of the recognized severity tiers.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityMild, SeverityModerate, SeveritySerious, SeverityEmergency:
		return true
	}
	return false
}

// Topic is a single subject the engine can respond about. Keywords are in
// declaration order; Followups name categories likely to come up next and
// bias the following turn's scoring.
type Topic struct {
	Category  string   `yaml:"category"`
	Keywords  []string `yaml:"keywords"`
	Response  string   `yaml:"response"`
	Severity  Severity `yaml:"severity"`
	Followups []string `yaml:"followup"`
}

// EmergencyRule matches inputs that must bypass topic scoring entirely.
// Rule order in the source is significant: when several rules match, the
// first declared wins.
type EmergencyRule struct {
	Keywords []string `yaml:"keywords"`
	Message  string   `yaml:"message"`
}

// KB is a validated, immutable knowledge base.
type KB struct {
	topics      []Topic
	byCategory  map[string]int // category -> index into topics
	emergencies []EmergencyRule
	disclaimer  string
}

// Topics returns all topics in declaration order. Callers must not modify
// the returned slice or its entries.
func (k *KB) Topics() []Topic {
	return k.topics
}

// Topic looks up a topic by category id.
func (k *KB) Topic(category string) (*Topic, bool) {
	i, ok := k.byCategory[category]
	if !ok {
		return nil, false
	}
	return &k.topics[i], true
}

// EmergencyRules returns the emergency rules in declaration order.
// Callers must not modify the returned slice or its entries.
func (k *KB) EmergencyRules() []EmergencyRule {
	return k.emergencies
}

// Disclaimer is the fixed suffix appended to every reply.
func (k *KB) Disclaimer() string {
	return k.disclaimer
}

// Len returns the number of topics.
func (k *KB) Len() int {
	return len(k.topics)
}
