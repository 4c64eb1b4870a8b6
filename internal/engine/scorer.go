package engine

import "sort"

// TopicScore is one topic's relevance for an input.
type TopicScore struct {
	Category string
	Score    int
}

// scoreTopics scores every topic against the normalized input and returns
// the topics with a positive score, ordered by descending score then
// ascending category for a deterministic tie-break.
//
// A topic's raw score is the sum of weights of its distinct matched
// keywords (weight = 2 × keyword token count, so multi-word phrases beat
// single words). Topics named in the context's active follow-ups get the
// follow-up bonus on top - but only when at least one keyword actually
// matched, so the bonus alone can never clear the relevance threshold.
func (e *Engine) scoreTopics(norm string, cc Context) []TopicScore {
	if norm == "" {
		return nil
	}

	var out []TopicScore
	for i := range e.topics {
		t := &e.topics[i]

		raw := 0
		for _, kw := range t.keywords {
			if contains(norm, kw.text) {
				raw += kw.weight
			}
		}
		if raw == 0 {
			continue
		}

		score := raw
		if cc.HasFollowup(t.category) {
			score += followupBonus
		}
		out = append(out, TopicScore{Category: t.category, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Category < out[j].Category
	})
	return out
}
