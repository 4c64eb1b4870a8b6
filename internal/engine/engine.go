package engine

import (
	"context"
	"strings"
	"time"

	"github.com/linnemanlabs/salus/internal/kb"
)

// fallbackReply is returned when no topic or emergency rule matches.
const fallbackReply = "I don't have specific information about that yet. " +
	"Try rephrasing with the main symptom in a full sentence, like " +
	"\"What causes chest pain?\" or \"Why do I feel dizzy?\". For advice " +
	"specific to you, please consult a qualified healthcare professional."

// compiledKeyword is a keyword pre-normalized at engine construction so the
// hot path never re-normalizes. Weight is twice the keyword's token count:
// the ×2 scale keeps scores integral while letting the follow-up bonus (1)
// sit at half a single-word unit, small enough that it can break exact raw
// ties but never overcome a full keyword-weight tier.
type compiledKeyword struct {
	text   string
	weight int
}

const followupBonus = 1

type compiledTopic struct {
	category  string
	severity  kb.Severity
	response  string
	followups []string
	keywords  []compiledKeyword
}

type compiledRule struct {
	keywords []string
	message  string
}

// Engine resolves free-text input against an immutable knowledge base.
// Construct once and share: Resolve is safe for concurrent use.
type Engine struct {
	topics     []compiledTopic
	byCategory map[string]*compiledTopic
	rules      []compiledRule
	disclaimer string
	hooks      Hooks
}

// Hooks receives engine events for instrumentation. Nil funcs are skipped.
type Hooks struct {
	OnResolve func(outcome Outcome, category string, score int, duration float64)
}

// New compiles the knowledge base into an engine. Keyword normalization
// and weighting happen here, once.
func New(k *kb.KB, hooks Hooks) *Engine {
	e := &Engine{
		byCategory: make(map[string]*compiledTopic, k.Len()),
		disclaimer: k.Disclaimer(),
		hooks:      hooks,
	}

	for _, t := range k.Topics() {
		ct := compiledTopic{
			category:  t.Category,
			severity:  t.Severity,
			response:  t.Response,
			followups: t.Followups,
			keywords:  compileKeywords(t.Keywords),
		}
		e.topics = append(e.topics, ct)
	}
	for i := range e.topics {
		e.byCategory[e.topics[i].category] = &e.topics[i]
	}

	for _, r := range k.EmergencyRules() {
		cr := compiledRule{message: r.Message}
		for _, kw := range r.Keywords {
			if n := Normalize(kw); n != "" {
				cr.keywords = append(cr.keywords, n)
			}
		}
		e.rules = append(e.rules, cr)
	}

	return e
}

// compileKeywords normalizes and de-duplicates a topic's keyword list.
// A keyword that normalizes to the empty string is dropped: the empty
// string is a substring of everything and would match every input.
func compileKeywords(keywords []string) []compiledKeyword {
	seen := make(map[string]bool, len(keywords))
	out := make([]compiledKeyword, 0, len(keywords))
	for _, kw := range keywords {
		n := Normalize(kw)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, compiledKeyword{
			text:   n,
			weight: 2 * len(strings.Fields(n)),
		})
	}
	return out
}

// Resolve runs one turn: normalize, emergency detection, scoring, then
// resolution with the fallback policy. It is deterministic and total -
// identical (text, context) always produce the identical result, and no
// input can make it fail. The returned Context replaces the caller's
// stored context for the conversation.
func (e *Engine) Resolve(_ context.Context, text string, cc Context) (Result, Context) {
	start := time.Now()
	norm := Normalize(text)

	if rule := e.detectEmergency(norm); rule != nil {
		res := Result{
			Outcome:     OutcomeEmergency,
			Severity:    kb.SeverityEmergency,
			Reply:       rule.message + "\n\n" + e.disclaimer,
			IsEmergency: true,
		}
		e.observe(res, start)
		return res, cc.afterEmergency()
	}

	scores := e.scoreTopics(norm, cc)
	if len(scores) == 0 {
		res := Result{
			Outcome:  OutcomeFallback,
			Severity: kb.SeverityInfo,
			Reply:    fallbackReply + "\n\n" + e.disclaimer,
		}
		e.observe(res, start)
		return res, cc.afterFallback()
	}

	top := scores[0]
	t := e.byCategory[top.Category]
	res := Result{
		Outcome:  OutcomeMatched,
		Category: top.Category,
		Score:    top.Score,
		Severity: t.severity,
		Reply:    t.response + "\n\n" + e.disclaimer,
	}
	e.observe(res, start)
	return res, cc.afterMatch(top.Category, t.followups)
}

// detectEmergency returns the first emergency rule, in declaration order,
// with any keyword present in the normalized input. Declaration order is
// the documented tie-break when several rules match.
func (e *Engine) detectEmergency(norm string) *compiledRule {
	if norm == "" {
		return nil
	}
	for i := range e.rules {
		for _, kw := range e.rules[i].keywords {
			if contains(norm, kw) {
				return &e.rules[i]
			}
		}
	}
	return nil
}

func (e *Engine) observe(res Result, start time.Time) {
	if e.hooks.OnResolve != nil {
		e.hooks.OnResolve(res.Outcome, res.Category, res.Score, time.Since(start).Seconds())
	}
}
