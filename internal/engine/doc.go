// Package engine implements Salus's rule-based triage engine: input
// normalization, emergency detection, keyword scoring with conversational
// follow-up bias, and response resolution. The engine is a pure function
// of (input text, prior context) over an immutable knowledge base; it
// performs no I/O, never fails at runtime, and is safe for unlimited
// concurrent callers as long as each conversation's Context is touched by
// at most one in-flight call.
package engine
