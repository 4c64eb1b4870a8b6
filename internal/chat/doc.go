// Package chat is the business boundary for Salus conversations. It owns
// what the engine deliberately does not: conversation identity, context
// storage between turns, per-conversation call serialization, transcript
// persistence, and emergency escalation. The Service is the "caller" the
// engine's contract talks about.
package chat
