// Package review runs a review session: the sequential per-file pipeline
// that reads each candidate, asks the provider for a rewrite, normalizes the
// answer, classifies failures and lets the user apply or skip the result.
//
// The session is strictly sequential. Cancellation is observed only between
// files; a provider call that has started is always allowed to finish. The
// [Summary] counters are updated through the pure [Summary.Record]
// transition, so Reviewed always equals the sum of the outcome counters.
//
// Provider instructions are chosen per [Mode] (prompt.go) and may be extended
// with a rules pack (rules.go).
package review
