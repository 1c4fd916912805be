// Package output formats session reports for display or machine consumption.
//
// Three formats are supported:
//   - text: human-readable terminal output (default)
//   - json: the full structured session result
//   - markdown: a summary table plus a collapsible per-file list
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*review.Result]. [WriteReport]
// handles destination selection.
package output
