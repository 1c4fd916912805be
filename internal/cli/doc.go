// Package cli wires together the Cobra command tree for the rework binary.
//
// It defines the root command and all subcommands (review, config, models,
// cache, key, version), binds flags, reads configuration, runs a review
// session, and returns deterministic exit codes.
package cli
