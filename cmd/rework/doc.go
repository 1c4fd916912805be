// Rework is a CLI that rewrites source files with an LLM provider, one
// reviewed diff at a time.
//
// It walks a file or directory, sends each eligible file to the provider,
// shows the proposed rewrite next to the original, and writes it only when
// you approve. Exit codes are deterministic.
//
// Usage:
//
//	rework review ./src                 # pick a mode, review every file
//	rework review --mode security app.go
//	rework review --dry-run ./src       # print diffs, never write
//	rework review --yes --plain ./src   # apply everything without prompts
//	rework key set                      # store the provider API key
//	rework models doctor                # check the provider credentials
package main
