// Package config loads and merges rework configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (REWORK_PROVIDER, REWORK_MODEL, REWORK_MODE, etc.)
//  3. Config file ($XDG_CONFIG_HOME/rework/config.json, or the file named by
//     --config, which may be JSON or YAML)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
