// Package cache stores raw provider responses on disk so that re-running a
// session over unchanged files costs no provider requests.
//
// Each request is identified by a [Key] (provider, model and both prompts;
// the user prompt embeds the file path and content). Entries live in one
// owner-only JSON file per key under $XDG_CACHE_HOME/rework or the
// OS-appropriate equivalent, and expire after a TTL. [Cache.Prune] drops
// expired entries; [Cache.Clear] drops everything.
package cache
