package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func key(name string) Key {
	return Key{Provider: "gemini", Model: "gemini-2.5-flash-lite", SystemPrompt: "system", UserPrompt: "FILE PATH: " + name}
}

// clock is a settable time source for TTL tests.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newCache(t *testing.T, ttlSeconds int) (*Cache, *clock) {
	t.Helper()
	c, err := New(true, t.TempDir(), ttlSeconds)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	clk := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clk.now
	return c, clk
}

func TestCache_PutGet(t *testing.T) {
	c, _ := newCache(t, 86400)
	k := key("a.go")
	value := "```go\npackage main\n```"

	if _, ok := c.Get(k); ok {
		t.Error("Expected cache miss before put")
	}
	if err := c.Put(k, value); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, ok := c.Get(k)
	if !ok {
		t.Fatal("Expected cache hit after put")
	}
	if got != value {
		t.Errorf("Got = %q, want %q", got, value)
	}
	if _, ok := c.Get(key("b.go")); ok {
		t.Error("Different file should miss")
	}
}

func TestCache_EntriesAreOwnerOnly(t *testing.T) {
	c, _ := newCache(t, 0)
	if err := c.Put(key("a.go"), "secret source"); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(c.path(key("a.go")))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("entry permissions = %o, want no group/other access", perm)
	}
}

func TestCache_PutLeavesNoTempFiles(t *testing.T) {
	c, _ := newCache(t, 0)
	for _, name := range []string{"a.go", "b.go", "a.go"} {
		if err := c.Put(key(name), "x"); err != nil {
			t.Fatal(err)
		}
	}
	dirents, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(dirents) != 2 {
		t.Errorf("got %d files in cache dir, want 2", len(dirents))
	}
	for _, d := range dirents {
		if filepath.Ext(d.Name()) != ".json" {
			t.Errorf("unexpected file %s", d.Name())
		}
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	c, clk := newCache(t, 60)

	if err := c.Put(key("stale"), "b"); err != nil {
		t.Fatal(err)
	}
	clk.t = clk.t.Add(2 * time.Minute)
	if err := c.Put(key("fresh"), "a"); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(key("fresh")); !ok {
		t.Error("Expected hit for fresh entry")
	}
	if _, ok := c.Get(key("stale")); ok {
		t.Error("Expected miss for expired entry")
	}
	if _, err := os.Stat(c.path(key("stale"))); !os.IsNotExist(err) {
		t.Error("Expired entry should be removed on read")
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c, clk := newCache(t, 0)
	if err := c.Put(key("a.go"), "x"); err != nil {
		t.Fatal(err)
	}
	clk.t = clk.t.Add(365 * 24 * time.Hour)
	if _, ok := c.Get(key("a.go")); !ok {
		t.Error("Expected hit with TTL disabled")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	c, _ := newCache(t, 0)
	path := c.path(key("a.go"))
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(key("a.go")); ok {
		t.Error("Corrupt entry should miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Corrupt entry should be removed on read")
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Enabled() {
		t.Error("Cache should be disabled")
	}
	if c.Dir() != "" {
		t.Errorf("Dir = %q, want empty", c.Dir())
	}
	if err := c.Put(key("a.go"), "value"); err != nil {
		t.Errorf("Put on disabled cache should not error: %v", err)
	}
	if _, ok := c.Get(key("a.go")); ok {
		t.Error("Get on disabled cache should always miss")
	}
	if n, err := c.Clear(); err != nil || n != 0 {
		t.Errorf("Clear on disabled cache = %d, %v", n, err)
	}
}

func countEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			n++
		}
	}
	return n
}

func TestCache_Clear(t *testing.T) {
	c, _ := newCache(t, 86400)
	for _, name := range []string{"a.go", "b.py", "c.ts"} {
		if err := c.Put(key(name), "data"); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(c.Dir(), "keep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	if n := countEntries(t, c.Dir()); n != 0 {
		t.Errorf("Expected 0 cache entries after clear, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(c.Dir(), "keep.txt")); err != nil {
		t.Error("Clear should only remove cache entries")
	}
}

func TestCache_Prune(t *testing.T) {
	c, clk := newCache(t, 60)
	if err := c.Put(key("old.go"), "x"); err != nil {
		t.Fatal(err)
	}
	clk.t = clk.t.Add(time.Hour)
	if err := c.Put(key("new.go"), "y"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(c.Dir(), "broken.json"), []byte("nope"), 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if n != 2 {
		t.Errorf("Prune removed %d, want 2", n)
	}
	if _, ok := c.Get(key("new.go")); !ok {
		t.Error("Fresh entry should survive prune")
	}
}

func TestCache_Stats(t *testing.T) {
	c, clk := newCache(t, 60)

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0", stats.Entries)
	}

	if err := c.Put(Key{Provider: "openai", Model: "gpt-4.1-mini", UserPrompt: "x"}, "v"); err != nil {
		t.Fatal(err)
	}
	clk.t = clk.t.Add(time.Hour)
	if err := c.Put(key("a.go"), "v1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(key("b.go"), "v2"); err != nil {
		t.Fatal(err)
	}

	stats, err = c.Stats()
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.Entries != 3 {
		t.Errorf("Entries = %d, want 3", stats.Entries)
	}
	if stats.Expired != 1 {
		t.Errorf("Expired = %d, want 1", stats.Expired)
	}
	if stats.TotalBytes <= 0 {
		t.Error("TotalBytes should be > 0")
	}
	if stats.Dir != c.Dir() {
		t.Errorf("Dir = %q, want %q", stats.Dir, c.Dir())
	}
	if got := stats.Providers["gemini/gemini-2.5-flash-lite"]; got != 2 {
		t.Errorf("Providers[gemini] = %d, want 2", got)
	}
	if _, ok := stats.Providers["openai/gpt-4.1-mini"]; ok {
		t.Error("Expired entries should not be counted per provider")
	}
}

func TestKeyHash(t *testing.T) {
	base := Key{Provider: "gemini", Model: "gemini-2.5-flash", SystemPrompt: "sys", UserPrompt: "user"}
	same := base
	provider := base
	provider.Provider = "openai"
	moved := Key{Provider: "gemini", Model: "gemini-2.5-flash", SystemPrompt: "sys:user", UserPrompt: ""}
	mode := base
	mode.SystemPrompt = "other mode"

	if base.Hash() != same.Hash() {
		t.Error("Same inputs should produce same hash")
	}
	if len(base.Hash()) != 64 {
		t.Errorf("Hash length = %d, want 64", len(base.Hash()))
	}
	if base.Hash() == provider.Hash() {
		t.Error("Different provider should produce different hash")
	}
	if base.Hash() == moved.Hash() {
		t.Error("Moving text between prompts should change the hash")
	}
	if base.Hash() == mode.Hash() {
		t.Error("Different instructions should produce different hash")
	}
}
