package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const ext = ".json"

// Key identifies one provider request.
type Key struct {
	Provider     string
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// Hash returns the hex SHA-256 of the key. Every field is length-prefixed
// so no two distinct keys share an encoding.
func (k Key) Hash() string {
	h := sha256.New()
	for _, part := range []string{k.Provider, k.Model, k.SystemPrompt, k.UserPrompt} {
		fmt.Fprintf(h, "%d:%s;", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Entry is one stored response.
type Entry struct {
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cache stores raw provider responses as one JSON file per request.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	now     func() time.Time
}

// New creates a Cache. An empty dir selects the default cache directory.
// A ttlSeconds of zero keeps entries forever.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{now: time.Now}, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
		now:     time.Now,
	}, nil
}

// Dir returns the cache directory, empty when disabled.
func (c *Cache) Dir() string { return c.dir }

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool { return c.enabled }

func (c *Cache) expired(e Entry) bool {
	return c.ttl > 0 && c.now().Sub(e.CreatedAt) > c.ttl
}

func (c *Cache) path(k Key) string {
	return filepath.Join(c.dir, k.Hash()+ext)
}

// Get returns the stored response for k. Expired or unreadable entries are
// removed and reported as misses.
func (c *Cache) Get(k Key) (string, bool) {
	if !c.enabled {
		return "", false
	}
	path := c.path(k)
	e, err := readEntry(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			os.Remove(path)
		}
		return "", false
	}
	if c.expired(e) {
		os.Remove(path)
		return "", false
	}
	return e.Response, true
}

// Put stores response under k. The entry is written to a temp file and
// renamed so a concurrent reader never sees a partial entry.
func (c *Cache) Put(k Key, response string) error {
	if !c.enabled {
		return nil
	}
	data, err := json.Marshal(Entry{
		Provider:  k.Provider,
		Model:     k.Model,
		Response:  response,
		CreatedAt: c.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(k)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	return c.remove(func(Entry, error) bool { return true })
}

// Prune removes expired and unreadable entries and returns how many were
// removed.
func (c *Cache) Prune() (int, error) {
	return c.remove(func(e Entry, err error) bool { return err != nil || c.expired(e) })
}

func (c *Cache) remove(match func(Entry, error) bool) (int, error) {
	removed := 0
	err := c.each(func(path string, _ fs.FileInfo, e Entry, err error) error {
		if !match(e, err) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing cache entry: %w", err)
		}
		removed++
		return nil
	})
	return removed, err
}

// Stats summarises the cache contents.
type Stats struct {
	Dir        string         `json:"dir"`
	Entries    int            `json:"entries"`
	Expired    int            `json:"expired"`
	TotalBytes int64          `json:"totalBytes"`
	Providers  map[string]int `json:"providers"`
}

// Stats walks the cache directory. Unreadable entries count toward Entries
// and Expired.
func (c *Cache) Stats() (Stats, error) {
	st := Stats{Dir: c.dir, Providers: map[string]int{}}
	err := c.each(func(_ string, info fs.FileInfo, e Entry, err error) error {
		st.Entries++
		st.TotalBytes += info.Size()
		if err != nil || c.expired(e) {
			st.Expired++
			return nil
		}
		st.Providers[e.Provider+"/"+e.Model]++
		return nil
	})
	return st, err
}

// each calls fn for every entry file. err is the decode error for that
// entry, if any.
func (c *Cache) each(fn func(path string, info fs.FileInfo, e Entry, err error) error) error {
	if !c.enabled {
		return nil
	}
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, d := range dirents {
		if d.IsDir() || filepath.Ext(d.Name()) != ext {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(c.dir, d.Name())
		e, decodeErr := readEntry(path)
		if err := fn(path, info, e, decodeErr); err != nil {
			return err
		}
	}
	return nil
}

func readEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return e, nil
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "rework"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "rework"), nil
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "rework", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "rework", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "rework"), nil
	}
}
