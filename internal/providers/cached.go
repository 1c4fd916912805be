package providers

import (
	"context"
	"iter"
	"strings"

	"github.com/dshills/rework/internal/cache"
)

// cached serves repeated requests from the response cache.
type cached struct {
	Improver
	cache *cache.Cache
}

// WithCache wraps p so that successful responses are stored in c and
// replayed for identical requests. A nil or disabled cache returns p as is.
func WithCache(p Improver, c *cache.Cache) Improver {
	if c == nil || !c.Enabled() {
		return p
	}
	return &cached{Improver: p, cache: c}
}

func (c *cached) Improve(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		key := cache.Key{
			Provider:     c.Name(),
			Model:        c.Model(),
			SystemPrompt: req.SystemPrompt,
			UserPrompt:   req.UserPrompt,
		}
		if text, ok := c.cache.Get(key); ok {
			yield(text, nil)
			return
		}

		var b strings.Builder
		for frag, err := range c.Improver.Improve(ctx, req) {
			if err != nil {
				yield("", err)
				return
			}
			b.WriteString(frag)
			if !yield(frag, nil) {
				return
			}
		}
		// A failed write only costs a future cache miss.
		_ = c.cache.Put(key, b.String())
	}
}
