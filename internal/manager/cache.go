package manager

import (
	"strconv"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"hfserve/internal/backend"
	"hfserve/internal/config"
)

// responseCache memoizes greedy (temperature 0) generations, which are
// deterministic for a given prompt and option set. A nil cache is valid and
// never hits.
type responseCache struct {
	c *ttlcache.Cache[string, string]
}

func newResponseCache(s config.Settings) *responseCache {
	if s.ResponseCacheTTLSeconds <= 0 {
		return nil
	}
	opts := []ttlcache.Option[string, string]{
		ttlcache.WithTTL[string, string](time.Duration(s.ResponseCacheTTLSeconds) * time.Second),
		ttlcache.WithDisableTouchOnHit[string, string](),
	}
	if s.ResponseCacheCapacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, string](uint64(s.ResponseCacheCapacity)))
	}
	c := ttlcache.New[string, string](opts...)
	go c.Start()
	return &responseCache{c: c}
}

func (rc *responseCache) enabled() bool { return rc != nil }

func cacheable(opts backend.GenerationOptions) bool { return opts.Temperature == 0 }

func cacheKey(prompt string, opts backend.GenerationOptions) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(opts.MaxNewTokens))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(opts.TopP, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(prompt)
	return b.String()
}

func (rc *responseCache) get(prompt string, opts backend.GenerationOptions) (string, bool) {
	if rc == nil || !cacheable(opts) {
		return "", false
	}
	item := rc.c.Get(cacheKey(prompt, opts))
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

func (rc *responseCache) put(prompt string, opts backend.GenerationOptions, text string) {
	if rc == nil || !cacheable(opts) {
		return
	}
	rc.c.Set(cacheKey(prompt, opts), text, ttlcache.DefaultTTL)
}

func (rc *responseCache) len() int {
	if rc == nil {
		return 0
	}
	return rc.c.Len()
}

func (rc *responseCache) stop() {
	if rc == nil {
		return
	}
	rc.c.Stop()
}
