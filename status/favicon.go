package status

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var faviconLoads = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "viridian",
	Name:      "favicon_loads_total",
	Help:      "The total number of cold favicon loads by result",
}, []string{"result"})

type SourceKind byte

const (
	SourceFile SourceKind = iota
	SourceURL
	SourceEncoded
)

func (kind SourceKind) String() string {
	var text string
	switch kind {
	case SourceFile:
		text = "file"
	case SourceURL:
		text = "url"
	case SourceEncoded:
		text = "encoded"
	}
	return text
}

// FaviconSource identifies where an icon image comes from. It is a
// plain comparable value so it can serve as a cache key.
type FaviconSource struct {
	Kind  SourceKind
	Value string
}

func (source FaviconSource) String() string {
	return source.Kind.String() + "|" + source.Value
}

// FaviconCache memoizes encoded favicons per source. A cold key is
// loaded at most once no matter how many callers ask for it
// concurrently; a failed load is remembered as "no favicon".
type FaviconCache struct {
	loader FaviconLoader
	log    zerolog.Logger

	mu      sync.RWMutex
	entries *expirable.LRU[FaviconSource, string]

	flight singleflight.Group
}

func NewFaviconCache(loader FaviconLoader, policy *CachePolicy, log zerolog.Logger) *FaviconCache {
	cache := &FaviconCache{
		loader: loader,
		log:    log,
	}
	cache.Reload(policy)
	return cache
}

// Get returns the encoded favicon for source, loading it on a cold key.
// It reports false when the source resolves to no favicon, which is
// also what every call returns while the cache is disabled.
func (cache *FaviconCache) Get(source FaviconSource) (string, bool) {
	cache.mu.RLock()
	entries := cache.entries
	cache.mu.RUnlock()
	if entries == nil {
		return "", false
	}

	if icon, ok := entries.Get(source); ok {
		return icon, icon != ""
	}

	// Late arrivals for the same key share the in-flight load instead
	// of starting their own.
	result, _, _ := cache.flight.Do(source.String(), func() (interface{}, error) {
		icon, err := cache.loader.Load(source)
		if err != nil {
			cache.log.Debug().Err(err).Str("source", source.String()).Msg("favicon load failed")
			faviconLoads.WithLabelValues("failed").Inc()
			icon = ""
		} else {
			faviconLoads.WithLabelValues("ok").Inc()
		}
		// Written to the instance the load started under. If a reload
		// swapped the cache meanwhile the result is simply discarded
		// with that instance.
		entries.Add(source, icon)
		return icon, nil
	})

	icon := result.(string)
	return icon, icon != ""
}

// Reload rebuilds the cache under the given policy, discarding all
// entries. A nil policy disables the cache entirely.
func (cache *FaviconCache) Reload(policy *CachePolicy) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if policy == nil {
		cache.entries = nil
		return
	}
	cache.entries = expirable.NewLRU[FaviconSource, string](policy.MaximumSize, nil, policy.ExpireAfterWrite)
}

// Len returns the number of cached entries, 0 while disabled.
func (cache *FaviconCache) Len() int {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	if cache.entries == nil {
		return 0
	}
	return cache.entries.Len()
}
