package status

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SplitFunc breaks hover text into count non-empty display lines. The
// wrapping rule belongs to the formatter; the builder only guarantees
// caching and count semantics.
type SplitFunc func(text string, count int) []string

// DefaultSplit partitions text into count balanced contiguous rune
// chunks: any text holding at least count runes yields exactly count
// non-empty lines. Shorter texts yield fewer lines, never empty ones.
func DefaultSplit(text string, count int) []string {
	runes := []rune(text)
	if count < 1 || len(runes) == 0 {
		return nil
	}
	if count > len(runes) {
		count = len(runes)
	}
	base := len(runes) / count
	extra := len(runes) % count
	lines := make([]string, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		size := base
		if i < extra {
			size++
		}
		lines = append(lines, string(runes[start:start+size]))
		start += size
	}
	return lines
}

type splitKey struct {
	text  string
	count int
}

// SampleBuilder turns hover text into display lines, memoizing results
// per (text, count) pair under the same policy mechanism as favicons.
type SampleBuilder struct {
	split SplitFunc

	mu    sync.RWMutex
	cache *expirable.LRU[splitKey, []string]
}

// NewSampleBuilder builds a SampleBuilder. A nil split falls back to
// DefaultSplit, a nil policy leaves the result cache unbounded.
func NewSampleBuilder(split SplitFunc, policy *CachePolicy) *SampleBuilder {
	if split == nil {
		split = DefaultSplit
	}
	builder := &SampleBuilder{split: split}
	builder.Reload(policy)
	return builder
}

// Split breaks text into count lines, serving repeated pairs from cache.
func (builder *SampleBuilder) Split(text string, count int) []string {
	builder.mu.RLock()
	cache := builder.cache
	builder.mu.RUnlock()

	key := splitKey{text: text, count: count}
	if lines, ok := cache.Get(key); ok {
		return lines
	}
	lines := builder.split(text, count)
	cache.Add(key, lines)
	return lines
}

// SplitDefault applies the default single-line policy: the raw text
// becomes the one and only line.
func (builder *SampleBuilder) SplitDefault(text string) []string {
	return []string{text}
}

// Reload replaces the split cache under a new policy, discarding all
// cached results. A nil policy leaves the new cache unbounded.
func (builder *SampleBuilder) Reload(policy *CachePolicy) {
	var cache *expirable.LRU[splitKey, []string]
	if policy == nil {
		cache = expirable.NewLRU[splitKey, []string](0, nil, 0)
	} else {
		cache = expirable.NewLRU[splitKey, []string](policy.MaximumSize, nil, policy.ExpireAfterWrite)
	}
	builder.mu.Lock()
	builder.cache = cache
	builder.mu.Unlock()
}
