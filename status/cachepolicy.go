package status

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrEmptyCachePolicy = errors.New("empty cache policy spec")

// CachePolicy bounds a cache by entry count and entry age. The zero
// value bounds nothing.
type CachePolicy struct {
	MaximumSize      int
	ExpireAfterWrite time.Duration
}

// ParseCachePolicy parses the shared cache configuration mini-language,
// e.g. "maximumSize=64,expireAfterWrite=6h". Keys may appear in any
// order, surrounding whitespace is ignored.
func ParseCachePolicy(spec string) (CachePolicy, error) {
	var policy CachePolicy
	if strings.TrimSpace(spec) == "" {
		return policy, ErrEmptyCachePolicy
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return policy, fmt.Errorf("cache policy entry %q is not a key=value pair", part)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "maximumSize":
			size, err := strconv.Atoi(value)
			if err != nil || size < 0 {
				return policy, fmt.Errorf("invalid maximumSize %q", value)
			}
			policy.MaximumSize = size
		case "expireAfterWrite":
			d, err := time.ParseDuration(value)
			if err != nil || d < 0 {
				return policy, fmt.Errorf("invalid expireAfterWrite %q", value)
			}
			policy.ExpireAfterWrite = d
		default:
			return policy, fmt.Errorf("unknown cache policy key %q", key)
		}
	}
	return policy, nil
}
